package models

// Admin history tabs
const (
	HistoryStudents = "students"
	HistoryStaff    = "staff"
	HistoryAdmin    = "admin"
)

// HistoryTabs lists the admin history tabs in display order
var HistoryTabs = []string{HistoryStudents, HistoryStaff, HistoryAdmin}

// Admin user-management tabs
const (
	UsersStudents = "students"
	UsersStaff    = "staff"
)

// UserTabs lists the admin user tabs in display order
var UserTabs = []string{UsersStudents, UsersStaff}

// Departments offered on the clearance form
var Departments = []Option{
	{Value: "cs", Label: "Computer Science"},
	{Value: "eng", Label: "Engineering"},
	{Value: "bus", Label: "Business"},
	{Value: "med", Label: "Medicine"},
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// IsHistoryTab reports whether tab is an admin history tab
func IsHistoryTab(tab string) bool {
	return contains(HistoryTabs, tab)
}

// IsUserTab reports whether tab is an admin user tab
func IsUserTab(tab string) bool {
	return contains(UserTabs, tab)
}
