package routing

import "clearance/portal/models"

// MenuItem is a sidebar link, or a group of links when Children is set
type MenuItem struct {
	Title    string
	Path     string
	Children []MenuItem
}

// Placeholders are the hints shown on a role's activation and login forms
type Placeholders struct {
	Email      string
	IDNumber   string
	Department string
}

// Entry is everything the portal knows about one role subtree
type Entry struct {
	Role          models.Role
	Segment       string
	AuthEntry     string
	Dashboard     string
	Menu          []MenuItem
	Placeholders  Placeholders
	ProfileFields []models.FormField
}

// GenericAuthEntry is the role picker shown when no role is known
const GenericAuthEntry = "/auth"

// Table is indexed by Role; every role has an entry
var Table = [models.NumRoles]Entry{
	models.RoleStudent: {
		Role:      models.RoleStudent,
		Segment:   "student",
		AuthEntry: "/auth/student",
		Dashboard: "/student/dashboard",
		Menu: []MenuItem{
			{Title: "Request Clearance", Children: []MenuItem{
				{Title: "Project Clearance", Path: "/student/project-clearance"},
				{Title: "Lab Clearance", Path: "/student/lab-clearance"},
				{Title: "Library Clearance", Path: "/student/library-clearance"},
			}},
			{Title: "Check Clearance Status", Path: "/student/status"},
			{Title: "View Clearance History", Path: "/student/history"},
		},
		Placeholders: Placeholders{
			Email:      "University student email",
			IDNumber:   "Enrollment Number",
			Department: "Department enrolled in",
		},
		ProfileFields: append(commonProfileFields(false),
			models.FormField{Name: "course", Type: models.FieldText, Label: "Course"},
			models.FormField{Name: "year", Type: models.FieldNumber, Label: "Year"},
			models.FormField{Name: "semester", Type: models.FieldNumber, Label: "Semester"},
			models.FormField{Name: "admission_date", Type: models.FieldDate, Label: "Admission Date"},
			models.FormField{Name: "expected_graduation", Type: models.FieldDate, Label: "Expected Graduation"},
			models.FormField{Name: "gpa", Type: models.FieldNumber, Label: "GPA", Disabled: true},
			models.FormField{Name: "credits", Type: models.FieldNumber, Label: "Credits", Disabled: true},
			models.FormField{Name: "bio", Type: models.FieldTextarea, Label: "Bio"},
		),
	},
	models.RoleStaff: {
		Role:      models.RoleStaff,
		Segment:   "staff",
		AuthEntry: "/auth/staff",
		Dashboard: "/staff/dashboard",
		Menu: []MenuItem{
			{Title: "All Your Students", Path: "/staff/my-students"},
			{Title: "View Requests", Path: "/staff/requests"},
			{Title: "View History", Path: "/staff/history"},
		},
		Placeholders: Placeholders{
			Email:      "University staff email",
			IDNumber:   "Staff ID",
			Department: "Department working under",
		},
		ProfileFields: append(commonProfileFields(false),
			models.FormField{Name: "department", Type: models.FieldText, Label: "Department", Disabled: true},
			models.FormField{Name: "position", Type: models.FieldText, Label: "Position"},
			models.FormField{Name: "bio", Type: models.FieldTextarea, Label: "Bio"},
		),
	},
	models.RoleAdmin: {
		Role:      models.RoleAdmin,
		Segment:   "admin",
		AuthEntry: "/auth/admin",
		Dashboard: "/admin/dashboard",
		Menu: []MenuItem{
			{Title: "View Department Users", Children: []MenuItem{
				{Title: "Students", Path: "/admin/users/students"},
				{Title: "Staff", Path: "/admin/users/staff"},
			}},
			{Title: "Clearance History", Children: []MenuItem{
				{Title: "Students", Path: "/admin/history/students"},
				{Title: "Staff", Path: "/admin/history/staff"},
				{Title: "My History", Path: "/admin/history/admin"},
			}},
		},
		Placeholders: Placeholders{
			Email:      "University admin email",
			IDNumber:   "Admin ID",
			Department: "Department you head",
		},
		ProfileFields: append(commonProfileFields(true),
			models.FormField{Name: "bio", Type: models.FieldTextarea, Label: "Bio"},
		),
	},
}

func commonProfileFields(emailEditable bool) []models.FormField {
	return []models.FormField{
		{Name: "first_name", Type: models.FieldText, Label: "First Name", Required: true},
		{Name: "last_name", Type: models.FieldText, Label: "Last Name", Required: true},
		{Name: "email", Type: models.FieldEmail, Label: "Email", Required: true, Disabled: !emailEditable},
		{Name: "phone", Type: models.FieldTel, Label: "Phone"},
	}
}

// For returns the table entry of r
func For(r models.Role) *Entry {
	return &Table[r]
}

// AdminUserFields are the inputs of the admin "edit user" form
func AdminUserFields() []models.FormField {
	return []models.FormField{
		{Name: "first_name", Type: models.FieldText, Label: "First Name", Required: true},
		{Name: "last_name", Type: models.FieldText, Label: "Last Name", Required: true},
		{Name: "email", Type: models.FieldEmail, Label: "Email", Required: true},
		{Name: "id_number", Type: models.FieldText, Label: "ID Number", Required: true},
		{Name: "department", Type: models.FieldText, Label: "Department"},
		{Name: "phone", Type: models.FieldTel, Label: "Phone"},
		{Name: "is_active", Type: models.FieldCheckbox, Label: "Active"},
	}
}
