package listview

import (
	"math"
	"strings"

	"clearance/portal/models"
)

// Summary counts requests by outcome
type Summary struct {
	Total        int
	Approved     int
	Rejected     int
	Pending      int
	ApprovalRate int // percent of Total, rounded
}

// Summarize counts statuses across items
func Summarize(items []models.ClearanceRequest) Summary {
	var s Summary
	s.Total = len(items)
	for _, r := range items {
		switch r.Status {
		case models.StatusApproved:
			s.Approved++
		case models.StatusRejected:
			s.Rejected++
		case models.StatusPending:
			s.Pending++
		}
	}
	if s.Total > 0 {
		s.ApprovalRate = int(math.Round(float64(s.Approved) / float64(s.Total) * 100))
	}
	return s
}

// FilterStudents keeps students whose name, id number or email contains
// search, and whose status matches when status is set.
func FilterStudents(students []models.AssignedStudent, search, status string) []models.AssignedStudent {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.AssignedStudent, 0, len(students))
	for _, s := range students {
		if status != "" && status != DateAll && s.Status != status {
			continue
		}
		if needle != "" && !profileMatches(&s.UserProfile, needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterUsers keeps accounts whose name, id number or email contains search
func FilterUsers(users []models.UserProfile, search string) []models.UserProfile {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return users
	}
	out := make([]models.UserProfile, 0, len(users))
	for i := range users {
		if profileMatches(&users[i], needle) {
			out = append(out, users[i])
		}
	}
	return out
}

func profileMatches(u *models.UserProfile, needle string) bool {
	for _, field := range []string{u.FullName(), u.IDNumber, u.Email, u.Username} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
