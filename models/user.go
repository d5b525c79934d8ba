package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Flex is a JSON scalar that the API sends either as a number or a string
// (ids, years, gpa). It is kept as its textual form.
type Flex string

func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	*f = Flex(data)
	return nil
}

func (f Flex) String() string {
	return string(f)
}

// UserProfile is the account snapshot returned by the clearance API
type UserProfile struct {
	ID                 Flex   `json:"id"`
	Username           string `json:"username,omitempty"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	IDNumber           string `json:"id_number,omitempty"`
	Department         string `json:"department,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Bio                string `json:"bio,omitempty"`
	Avatar             string `json:"avatar,omitempty"`
	IsActive           *bool  `json:"is_active,omitempty"`
	Course             string `json:"course,omitempty"`
	Year               Flex   `json:"year,omitempty"`
	Semester           Flex   `json:"semester,omitempty"`
	AdmissionDate      string `json:"admission_date,omitempty"`
	ExpectedGraduation string `json:"expected_graduation,omitempty"`
	GPA                Flex   `json:"gpa,omitempty"`
	Credits            Flex   `json:"credits,omitempty"`
	ClearanceType      string `json:"clearance_type,omitempty"`
	Position           string `json:"position,omitempty"`
}

// FullName joins first and last name, falling back to name and username
func (u *UserProfile) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Active reports whether the account is active; absent means active
func (u *UserProfile) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// Values flattens the profile into form values keyed by JSON field name
func (u *UserProfile) Values() map[string]any {
	return map[string]any{
		"first_name":          u.FirstName,
		"last_name":           u.LastName,
		"email":               u.Email,
		"phone":               u.Phone,
		"department":          u.Department,
		"bio":                 u.Bio,
		"course":              u.Course,
		"year":                u.Year.String(),
		"semester":            u.Semester.String(),
		"admission_date":      u.AdmissionDate,
		"expected_graduation": u.ExpectedGraduation,
		"gpa":                 u.GPA.String(),
		"credits":             u.Credits.String(),
		"position":            u.Position,
		"clearance_type":      u.ClearanceType,
	}
}

// AssignedStudent is a student row on a staff member's list
type AssignedStudent struct {
	UserProfile
	Status        string `json:"status,omitempty"`
	ClearanceType string `json:"clearance_type,omitempty"`
}
