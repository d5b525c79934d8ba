package models

import "strings"

// Clearance request statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ClearanceKind is one of the three clearance categories a student applies for
type ClearanceKind string

const (
	ClearanceProject ClearanceKind = "project"
	ClearanceLab     ClearanceKind = "lab"
	ClearanceLibrary ClearanceKind = "library"
)

// ClearanceKinds lists the categories in menu order
var ClearanceKinds = []ClearanceKind{ClearanceProject, ClearanceLab, ClearanceLibrary}

// Title is the display name, e.g. "Lab Clearance"
func (k ClearanceKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:]) + " Clearance"
}

// ParseClearanceKind normalises "Lab", "lab clearance" or "LAB" to a kind
func ParseClearanceKind(s string) (ClearanceKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "clearance"))
	for _, k := range ClearanceKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// StudentRef is the student summary embedded in a clearance request
type StudentRef struct {
	Name       string `json:"name"`
	IDNumber   string `json:"id_number"`
	Email      string `json:"email"`
	Course     string `json:"course,omitempty"`
	Department string `json:"department,omitempty"`
}

// Document is a file attached to a clearance request
type Document struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Comment is a reviewer or student remark on a request
type Comment struct {
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
	Date   string `json:"date,omitempty"`
}

// ClearanceRequest is a server-owned clearance request. The portal only
// reads it and sends approve/reject intents.
type ClearanceRequest struct {
	ID        Flex       `json:"id"`
	Student   StudentRef `json:"student"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Date      string     `json:"date"`
	Priority  string     `json:"priority,omitempty"`
	Documents []Document `json:"documents,omitempty"`
	Comments  []Comment  `json:"comments,omitempty"`
	Remarks   string     `json:"remarks,omitempty"`
	IsUrgent  bool       `json:"is_urgent"`
}

// IsPending reports whether the request still awaits review
func (c *ClearanceRequest) IsPending() bool {
	return c.Status == StatusPending
}

// IsCompleted reports whether the request has been approved or rejected
func (c *ClearanceRequest) IsCompleted() bool {
	return c.Status == StatusApproved || c.Status == StatusRejected
}

// Kind resolves the request's type to a clearance category
func (c *ClearanceRequest) Kind() (ClearanceKind, bool) {
	return ParseClearanceKind(c.Type)
}

// ClearanceStats is the dashboard banner summary
type ClearanceStats struct {
	TotalStudents   int     `json:"totalStudents"`
	ClearedStudents int     `json:"clearedStudents"`
	PendingStudents int     `json:"pendingStudents"`
	Percentage      float64 `json:"percentage"`
}
