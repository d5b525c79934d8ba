package forms

import "clearance/portal/models"

// ClearanceFields are the inputs of the project, lab and library request forms
func ClearanceFields() []models.FormField {
	return []models.FormField{
		{Name: "student_id", Type: models.FieldText, Label: "Student ID", Required: true},
		{Name: "full_name", Type: models.FieldText, Label: "Full Name", Required: true},
		{Name: "email", Type: models.FieldEmail, Label: "Email", Required: true},
		{Name: "department", Type: models.FieldSelect, Label: "Department", Required: true, Options: models.Departments},
		{Name: "graduation_year", Type: models.FieldNumber, Label: "Graduation Year", Required: true},
		{Name: "reason", Type: models.FieldTextarea, Label: "Reason for Clearance", Required: true},
		{Name: "urgent_request", Type: models.FieldCheckbox, Label: "Urgent Request"},
	}
}

// ClearanceFileFields are the document uploads of a clearance request
func ClearanceFileFields() []models.FileField {
	return []models.FileField{
		{Name: "transcripts", Label: "Academic Transcripts", Accept: ".pdf,.doc,.docx", Required: true, Multiple: true},
		{Name: "identification", Label: "Identification Document", Accept: ".pdf,.jpg,.jpeg,.png", Required: true},
		{Name: "supporting_docs", Label: "Supporting Documents", Accept: ".pdf,.doc,.docx,.jpg,.jpeg,.png", Multiple: true},
	}
}

// AvatarField is the profile picture upload
func AvatarField() models.FileField {
	return models.FileField{Name: "avatar", Label: "Profile Picture", Accept: ".jpg,.jpeg,.png", MaxSizeMB: 5}
}

// PasswordFields are the inputs of the change-password form
func PasswordFields() []models.FormField {
	return []models.FormField{
		{Name: "old_password", Type: models.FieldPassword, Label: "Current Password", Required: true},
		{Name: "new_password", Type: models.FieldPassword, Label: "New Password", Required: true},
		{Name: "confirm_password", Type: models.FieldPassword, Label: "Confirm Password", Required: true},
	}
}

// ClearanceInitial pre-fills a clearance form from the student's profile
func ClearanceInitial(u *models.UserProfile) map[string]any {
	if u == nil {
		return nil
	}
	return map[string]any{
		"student_id": u.IDNumber,
		"full_name":  u.FullName(),
		"email":      u.Email,
	}
}

// ActivationFields are the inputs of the account activation form. The
// hints come from the role being activated.
func ActivationFields(emailHint, idHint, departmentHint string) []models.FormField {
	return []models.FormField{
		{Name: "name", Type: models.FieldText, Label: "Full Name", Placeholder: "Full name", Required: true},
		{Name: "email", Type: models.FieldEmail, Label: "Email", Placeholder: emailHint, Required: true},
		{Name: "id_number", Type: models.FieldText, Label: "ID Number", Placeholder: idHint, Required: true},
		{Name: "department", Type: models.FieldText, Label: "Department", Placeholder: departmentHint, Required: true},
		{Name: "password", Type: models.FieldPassword, Label: "Password", Required: true},
		{Name: "confirm_password", Type: models.FieldPassword, Label: "Confirm Password", Required: true},
	}
}

// LoginFields are the inputs of the login form
func LoginFields(idHint string) []models.FormField {
	return []models.FormField{
		{Name: "id_number", Type: models.FieldText, Label: "ID Number", Placeholder: idHint, Required: true},
		{Name: "password", Type: models.FieldPassword, Label: "Password", Required: true},
	}
}

// ReviewFields are the inputs of the approve and reject dialogs
func ReviewFields(remarksRequired bool) []models.FormField {
	return []models.FormField{
		{Name: "remarks", Type: models.FieldTextarea, Label: "Remarks", Required: remarksRequired},
	}
}
