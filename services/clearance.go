package services

import (
	"context"
	"log"

	"clearance/portal/clearanceapi"
	"clearance/portal/forms"
	"clearance/portal/models"
)

// Clearance and account management messages
const (
	MsgSubmitFailed     = "Failed to submit clearance request"
	MsgSubmitted        = "Clearance request submitted successfully"
	MsgUserUpdated      = "User updated successfully"
	MsgUserUpdateFailed = "Failed to update user"
	MsgDeactivated      = "User deactivated"
	MsgDeactivateFailed = "Failed to deactivate user"
)

// SubmitClearance validates a clearance draft and files it as one request
func SubmitClearance(ctx context.Context, api *clearanceapi.Client, token string, kind models.ClearanceKind, d *forms.Draft) (string, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return "", validationError("Please fix the highlighted fields", errs)
	}

	payload, err := d.Payload()
	if err != nil {
		log.Printf("Error encoding %s clearance form: %v", kind, err)
		return "", &UserError{Kind: KindTransport, Message: MsgServerError}
	}

	msg, err := api.SubmitClearance(ctx, token, kind, payload)
	if err != nil {
		return "", fromAPIError("clearance submission", err, MsgSubmitFailed)
	}
	if msg == "" {
		msg = MsgSubmitted
	}
	return msg, nil
}

// AdminUpdateUser validates and sends an administrator's edit of an account
func AdminUpdateUser(ctx context.Context, api *clearanceapi.Client, token, userID string, d *forms.Draft) (string, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return "", validationError("Please fix the highlighted fields", errs)
	}

	payload, err := d.Payload()
	if err != nil {
		log.Printf("Error encoding user form: %v", err)
		return "", &UserError{Kind: KindTransport, Message: MsgServerError}
	}

	if err := api.AdminUpdateUser(ctx, token, userID, payload); err != nil {
		return "", fromAPIError("admin user update", err, MsgUserUpdateFailed)
	}
	return MsgUserUpdated, nil
}

// DeactivateUser disables an account
func DeactivateUser(ctx context.Context, api *clearanceapi.Client, token, userID string) (string, error) {
	if err := api.DeactivateUser(ctx, token, userID); err != nil {
		return "", fromAPIError("deactivate user", err, MsgDeactivateFailed)
	}
	return MsgDeactivated, nil
}

// LoadError converts a failed fetch for display
func LoadError(op string, err error) *UserError {
	return fromAPIError(op, err, "Failed to load "+op)
}
