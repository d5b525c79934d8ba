package services

import (
	"context"
	"strings"

	"clearance/portal/clearanceapi"
	"clearance/portal/listview"
	"clearance/portal/models"
)

// Review messages
const (
	MsgApproved        = "Request approved successfully"
	MsgRejected        = "Request rejected with feedback"
	MsgApproveFailed   = "Failed to approve request"
	MsgRejectFailed    = "Failed to reject request"
	MsgRemarksRequired = "Please provide a reason for rejection"
	MsgLoadFailed      = "Failed to load requests"
)

// ReviewService lists and decides clearance requests for staff
type ReviewService struct {
	api *clearanceapi.Client
}

// NewReviewService returns a review service over the API client
func NewReviewService(api *clearanceapi.Client) *ReviewService {
	return &ReviewService{api: api}
}

// AssignedRequests fetches the requests routed to a staff member, keeping
// only those of the member's clearance type. A type of "all" or none keeps
// everything.
func (s *ReviewService) AssignedRequests(ctx context.Context, token string, user *models.UserProfile) ([]models.ClearanceRequest, error) {
	reqs, err := s.api.AssignedRequests(ctx, token)
	if err != nil {
		return nil, fromAPIError("assigned requests", err, MsgLoadFailed)
	}

	if user == nil {
		return reqs, nil
	}
	return listview.ScopeToClearanceType(reqs, user.ClearanceType), nil
}

// Approve approves a request with optional remarks
func (s *ReviewService) Approve(ctx context.Context, token, requestID, remarks string) (string, error) {
	if err := s.api.UpdateRequest(ctx, token, requestID, models.StatusApproved, strings.TrimSpace(remarks)); err != nil {
		return "", fromAPIError("approve", err, MsgApproveFailed)
	}
	return MsgApproved, nil
}

// Reject rejects a request. Remarks are required and are checked before
// anything is sent.
func (s *ReviewService) Reject(ctx context.Context, token, requestID, remarks string) (string, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return "", validationError(MsgRemarksRequired, map[string]string{"remarks": MsgRemarksRequired})
	}

	if err := s.api.UpdateRequest(ctx, token, requestID, models.StatusRejected, remarks); err != nil {
		return "", fromAPIError("reject", err, MsgRejectFailed)
	}
	return MsgRejected, nil
}
