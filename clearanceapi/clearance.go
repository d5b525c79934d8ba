package clearanceapi

import (
	"context"
	"fmt"
	"net/url"

	"clearance/portal/models"
)

func (c *Client) requests(ctx context.Context, op, path, token string) ([]models.ClearanceRequest, error) {
	var reqs []models.ClearanceRequest
	if err := c.doList(ctx, call{op: op, method: "GET", path: path, token: token}, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Stats fetches the dashboard summary
func (c *Client) Stats(ctx context.Context, token string) (*models.ClearanceStats, error) {
	var stats models.ClearanceStats
	if err := c.doJSON(ctx, call{op: "stats", method: "GET", path: "/clearance/stats/", token: token}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AssignedRequests lists requests routed to the signed-in staff member
func (c *Client) AssignedRequests(ctx context.Context, token string) ([]models.ClearanceRequest, error) {
	return c.requests(ctx, "assigned_requests", "/clearance/assigned-requests/", token)
}

// AssignedStudents lists students under the given clearance type
func (c *Client) AssignedStudents(ctx context.Context, token, clearanceType string) ([]models.AssignedStudent, error) {
	path := "/clearance/assigned-students/?clearance_type=" + url.QueryEscape(clearanceType)

	var students []models.AssignedStudent
	if err := c.doList(ctx, call{op: "assigned_students", method: "GET", path: path, token: token}, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// StaffHistory lists requests the signed-in staff member has reviewed
func (c *Client) StaffHistory(ctx context.Context, token string) ([]models.ClearanceRequest, error) {
	return c.requests(ctx, "staff_history", "/clearance/staff-history/", token)
}

// StudentHistory lists the signed-in student's past requests
func (c *Client) StudentHistory(ctx context.Context, token string) ([]models.ClearanceRequest, error) {
	return c.requests(ctx, "student_history", "/clearance/student-history/", token)
}

// MyRequests lists the signed-in student's current requests
func (c *Client) MyRequests(ctx context.Context, token string) ([]models.ClearanceRequest, error) {
	return c.requests(ctx, "my_requests", "/clearance/my-requests/", token)
}

// AdminHistory lists history for one admin tab: students, staff or admin
func (c *Client) AdminHistory(ctx context.Context, token, tab string) ([]models.ClearanceRequest, error) {
	if !models.IsHistoryTab(tab) {
		return nil, fmt.Errorf("unknown history tab %q", tab)
	}
	return c.requests(ctx, "admin_history", fmt.Sprintf("/clearance/history/%s/", tab), token)
}

// SubmitClearance files a new clearance request of the given kind
func (c *Client) SubmitClearance(ctx context.Context, token string, kind models.ClearanceKind, body Multipart) (string, error) {
	var resp messageResponse
	err := c.doJSON(ctx, call{
		op:          "submit_clearance",
		method:      "POST",
		path:        fmt.Sprintf("/clearance/%s/", kind),
		token:       token,
		body:        body.Reader(),
		contentType: body.ContentType(),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateRequest approves or rejects a request with the reviewer's remarks
func (c *Client) UpdateRequest(ctx context.Context, token, requestID, status, remarks string) error {
	cl, err := jsonCall("update_request", "POST", fmt.Sprintf("/clearance/update-request/%s/", url.PathEscape(requestID)), token, map[string]string{
		"status":  status,
		"remarks": remarks,
	})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, cl)
	return err
}
