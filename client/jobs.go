// File: client/jobs.go
package client

import (
	"context"
	"fmt"
	"net/http"

	"carhub/models"
)

// CreateJobCardRequest is the payload for the create-job-card endpoint,
// mirroring the jobs API's concern grouping by category.
type CreateJobCardRequest struct {
	AppointmentID         int                 `json:"appointment_id"`
	RegularMaintenance    []models.JobConcern `json:"regularMaintenance"`
	BodyRepair            []models.JobConcern `json:"bodyRepair"`
	Mechanical            []models.JobConcern `json:"mechanical"`
	Concerns              []models.JobConcern `json:"concerns"`
	BranchName            int                 `json:"BranchName"`
	JobCardTypeName       string              `json:"JobCardTypeName"`
	JobConcernDescription string              `json:"JobConcernDescription"`
	JobCardNumber         string              `json:"JobCardNumber"`
	CreatedOn             string              `json:"CreatedOn"`
	StatusID              int                 `json:"StatusID"`
}

// CreateJobCard opens a work order for an appointment.
func (c *Client) CreateJobCard(ctx context.Context, token string, req CreateJobCardRequest) (*models.JobCard, error) {
	var out models.JobCard
	if err := c.send(ctx, http.MethodPost, "/api/jobs/create-job-card/", token, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllJobCards lists every job card visible to the caller.
func (c *Client) AllJobCards(ctx context.Context, token string) ([]models.JobCard, error) {
	var out []models.JobCard
	if err := c.send(ctx, http.MethodGet, "/api/jobs/all-job-cards/", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// JobCardAssignData fetches the card, its concerns and the assignable
// technicians for the assignment view in one call.
func (c *Client) JobCardAssignData(ctx context.Context, token string, jobCardID int) (*models.JobCardAssignData, error) {
	var out models.JobCardAssignData
	path := fmt.Sprintf("/api/jobs/jobcard/%d/assign-data/", jobCardID)
	if err := c.send(ctx, http.MethodGet, path, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignTechnicianRequest pairs one concern with one technician.
type AssignTechnicianRequest struct {
	JobConcernID int `json:"JobConcernID"`
	EmployeeID   int `json:"EmployeeID"`
	JobCardID    int `json:"JobCardID"`
}

// AssignTechnician assigns a technician to a single job concern.
func (c *Client) AssignTechnician(ctx context.Context, token string, req AssignTechnicianRequest) error {
	return c.send(ctx, http.MethodPost, "/api/jobs/assignTechnician/", token, nil, req, nil)
}
