// File: models/jobcard.go
package models

// Job card status buckets as presented by the jobs API.
const (
	JobCardStatusNew        = "New"
	JobCardStatusInProgress = "InProgress"
	JobCardStatusCompleted  = "Completed"
)

// Concern categories on a job card.
const (
	ConcernTypeRegular    = "regular"
	ConcernTypeBody       = "body"
	ConcernTypeMechanical = "mechanical"
	ConcernTypeOther      = "other"
)

// JobConcern is a single reported issue on a job card.
type JobConcern struct {
	ID          int    `json:"JobConcernID,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Parts       string `json:"parts,omitempty"`
}

// JobCard is a work-order record created from an appointment, tracking
// repair concerns and technician assignment.
type JobCard struct {
	ID            int          `json:"JobCardID,omitempty"`
	AppointmentID int          `json:"appointment_id"`
	VehicleID     int          `json:"vehicle_id,omitempty"`
	JobCardNumber string       `json:"JobCardNumber"`
	StatusName    string       `json:"StatusName,omitempty"`
	CreatedOn     string       `json:"CreatedOn,omitempty"`
	Concerns      []JobConcern `json:"concerns,omitempty"`
}

// Technician is an assignable employee returned by the assign-data endpoint.
type Technician struct {
	EmployeeID int    `json:"EmployeeID"`
	Name       string `json:"name"`
}

// JobCardAssignData bundles everything the assignment view needs.
type JobCardAssignData struct {
	JobCard     JobCard      `json:"job_card"`
	JobConcerns []JobConcern `json:"job_concerns"`
	Technicians []Technician `json:"technicians"`
}
