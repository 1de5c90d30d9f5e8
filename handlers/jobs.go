// File: handlers/jobs.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"carhub/client"
	"carhub/middleware"
	"carhub/models"
	"carhub/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JobHandler serves the job-card workflow: create from an appointment,
// list all cards, and assign technicians per concern.
type JobHandler struct {
	API      *client.Client
	Sessions *session.Manager
	Logger   *zap.Logger

	// Now is injectable for the generated job-card number and timestamp.
	Now func() time.Time
}

func NewJobHandler(api *client.Client, sessions *session.Manager, logger *zap.Logger) *JobHandler {
	return &JobHandler{API: api, Sessions: sessions, Logger: logger, Now: time.Now}
}

// CreateJobCardRequest groups the reported concerns by category, the way
// the create screen collects them.
type CreateJobCardRequest struct {
	RegularMaintenance []models.JobConcern `json:"regularMaintenance"`
	BodyRepair         []models.JobConcern `json:"bodyRepair"`
	Mechanical         []models.JobConcern `json:"mechanical"`
	Concerns           []models.JobConcern `json:"concerns"`
}

// Create opens a job card for an appointment, generating its card number
// and creation timestamp.
func (h *JobHandler) Create(c *gin.Context) {
	appointmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}
	var req CreateJobCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	now := h.Now()
	card, err := h.API.CreateJobCard(c.Request.Context(), middleware.Token(c), client.CreateJobCardRequest{
		AppointmentID:         appointmentID,
		RegularMaintenance:    req.RegularMaintenance,
		BodyRepair:            req.BodyRepair,
		Mechanical:            req.Mechanical,
		Concerns:              req.Concerns,
		BranchName:            1,
		JobCardTypeName:       "Regular Maintenance",
		JobConcernDescription: "N/A",
		JobCardNumber:         fmt.Sprintf("JC-%d", now.UnixMilli()),
		CreatedOn:             now.UTC().Format(time.RFC3339),
		StatusID:              6,
	})
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Job card created successfully!", "job_card": card})
}

// List returns every job card bucketed by status for the all-job-cards
// view.
func (h *JobHandler) List(c *gin.Context) {
	cards, err := h.API.AllJobCards(c.Request.Context(), middleware.Token(c))
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}

	buckets := map[string][]models.JobCard{
		models.JobCardStatusNew:        {},
		models.JobCardStatusInProgress: {},
		models.JobCardStatusCompleted:  {},
	}
	for _, card := range cards {
		buckets[card.StatusName] = append(buckets[card.StatusName], card)
	}
	c.JSON(http.StatusOK, gin.H{
		"job_cards":   cards,
		"new":         buckets[models.JobCardStatusNew],
		"in_progress": buckets[models.JobCardStatusInProgress],
		"completed":   buckets[models.JobCardStatusCompleted],
	})
}

// AssignData returns the card, its concerns and the assignable technicians
// for the assignment view.
func (h *JobHandler) AssignData(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job card id"})
		return
	}
	data, err := h.API.JobCardAssignData(c.Request.Context(), middleware.Token(c), id)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// AssignTechnicianRequest pairs a concern with a technician.
type AssignTechnicianRequest struct {
	JobConcernID int `json:"JobConcernID" binding:"required"`
	EmployeeID   int `json:"EmployeeID" binding:"required"`
	JobCardID    int `json:"JobCardID" binding:"required"`
}

// AssignTechnician assigns a technician to one concern.
func (h *JobHandler) AssignTechnician(c *gin.Context) {
	var req AssignTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	err := h.API.AssignTechnician(c.Request.Context(), middleware.Token(c), client.AssignTechnicianRequest{
		JobConcernID: req.JobConcernID,
		EmployeeID:   req.EmployeeID,
		JobCardID:    req.JobCardID,
	})
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Technician assigned successfully"})
}
