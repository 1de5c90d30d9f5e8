// File: handlers/appointments.go
package handlers

import (
	"net/http"
	"strconv"

	"carhub/client"
	"carhub/middleware"
	"carhub/models"
	"carhub/services/booking"
	"carhub/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the appointments list and drives the booking
// dialog workflow.
type AppointmentHandler struct {
	API      *client.Client
	Engine   *booking.Engine
	Sessions *session.Manager
	Logger   *zap.Logger
}

func NewAppointmentHandler(api *client.Client, engine *booking.Engine, sessions *session.Manager, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{API: api, Engine: engine, Sessions: sessions, Logger: logger}
}

// appointmentView decorates an appointment with the affordances the list
// screen may render for it.
type appointmentView struct {
	models.Appointment
	CanEdit   bool `json:"can_edit"`
	CanCancel bool `json:"can_cancel"`
}

// List returns the caller's appointments with their allowed actions.
func (h *AppointmentHandler) List(c *gin.Context) {
	appointments, err := h.API.ListAppointments(c.Request.Context(), middleware.Token(c))
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	views := make([]appointmentView, 0, len(appointments))
	for _, appt := range appointments {
		views = append(views, appointmentView{
			Appointment: appt,
			CanEdit:     appt.CanEdit(),
			CanCancel:   appt.CanCancel(),
		})
	}
	c.JSON(http.StatusOK, views)
}

// StartFormRequest opens a booking dialog, optionally preselecting a
// station and service (the "Schedule" jump from the stations screen).
type StartFormRequest struct {
	ServiceStation int `json:"serviceStation"`
	ServiceType    int `json:"serviceType"`
}

// StartForm opens a create-mode dialog.
func (h *AppointmentHandler) StartForm(c *gin.Context) {
	var req StartFormRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	form, err := h.Engine.Start(c.Request.Context(), req.ServiceStation, req.ServiceType)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, formResponse(form))
}

// StartEdit opens an edit-mode dialog pre-populated from an appointment.
// The appointment is looked up from the caller's list so the dialog cannot
// be seeded with someone else's booking.
func (h *AppointmentHandler) StartEdit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}
	token := middleware.Token(c)

	appointments, err := h.API.ListAppointments(c.Request.Context(), token)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	var target *models.Appointment
	for i := range appointments {
		if appointments[i].ID == id {
			target = &appointments[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}
	if !target.CanEdit() {
		c.JSON(http.StatusConflict, gin.H{"error": "This appointment can no longer be edited"})
		return
	}

	form, err := h.Engine.StartEdit(c.Request.Context(), token, *target)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, formResponse(form))
}

// GetForm renders the dialog state.
func (h *AppointmentHandler) GetForm(c *gin.Context) {
	form, err := h.Engine.Get(c.Request.Context(), c.Param("formID"))
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, formResponse(form))
}

// UpdateForm applies user selections to the dialog; a date change with a
// station and service chosen triggers the slot-availability fetch.
func (h *AppointmentHandler) UpdateForm(c *gin.Context) {
	var patch booking.FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	form, err := h.Engine.Update(c.Request.Context(), middleware.Token(c), c.Param("formID"), patch)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, formResponse(form))
}

// SelectSlotRequest picks one of the loaded slots.
type SelectSlotRequest struct {
	SlotID int `json:"slotId" binding:"required"`
}

// SelectSlot records the chosen slot on the dialog.
func (h *AppointmentHandler) SelectSlot(c *gin.Context) {
	var req SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	form, err := h.Engine.SelectSlot(c.Request.Context(), c.Param("formID"), req.SlotID)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, formResponse(form))
}

// SubmitForm issues the terminal create or update call and, on success,
// returns the refreshed appointment list alongside the reset dialog.
func (h *AppointmentHandler) SubmitForm(c *gin.Context) {
	token := middleware.Token(c)
	form, err := h.Engine.Get(c.Request.Context(), c.Param("formID"))
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	message := "Appointment scheduled successfully!"
	if form.Mode == booking.ModeEdit {
		message = "Appointment updated successfully!"
	}

	result, err := h.Engine.Submit(c.Request.Context(), token, c.Param("formID"))
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}

	appointments, listErr := h.API.ListAppointments(c.Request.Context(), token)
	if listErr != nil {
		// The booking went through; the list refresh failing must not turn
		// success into an error. The next list render re-fetches anyway.
		h.Logger.Warn("Appointment list refresh failed after submit", zap.Error(listErr))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      message,
		"appointment":  result,
		"appointments": appointments,
	})
}

// Cancel deletes an appointment after an explicit confirmation.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}
	confirmed := c.Query("confirm") == "true"
	token := middleware.Token(c)

	if err := h.Engine.CancelAppointment(c.Request.Context(), token, id, confirmed); err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}

	appointments, listErr := h.API.ListAppointments(c.Request.Context(), token)
	if listErr != nil {
		h.Logger.Warn("Appointment list refresh failed after cancel", zap.Error(listErr))
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Appointment cancelled successfully!",
		"appointments": appointments,
	})
}

// formResponse shapes the dialog for rendering, including its derived
// workflow state.
func formResponse(form *booking.FormSession) gin.H {
	return gin.H{
		"form":  form,
		"state": form.State(),
	}
}
