// File: services/booking/engine.go
package booking

import (
	"context"
	"errors"
	"time"

	"carhub/client"
	"carhub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// API is the slice of the upstream client the workflow drives.
type API interface {
	AppointmentSlots(ctx context.Context, token, date string) ([]models.AppointmentSlot, error)
	CreateAppointment(ctx context.Context, token string, appt models.Appointment) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, token string, id int, appt models.Appointment) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, token string, id int) error
}

// Engine runs the booking/edit workflow: one form session per dialog
// instance, transitions driven by user selections, a single terminal
// create-or-update call.
type Engine struct {
	Store  FormStore
	API    API
	Logger *zap.Logger

	// Now is injectable for date-boundary tests.
	Now func() time.Time
}

func NewEngine(store FormStore, api API, logger *zap.Logger) *Engine {
	return &Engine{Store: store, API: api, Logger: logger, Now: time.Now}
}

// Start opens a create-mode dialog. A non-zero station (and optionally
// service) preselects it, covering the "Schedule" jump from the stations
// screen.
func (e *Engine) Start(ctx context.Context, stationID, serviceTypeID int) (*FormSession, error) {
	form := &FormSession{
		ID:             uuid.New().String(),
		Mode:           ModeCreate,
		ServiceStation: stationID,
		ServiceType:    serviceTypeID,
		CreatedAt:      e.Now(),
	}
	if err := e.Store.Save(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// StartEdit opens an edit-mode dialog pre-populated from an existing
// appointment, carrying its slot id, and loads the slots for its date so
// the user can move the booking.
func (e *Engine) StartEdit(ctx context.Context, token string, appt models.Appointment) (*FormSession, error) {
	form := &FormSession{
		ID:             uuid.New().String(),
		Mode:           ModeEdit,
		AppointmentID:  appt.ID,
		ServiceStation: appt.ServiceStation,
		ServiceType:    appt.ServiceType,
		Date:           appt.AppointmentDate,
		ManualTime:     appt.AppointmentTime,
		Notes:          appt.Notes,
		PlateNumber:    appt.PlateNumber,
		VIN:            appt.VIN,
		CreatedAt:      e.Now(),
	}
	if appt.SlotID != 0 {
		form.SelectedSlot = &models.AppointmentSlot{
			ID:     appt.SlotID,
			SlotID: appt.SlotID,
			Time:   appt.AppointmentTime,
		}
	}
	if err := e.Store.Save(ctx, form); err != nil {
		return nil, err
	}
	if form.Date != "" {
		return e.fetchSlots(ctx, token, form)
	}
	return form, nil
}

// Get returns a form session for rendering.
func (e *Engine) Get(ctx context.Context, formID string) (*FormSession, error) {
	return e.Store.Get(ctx, formID)
}

// FormPatch carries user selections into Update. Nil fields are untouched.
type FormPatch struct {
	ServiceStation *int    `json:"serviceStation,omitempty"`
	ServiceType    *int    `json:"serviceType,omitempty"`
	Date           *string `json:"date,omitempty"`
	ManualTime     *string `json:"manualTime,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	PlateNumber    *string `json:"plateNumber,omitempty"`
	VIN            *string `json:"vin,omitempty"`
}

// Update applies user selections. A date change with a station and service
// type already chosen triggers exactly one slot fetch scoped to that date;
// any other change leaves the slot list alone.
func (e *Engine) Update(ctx context.Context, token, formID string, patch FormPatch) (*FormSession, error) {
	form, err := e.Store.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.Submitting {
		return nil, ErrSubmitInFlight
	}

	dateChanged := false
	if patch.ServiceStation != nil {
		form.ServiceStation = *patch.ServiceStation
	}
	if patch.ServiceType != nil {
		form.ServiceType = *patch.ServiceType
	}
	if patch.Date != nil && *patch.Date != form.Date {
		form.Date = *patch.Date
		dateChanged = true
	}
	if patch.ManualTime != nil {
		form.ManualTime = *patch.ManualTime
	}
	if patch.Notes != nil {
		form.Notes = *patch.Notes
	}
	if patch.PlateNumber != nil {
		form.PlateNumber = *patch.PlateNumber
	}
	if patch.VIN != nil {
		form.VIN = *patch.VIN
	}

	if !dateChanged {
		if err := e.Store.Save(ctx, form); err != nil {
			return nil, err
		}
		return form, nil
	}

	if form.ServiceStation == 0 || form.ServiceType == 0 || form.Date == "" {
		// No fetch without the full (station, service, date) triple.
		form.Slots = nil
		form.SlotsLoaded = false
		form.SelectedSlot = nil
		if err := e.Store.Save(ctx, form); err != nil {
			return nil, err
		}
		return form, nil
	}

	return e.fetchSlots(ctx, token, form)
}

// fetchSlots issues a stamped availability query. Slot queries triggered by
// rapid date changes are not cancelled, so responses can arrive out of
// order; the stamp lets a stale response be discarded instead of
// overwriting a newer one.
func (e *Engine) fetchSlots(ctx context.Context, token string, form *FormSession) (*FormSession, error) {
	form.SlotFetchSeq++
	seq := form.SlotFetchSeq
	form.SlotsLoaded = false
	if err := e.Store.Save(ctx, form); err != nil {
		return nil, err
	}

	slots, err := e.API.AppointmentSlots(ctx, token, form.Date)
	if err != nil {
		// A rejected token must end the session like any other call; only
		// transient failures degrade to an empty slot list.
		if errors.Is(err, client.ErrUnauthorized) {
			return nil, err
		}
		e.Logger.Warn("Slot availability query failed", zap.String("date", form.Date), zap.Error(err))
		slots = nil
	}

	current, err := e.Store.Get(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	if current.SlotFetchSeq != seq {
		// A newer fetch was issued while this one ran. Discard.
		return current, nil
	}

	current.Slots = slots
	current.SlotsLoaded = true
	if len(slots) == 0 {
		current.SelectedSlot = nil
	}
	if err := e.Store.Save(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// SelectSlot picks one of the loaded slots.
func (e *Engine) SelectSlot(ctx context.Context, formID string, slotID int) (*FormSession, error) {
	form, err := e.Store.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.Submitting {
		return nil, ErrSubmitInFlight
	}
	for i := range form.Slots {
		if form.Slots[i].ID == slotID {
			chosen := form.Slots[i]
			form.SelectedSlot = &chosen
			if err := e.Store.Save(ctx, form); err != nil {
				return nil, err
			}
			return form, nil
		}
	}
	return nil, ErrSlotNotAvailable
}

// Submit issues the terminal create or update call. Only one submission may
// run per dialog; on success every field resets to its initial empty value
// and the dialog closes, on failure the form stays populated for
// correction.
func (e *Engine) Submit(ctx context.Context, token, formID string) (*models.Appointment, error) {
	form, err := e.Store.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.Submitting {
		return nil, ErrSubmitInFlight
	}

	today := e.Now().Format("2006-01-02")
	if err := form.Validate(today); err != nil {
		return nil, err
	}

	form.Submitting = true
	if err := e.Store.Save(ctx, form); err != nil {
		return nil, err
	}

	payload := models.Appointment{
		ServiceStation:  form.ServiceStation,
		ServiceType:     form.ServiceType,
		AppointmentDate: form.Date,
		AppointmentTime: form.SubmitTime(),
		Notes:           form.Notes,
		PlateNumber:     form.PlateNumber,
		VIN:             form.VIN,
	}
	if form.SelectedSlot != nil {
		payload.SlotID = form.SelectedSlot.ID
	}

	var result *models.Appointment
	var callErr error
	if form.Mode == ModeEdit {
		result, callErr = e.API.UpdateAppointment(ctx, token, form.AppointmentID, payload)
	} else {
		result, callErr = e.API.CreateAppointment(ctx, token, payload)
	}

	if callErr != nil {
		form.Submitting = false
		if saveErr := e.Store.Save(ctx, form); saveErr != nil {
			e.Logger.Error("Failed to release submit guard", zap.Error(saveErr))
		}
		return nil, callErr
	}

	form.reset()
	if err := e.Store.Save(ctx, form); err != nil {
		// The booking exists upstream; a failed reset persist must not turn
		// the success into an error. The form session expires on its own.
		e.Logger.Error("Failed to persist reset form after booking", zap.Error(err))
	}
	return result, nil
}

// CancelAppointment deletes an appointment, gated behind an explicit
// confirmation. The list is only ever updated by re-fetch, never
// optimistically.
func (e *Engine) CancelAppointment(ctx context.Context, token string, appointmentID int, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return e.API.DeleteAppointment(ctx, token, appointmentID)
}
