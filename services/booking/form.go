// File: services/booking/form.go
package booking

import (
	"time"

	"carhub/models"
)

// Form modes. Create and edit share one tagged form shape instead of
// duplicating per-field state with "editing ? form.field : rawField"
// branching.
const (
	ModeCreate = "create"
	ModeEdit   = "edit"
)

// Workflow states, derived from the form contents.
const (
	StateIdle            = "idle"
	StateStationSelected = "station_selected"
	StateServiceSelected = "service_selected"
	StateDateChosen      = "date_chosen"
	StateSlotsLoaded     = "slots_loaded"
	StateSlotSelected    = "slot_selected"
	StateSubmitting      = "submitting"
)

// FormSession is one booking dialog instance. All of its fields live
// server-side between requests; the widget only ever sees the rendered copy.
type FormSession struct {
	ID            string `json:"id"`
	Mode          string `json:"mode"`
	AppointmentID int    `json:"appointmentId,omitempty"` // edit mode only

	ServiceStation int    `json:"serviceStation,omitempty"`
	ServiceType    int    `json:"serviceType,omitempty"`
	Date           string `json:"date,omitempty"` // YYYY-MM-DD
	ManualTime     string `json:"manualTime,omitempty"`
	Notes          string `json:"notes,omitempty"`
	PlateNumber    string `json:"plateNumber,omitempty"`
	VIN            string `json:"vin,omitempty"`

	Slots        []models.AppointmentSlot `json:"slots,omitempty"`
	SlotsLoaded  bool                     `json:"slotsLoaded,omitempty"`
	SelectedSlot *models.AppointmentSlot  `json:"selectedSlot,omitempty"`

	// SlotFetchSeq stamps the latest issued slot fetch. A response carrying
	// an older stamp is stale and gets discarded instead of clobbering a
	// newer one.
	SlotFetchSeq uint64 `json:"slotFetchSeq,omitempty"`

	// Submitting guards the single submission in flight per dialog.
	Submitting bool `json:"submitting,omitempty"`
	// Closed marks a dialog whose submission succeeded.
	Closed bool `json:"closed,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// State reports where in the workflow this form sits.
func (f *FormSession) State() string {
	switch {
	case f.Submitting:
		return StateSubmitting
	case f.SelectedSlot != nil:
		return StateSlotSelected
	case f.SlotsLoaded && len(f.Slots) > 0:
		return StateSlotsLoaded
	case f.Date != "":
		return StateDateChosen
	case f.ServiceType != 0:
		return StateServiceSelected
	case f.ServiceStation != 0:
		return StateStationSelected
	default:
		return StateIdle
	}
}

// SubmitTime is the appointment time for submission: the selected slot's
// time when one is chosen, the manually entered time otherwise.
func (f *FormSession) SubmitTime() string {
	if f.SelectedSlot != nil {
		return f.SelectedSlot.Time
	}
	return f.ManualTime
}

// Validate enforces the client-side submission invariant: station, service
// type, plate and VIN present, date today or later.
func (f *FormSession) Validate(today string) error {
	switch {
	case f.ServiceStation == 0:
		return NewFormError("a service station is required")
	case f.ServiceType == 0:
		return NewFormError("a service type is required")
	case f.PlateNumber == "":
		return NewFormError("a vehicle plate number is required")
	case f.VIN == "":
		return NewFormError("a VIN is required")
	case f.Date == "":
		return NewFormError("an appointment date is required")
	case f.Date < today: // dates are YYYY-MM-DD, ordered lexically
		return NewFormError("the appointment date must be today or later")
	}
	return nil
}

// reset returns every field to its initial empty value, keeping only the
// session identity. Called after a successful create or update.
func (f *FormSession) reset() {
	f.Mode = ModeCreate
	f.AppointmentID = 0
	f.ServiceStation = 0
	f.ServiceType = 0
	f.Date = ""
	f.ManualTime = ""
	f.Notes = ""
	f.PlateNumber = ""
	f.VIN = ""
	f.Slots = nil
	f.SlotsLoaded = false
	f.SelectedSlot = nil
	f.Submitting = false
	f.Closed = true
}
