// File: models/appointment.go
package models

// Appointment statuses owned by the upstream; the gateway only ever requests
// create/update/cancel and reflects whatever status comes back.
const (
	AppointmentStatusPending    = "pending"
	AppointmentStatusConfirmed  = "confirmed"
	AppointmentStatusInProgress = "in_progress"
	AppointmentStatusCompleted  = "completed"
	AppointmentStatusCancelled  = "cancelled"
)

// Appointment is the canonical appointment shape: the richer variant carrying
// plate, VIN and slot fields.
type Appointment struct {
	ID              int    `json:"id,omitempty"`
	ServiceStation  int    `json:"service_station"`
	ServiceType     int    `json:"service_type"`
	AppointmentDate string `json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime string `json:"appointment_time"` // HH:MM
	Notes           string `json:"notes,omitempty"`
	PlateNumber     string `json:"plate_number,omitempty"`
	VIN             string `json:"vin,omitempty"`
	SlotID          int    `json:"AppointSlotID,omitempty"`
	Status          string `json:"status,omitempty"`
	Owner           int    `json:"owner,omitempty"`
}

// CanCancel reports whether the cancel affordance applies: only appointments
// the upstream has not started working on may be cancelled from the client.
func (a Appointment) CanCancel() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}

// CanEdit reports whether the edit affordance applies.
func (a Appointment) CanEdit() bool {
	return a.Status != AppointmentStatusCancelled && a.Status != AppointmentStatusCompleted
}

// AppointmentSlot is a discrete bookable time window for a given
// station/service/date, queried per date from the upstream.
type AppointmentSlot struct {
	ID              int    `json:"id"`
	SlotID          int    `json:"AppointmentSlotsID,omitempty"`
	Time            string `json:"AppointmentTime"` // HH:MM
	ServiceStation  int    `json:"service_station,omitempty"`
	ServiceType     int    `json:"service_type,omitempty"`
	AppointmentDate string `json:"appointment_date,omitempty"`
}
