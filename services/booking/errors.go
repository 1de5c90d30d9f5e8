package booking

import "errors"

// ErrSubmitInFlight rejects a second submit while one is already running
// for the same dialog instance.
var ErrSubmitInFlight = errors.New("a submission is already in flight for this form")

// ErrConfirmationRequired gates appointment cancellation behind an explicit
// confirmation from the user.
var ErrConfirmationRequired = errors.New("cancellation requires confirmation")

// ErrFormNotFound is returned for unknown or expired form sessions.
var ErrFormNotFound = errors.New("booking form session not found or expired")

// ErrSlotNotAvailable is returned when a selected slot is not in the
// currently loaded slot list.
var ErrSlotNotAvailable = errors.New("selected slot is not in the available list")

// FormError is a validation failure the widget shows inline.
type FormError struct {
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

func NewFormError(msg string) error {
	return &FormError{Message: msg}
}
