// File: client/appointments.go
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"carhub/models"
)

// ListAppointments returns the caller's appointments.
func (c *Client) ListAppointments(ctx context.Context, token string) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.send(ctx, http.MethodGet, "/api/accounts/appointments/", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointment books an appointment and returns the upstream record.
func (c *Client) CreateAppointment(ctx context.Context, token string, appt models.Appointment) (*models.Appointment, error) {
	var out models.Appointment
	if err := c.send(ctx, http.MethodPost, "/api/accounts/appointments/", token, nil, appt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAppointment replaces an existing appointment.
func (c *Client) UpdateAppointment(ctx context.Context, token string, id int, appt models.Appointment) (*models.Appointment, error) {
	var out models.Appointment
	path := fmt.Sprintf("/api/accounts/appointments/%d/", id)
	if err := c.send(ctx, http.MethodPut, path, token, nil, appt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAppointment cancels an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, token string, id int) error {
	path := fmt.Sprintf("/api/accounts/appointments/%d/", id)
	return c.send(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// AppointmentSlots returns the bookable windows for a date. The upstream
// filters by date only; station and service scoping happen client-side.
func (c *Client) AppointmentSlots(ctx context.Context, token, date string) ([]models.AppointmentSlot, error) {
	params := url.Values{}
	params.Set("appointment_date", date)

	var out []models.AppointmentSlot
	if err := c.send(ctx, http.MethodGet, "/api/accounts/appointment-slots/", token, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
