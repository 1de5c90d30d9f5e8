// File: handlers/dashboard.go
package handlers

import (
	"errors"
	"net/http"
	"sync"

	"carhub/client"
	"carhub/middleware"
	"carhub/models"
	"carhub/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler aggregates the initial page-load fetches: appointments,
// stations and service types in parallel, joined only by "all finished".
type DashboardHandler struct {
	API      *client.Client
	Sessions *session.Manager
	Logger   *zap.Logger
}

func NewDashboardHandler(api *client.Client, sessions *session.Manager, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{API: api, Sessions: sessions, Logger: logger}
}

// dashboardSection reports one fetch independently; a failed section must
// not blank the whole page.
type dashboardSection struct {
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Overview runs the three fetches concurrently and reports each outcome.
func (h *DashboardHandler) Overview(c *gin.Context) {
	token := middleware.Token(c)
	ctx := c.Request.Context()

	var (
		wg           sync.WaitGroup
		appointments []models.Appointment
		stations     []models.ServiceStation
		serviceTypes []models.ServiceType
		apptErr      error
		stationErr   error
		typesErr     error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		appointments, apptErr = h.API.ListAppointments(ctx, token)
	}()
	go func() {
		defer wg.Done()
		stations, stationErr = h.API.ListStations(ctx, token)
	}()
	go func() {
		defer wg.Done()
		serviceTypes, typesErr = h.API.ServiceTypes(ctx, token)
	}()
	wg.Wait()

	// A 401 on any parallel call ends the session for all of them.
	for _, err := range []error{apptErr, stationErr, typesErr} {
		if errors.Is(err, client.ErrUnauthorized) {
			relayError(c, h.Sessions, h.Logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"appointments":  section(appointments, apptErr, "Failed to fetch appointments"),
		"stations":      section(stations, stationErr, "Failed to fetch service stations"),
		"service_types": section(serviceTypes, typesErr, "Failed to fetch service types"),
	})
}

func section(data interface{}, err error, message string) dashboardSection {
	if err != nil {
		return dashboardSection{Error: message}
	}
	return dashboardSection{Data: data}
}
