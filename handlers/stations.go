// File: handlers/stations.go
package handlers

import (
	"net/http"
	"strconv"
	"sync"

	"carhub/client"
	"carhub/middleware"
	"carhub/models"
	"carhub/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StationHandler serves the service-stations list/create/edit view and the
// read-only station-services detail view.
type StationHandler struct {
	API      *client.Client
	Sessions *session.Manager
	Logger   *zap.Logger
}

func NewStationHandler(api *client.Client, sessions *session.Manager, logger *zap.Logger) *StationHandler {
	return &StationHandler{API: api, Sessions: sessions, Logger: logger}
}

// List returns every station.
func (h *StationHandler) List(c *gin.Context) {
	stations, err := h.API.ListStations(c.Request.Context(), middleware.Token(c))
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

// Detail returns one station together with the service types it offers,
// fetched in parallel the way the detail screen loads.
func (h *StationHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid station id"})
		return
	}
	token := middleware.Token(c)

	var (
		wg          sync.WaitGroup
		station     *models.ServiceStation
		services    []models.ServiceType
		stationErr  error
		servicesErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		station, stationErr = h.API.Station(c.Request.Context(), token, id)
	}()
	go func() {
		defer wg.Done()
		services, servicesErr = h.API.StationServices(c.Request.Context(), token, id)
	}()
	wg.Wait()

	if stationErr != nil {
		relayError(c, h.Sessions, h.Logger, stationErr)
		return
	}
	if servicesErr != nil {
		relayError(c, h.Sessions, h.Logger, servicesErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"station": station, "service_types": services})
}

// Create adds a station. Authorization is the upstream's call.
func (h *StationHandler) Create(c *gin.Context) {
	var station models.ServiceStation
	if err := c.ShouldBindJSON(&station); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if err := h.API.CreateStation(c.Request.Context(), middleware.Token(c), station); err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Service station created successfully!"})
}

// Update replaces a station.
func (h *StationHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid station id"})
		return
	}
	var station models.ServiceStation
	if err := c.ShouldBindJSON(&station); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if err := h.API.UpdateStation(c.Request.Context(), middleware.Token(c), id, station); err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service station updated successfully!"})
}

// Delete removes a station, gated behind an explicit confirmation flag the
// way the browser prompt gates it.
func (h *StationHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid station id"})
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Deletion requires confirmation"})
		return
	}
	if err := h.API.DeleteStation(c.Request.Context(), middleware.Token(c), id); err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service station deleted successfully!"})
}

// Nearby searches stations around a point, optionally filtered to those
// offering a named service.
func (h *StationHandler) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	radius, radErr := strconv.ParseFloat(c.DefaultQuery("radius", "10"), 64)
	if latErr != nil || lngErr != nil || radErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid query parameters: lat, lng, radius"})
		return
	}

	stations, err := h.API.NearbyStations(c.Request.Context(), middleware.Token(c), lat, lng, radius)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}

	if service := c.Query("service"); service != "" {
		filtered := stations[:0]
		for _, s := range stations {
			if s.OffersService(service) {
				filtered = append(filtered, s)
			}
		}
		stations = filtered
	}
	c.JSON(http.StatusOK, stations)
}
