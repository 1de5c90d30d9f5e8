// File: handlers/helpers.go
package handlers

import (
	"errors"
	"net/http"

	"carhub/client"
	"carhub/middleware"
	"carhub/services/booking"
	"carhub/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// relayError maps service-layer failures onto responses. A 401 from the
// upstream destroys the auth session and points the caller at /signin,
// regardless of which view issued the call; everything else surfaces as the
// transient-banner message the widget shows verbatim.
func relayError(c *gin.Context, mgr *session.Manager, logger *zap.Logger, err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		if id := middleware.SessionID(c); id != "" {
			if logoutErr := mgr.Logout(c.Request.Context(), id); logoutErr != nil {
				logger.Error("Failed to destroy session after upstream 401", zap.Error(logoutErr))
			}
		}
		clearSessionCookie(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    "Session expired",
			"redirect": "/signin",
		})
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "The request could not be completed. Please check your input."
		}
		c.JSON(apiErr.Status, gin.H{"error": message})
		return
	}

	var formErr *booking.FormError
	if errors.As(err, &formErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": formErr.Message})
		return
	}

	switch {
	case errors.Is(err, booking.ErrFormNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking form not found or expired"})
	case errors.Is(err, booking.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "A submission is already in progress"})
	case errors.Is(err, booking.ErrSlotNotAvailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "The selected slot is no longer available"})
	case errors.Is(err, booking.ErrConfirmationRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cancellation requires confirmation"})
	default:
		logger.Error("Upstream call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Please try again later"})
	}
}

func setSessionCookie(c *gin.Context, sessionID string, ttlSeconds int) {
	c.SetCookie(middleware.SessionCookie, sessionID, ttlSeconds, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
}
