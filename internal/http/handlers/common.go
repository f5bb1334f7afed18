package handlers

import (
	"net/http"

	"nganya/internal/http/middleware"
	"nganya/internal/realtime"
	"nganya/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers carries the services behind the HTTP routes.
type Handlers struct {
	Identity services.IdentityService
	Bookings services.BookingService
	Presence *services.PresenceRegistry
	Tickets  services.TicketService
	Realtime *realtime.Manager
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success":    false,
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondOK merges fields into a success payload.
func RespondOK(c *gin.Context, status int, fields gin.H) {
	payload := gin.H{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "Request body required")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid payload")
		return false
	}
	return true
}
