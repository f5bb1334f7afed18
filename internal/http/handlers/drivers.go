package handlers

import (
	"net/http"
	"strings"

	"nganya/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type driverRegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// POST /api/drivers/register
func (h Handlers) RegisterDriver(c *gin.Context) {
	var req driverRegisterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.Identity.RegisterDriver(c.Request.Context(), req.Name, req.Phone, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"driver": d, "driverId": d.ID})
}

type driverLoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// POST /api/drivers/login
func (h Handlers) LoginDriver(c *gin.Context) {
	var req driverLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d, token, err := h.Identity.LoginDriver(c.Request.Context(), req.Phone, strings.TrimSpace(req.Password))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"driver": d, "driverId": d.ID, "token": token})
}

type applicationRequest struct {
	DriverID string `json:"driverId"`
	Vehicle  string `json:"vehicle"`
	Route    string `json:"route"`
	Capacity int    `json:"capacity"`
}

// POST /api/drivers/application
func (h Handlers) SubmitApplication(c *gin.Context) {
	var req applicationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	driverID, ok := requireDriverID(c, req.DriverID)
	if !ok {
		return
	}
	d, err := h.Identity.SubmitApplication(c.Request.Context(), driverID, models.DriverApplication{
		Vehicle:  req.Vehicle,
		Route:    req.Route,
		Capacity: req.Capacity,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"driver": d})
}

type toggleOnlineRequest struct {
	DriverID string `json:"driverId"`
	IsOnline bool   `json:"isOnline"`
}

// POST /api/drivers/toggleOnline
func (h Handlers) ToggleOnline(c *gin.Context) {
	var req toggleOnlineRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	driverID, ok := requireDriverID(c, req.DriverID)
	if !ok {
		return
	}
	if err := h.Presence.SetOnline(c.Request.Context(), driverID, req.IsOnline); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, nil)
}

type acceptRequest struct {
	DriverID  string `json:"driverId"`
	BookingID string `json:"bookingId"`
}

// POST /api/drivers/bookings/accept
func (h Handlers) AcceptBooking(c *gin.Context) {
	var req acceptRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		RespondError(c, http.StatusBadRequest, "Booking ID required")
		return
	}
	if _, err := h.Bookings.AcceptBooking(c.Request.Context(), strings.TrimSpace(req.DriverID), bookingID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, nil)
}

// GET /api/drivers/all answers with a bare list for the admin UI.
func (h Handlers) ListDrivers(c *gin.Context) {
	drivers, err := h.Identity.ListDrivers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if drivers == nil {
		drivers = []models.Driver{}
	}
	c.JSON(http.StatusOK, drivers)
}

type driverDecisionRequest struct {
	DriverID string `json:"driverId"`
	Reason   string `json:"reason"`
}

// POST /api/drivers/approve
func (h Handlers) ApproveDriver(c *gin.Context) {
	var req driverDecisionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	driverID, ok := requireDriverID(c, req.DriverID)
	if !ok {
		return
	}
	d, err := h.Presence.Approve(c.Request.Context(), driverID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"driver": d})
}

// POST /api/drivers/reject
func (h Handlers) RejectDriver(c *gin.Context) {
	var req driverDecisionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	driverID, ok := requireDriverID(c, req.DriverID)
	if !ok {
		return
	}
	d, err := h.Presence.Reject(c.Request.Context(), driverID, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"driver": d})
}

func requireDriverID(c *gin.Context, raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" {
		RespondError(c, http.StatusBadRequest, "Driver ID required")
		return "", false
	}
	return id, true
}
