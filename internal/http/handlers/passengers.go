package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type passengerRegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/passengers/register
func (h Handlers) RegisterPassenger(c *gin.Context) {
	var req passengerRegisterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.Identity.RegisterPassenger(c.Request.Context(), req.Name, req.Phone, req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"passenger": p, "passengerId": p.ID})
}

type passengerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/passengers/login
func (h Handlers) LoginPassenger(c *gin.Context) {
	var req passengerLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, token, err := h.Identity.LoginPassenger(c.Request.Context(), req.Email, strings.TrimSpace(req.Password))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"passenger": p, "passengerId": p.ID, "token": token})
}

type bookingRequest struct {
	PassengerID string `json:"passengerId"`
	DriverID    string `json:"driverId"`
	Pickup      string `json:"pickup"`
	Dropoff     string `json:"dropoff"`
}

// POST /api/passengers/bookings/request
func (h Handlers) RequestBooking(c *gin.Context) {
	var req bookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	passengerID := strings.TrimSpace(req.PassengerID)
	driverID := strings.TrimSpace(req.DriverID)
	if passengerID == "" || driverID == "" {
		RespondError(c, http.StatusBadRequest, "Passenger ID and driver ID required")
		return
	}
	b, err := h.Bookings.CreateBooking(c.Request.Context(), passengerID, driverID, req.Pickup, req.Dropoff)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"booking": b})
}
