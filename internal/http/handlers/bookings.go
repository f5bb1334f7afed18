package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings/:id
func (h Handlers) GetBooking(c *gin.Context) {
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"booking": b})
}

// GET /api/bookings/:id/ticket returns the trip slip inline.
func (h Handlers) GetTripSlip(c *gin.Context) {
	pdfBytes, filename, err := h.Tickets.GenerateTripSlip(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
