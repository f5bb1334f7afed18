package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"nganya/internal/domain/models"
	"nganya/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TicketService renders a one-page PDF trip slip for a booking.
type TicketService struct {
	Bookings BookingStore
	Now      func() time.Time
}

func (s TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateTripSlip returns the PDF bytes and a download filename.
func (s TicketService) GenerateTripSlip(ctx context.Context, bookingID string) ([]byte, string, error) {
	full, err := s.Bookings.FindWithParties(ctx, bookingID)
	if err != nil {
		return nil, "", storeErr(err, "Failed to load booking")
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "ticket", "generate", "booking_id="+bookingID)
	return buildTripSlipPDF(full, s.now())
}

func buildTripSlipPDF(b models.BookingWithParties, printedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Trip Slip", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "TRIP SLIP")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Booking    : %s", b.ID),
		fmt.Sprintf("Status     : %s", strings.ToUpper(string(b.Status))),
		fmt.Sprintf("Passenger  : %s (%s)", safe(b.Passenger.Name, "-"), safe(b.Passenger.Phone, "-")),
		fmt.Sprintf("Pickup     : %s", safe(b.Pickup, "-")),
		fmt.Sprintf("Dropoff    : %s", safe(b.Dropoff, "-")),
		fmt.Sprintf("Driver     : %s", safe(b.Driver.Name, "-")),
		fmt.Sprintf("Vehicle    : %s", safe(b.Driver.Vehicle, "-")),
		fmt.Sprintf("Route      : %s", safe(b.Driver.Route, "-")),
		fmt.Sprintf("Requested  : %s", b.CreatedAt.Format("2006-01-02 15:04")),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	note := "Show this slip to the driver at the pickup stage."
	if b.Status != models.BookingAccepted {
		note = "This booking has not been accepted by the driver yet."
	}
	pdf.MultiCell(0, 5, note+" Printed "+printedAt.Format("2006-01-02 15:04")+".", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("TRIP_%s_%s.pdf", safeFilenamePart(b.ID), safeFilenamePart(b.Passenger.Name))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
