package models

import "time"

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
)

// Booking is one ride request from a passenger to a specific driver.
type Booking struct {
	ID          string        `json:"_id"`
	PassengerID string        `json:"passenger"`
	DriverID    string        `json:"driver"`
	Pickup      string        `json:"pickup"`
	Dropoff     string        `json:"dropoff"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Accept moves the booking forward. Accepting an accepted booking is allowed and
// leaves it accepted; nothing ever moves a booking back to pending.
func (b *Booking) Accept() {
	b.Status = BookingAccepted
}

// BookingWithParties is a booking joined with both of its participants.
type BookingWithParties struct {
	Booking
	Driver    Driver    `json:"-"`
	Passenger Passenger `json:"-"`
}
