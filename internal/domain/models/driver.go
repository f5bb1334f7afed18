package models

import "time"

type ApprovalStatus string

const (
	DriverPending  ApprovalStatus = "pending"
	DriverApproved ApprovalStatus = "approved"
	DriverRejected ApprovalStatus = "rejected"
)

const DefaultRejectReason = "No reason provided"

type Driver struct {
	ID           string         `json:"_id"`
	Name         string         `json:"name"`
	Phone        string         `json:"phone"`
	PasswordHash string         `json:"-"`
	Status       ApprovalStatus `json:"status"`
	IsOnline     bool           `json:"isOnline"`
	Vehicle      string         `json:"vehicle"`
	Route        string         `json:"route"`
	Capacity     int            `json:"capacity"`
	RejectReason string         `json:"rejectReason,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Addressable reports whether the driver may receive new bookings.
func (d Driver) Addressable() bool {
	return d.Status == DriverApproved && d.IsOnline
}

// Presence is the broadcast view of an addressable driver.
func (d Driver) Presence() DriverPresence {
	return DriverPresence{
		ID:       d.ID,
		Name:     d.Name,
		Vehicle:  d.Vehicle,
		Route:    d.Route,
		Capacity: d.Capacity,
	}
}

type DriverPresence struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Vehicle  string `json:"vehicle"`
	Route    string `json:"route"`
	Capacity int    `json:"capacity"`
}

// DriverApplication carries the vehicle details a driver submits for review.
type DriverApplication struct {
	Vehicle  string
	Route    string
	Capacity int
}
