package realtime

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Inbound events.
const (
	EventJoinDriver       = "joinDriver"
	EventJoinPassenger    = "joinPassenger"
	EventPassengerGPS     = "passengerGPS"
	EventGetOnlineDrivers = "getOnlineDrivers"
)

// Outbound events.
const (
	EventNewBooking           = "newBooking"
	EventTripAccepted         = "tripAccepted"
	EventDriverGPSUpdate      = "driverGPSUpdate"
	EventDriversOnlineList    = "driversOnlineList"
	EventNewDriverApplication = "newDriverApplication"
	EventError                = "error"
)

// Event is an outbound message before encoding.
type Event struct {
	Name string
	Data any
}

type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Encode renders the wire frame {"event": ..., "data": ...}.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(frame{Event: e.Name, Data: e.Data})
}

// Envelope is an inbound frame; Data is decoded per event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// IdentityArg accepts an id sent as a JSON string or number.
type IdentityArg string

func (a *IdentityArg) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*a = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = IdentityArg(strings.TrimSpace(s))
		return nil
	default:
		*a = IdentityArg(strings.Trim(string(b), `"`))
		return nil
	}
}

type GPSPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PassengerGPS struct {
	DriverID IdentityArg `json:"driverId"`
	Lat      float64     `json:"lat"`
	Lng      float64     `json:"lng"`
}

type PassengerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type NewBookingPayload struct {
	BookingID string        `json:"bookingId"`
	Passenger PassengerInfo `json:"passenger"`
	Pickup    string        `json:"pickup"`
	Dropoff   string        `json:"dropoff"`
	Status    string        `json:"status"`
}

type DriverInfo struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Vehicle string `json:"vehicle"`
	Route   string `json:"route"`
}

type TripAcceptedPayload struct {
	BookingID    string     `json:"bookingId"`
	Driver       DriverInfo `json:"driver"`
	DropoffStage string     `json:"dropoffStage"`
}

type DriverApplicationPayload struct {
	DriverID string `json:"driverId"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
