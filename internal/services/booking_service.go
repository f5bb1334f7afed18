package services

import (
	"context"
	"fmt"
	"time"

	"nganya/internal/domain"
	"nganya/internal/domain/models"
	"nganya/internal/realtime"
	"nganya/internal/utils"
)

// BookingService runs the booking lifecycle: pending on request, accepted when
// the driver takes it. Every transition is persisted before it is published.
type BookingService struct {
	Bookings   BookingStore
	Passengers PassengerStore
	Drivers    DriverStore
	Router     Publisher
	Now        func() time.Time
	NewID      func() string
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BookingService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return domain.NewID()
}

// CreateBooking stores a pending booking and notifies the driver's room.
// Several pending bookings for the same passenger and driver may coexist.
func (s BookingService) CreateBooking(ctx context.Context, passengerID, driverID, pickup, dropoff string) (models.Booking, error) {
	ctx = context.WithoutCancel(ctx)
	reqID := utils.RequestIDFrom(ctx)
	utils.LogEvent(reqID, "booking", "create", fmt.Sprintf("passenger_id=%s driver_id=%s", passengerID, driverID))

	passenger, err := s.Passengers.FindByID(ctx, passengerID)
	if err != nil {
		return models.Booking{}, partyErr(err)
	}
	if _, err := s.Drivers.FindByID(ctx, driverID); err != nil {
		return models.Booking{}, partyErr(err)
	}

	now := s.now()
	b := models.Booking{
		ID:          s.newID(),
		PassengerID: passengerID,
		DriverID:    driverID,
		Pickup:      pickup,
		Dropoff:     dropoff,
		Status:      models.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return models.Booking{}, storeErr(err, "Failed to create booking")
	}

	n := s.Router.PublishToRoom(driverID, realtime.Event{
		Name: realtime.EventNewBooking,
		Data: realtime.NewBookingPayload{
			BookingID: b.ID,
			Passenger: realtime.PassengerInfo{Name: passenger.Name, Phone: passenger.Phone},
			Pickup:    b.Pickup,
			Dropoff:   b.Dropoff,
			Status:    string(b.Status),
		},
	})
	utils.LogEvent(reqID, "booking", "new_booking", fmt.Sprintf("booking_id=%s delivered=%d", b.ID, n))
	return b, nil
}

// partyErr reports a missing passenger or driver with the same message, the
// way the request endpoint always has.
func partyErr(err error) error {
	if domain.IsNotFound(err) {
		return domain.NotFoundError{Resource: "Passenger or driver", Err: err}
	}
	return storeErr(err, "Failed to create booking")
}

// AcceptBooking marks the booking accepted and tells the passenger's room.
// It does not check the current status or that driverID owns the booking:
// accepting twice persists and publishes twice.
func (s BookingService) AcceptBooking(ctx context.Context, driverID, bookingID string) (models.Booking, error) {
	ctx = context.WithoutCancel(ctx)
	reqID := utils.RequestIDFrom(ctx)
	utils.LogEvent(reqID, "booking", "accept", fmt.Sprintf("booking_id=%s driver_id=%s", bookingID, driverID))

	full, err := s.Bookings.FindWithParties(ctx, bookingID)
	if err != nil {
		return models.Booking{}, storeErr(err, "Failed to accept booking")
	}

	b := full.Booking
	b.Accept()
	b.UpdatedAt = s.now()
	if err := s.Bookings.Save(ctx, b); err != nil {
		return models.Booking{}, storeErr(err, "Failed to accept booking")
	}

	n := s.Router.PublishToRoom(b.PassengerID, realtime.Event{
		Name: realtime.EventTripAccepted,
		Data: realtime.TripAcceptedPayload{
			BookingID: b.ID,
			Driver: realtime.DriverInfo{
				ID:      full.Driver.ID,
				Name:    full.Driver.Name,
				Vehicle: full.Driver.Vehicle,
				Route:   full.Driver.Route,
			},
			DropoffStage: b.Dropoff,
		},
	})
	utils.LogEvent(reqID, "booking", "trip_accepted", fmt.Sprintf("booking_id=%s delivered=%d", b.ID, n))
	return b, nil
}

func (s BookingService) GetBooking(ctx context.Context, bookingID string) (models.Booking, error) {
	b, err := s.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, storeErr(err, "Failed to fetch booking")
	}
	return b, nil
}
