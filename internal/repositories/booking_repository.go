package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "nganya/internal/config"
	"nganya/internal/domain"
	"nganya/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO bookings (id, passenger_id, driver_id, pickup, dropoff, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.PassengerID, b.DriverID, b.Pickup, b.Dropoff, string(b.Status), b.CreatedAt, b.UpdatedAt)
	return err
}

// Save overwrites the booking row without any version check.
func (r BookingRepository) Save(ctx context.Context, b models.Booking) error {
	_, err := r.db().ExecContext(ctx, `
		UPDATE bookings
		SET
			pickup     = ?,
			dropoff    = ?,
			status     = ?,
			updated_at = ?
		WHERE id = ?
	`, b.Pickup, b.Dropoff, string(b.Status), b.UpdatedAt, b.ID)
	return err
}

func (r BookingRepository) FindByID(ctx context.Context, id string) (models.Booking, error) {
	var b models.Booking
	var status string
	err := r.db().QueryRowContext(ctx, `
		SELECT id, passenger_id, driver_id, pickup, dropoff, status, created_at, updated_at
		FROM bookings
		WHERE id = ? LIMIT 1
	`, id).Scan(
		&b.ID,
		&b.PassengerID,
		&b.DriverID,
		&b.Pickup,
		&b.Dropoff,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, err
	}
	b.Status = models.BookingStatus(status)
	return b, nil
}

// FindWithParties loads a booking together with its driver and passenger. A
// participant row that has since disappeared comes back zero-valued apart from its id.
func (r BookingRepository) FindWithParties(ctx context.Context, id string) (models.BookingWithParties, error) {
	var out models.BookingWithParties
	var status, driverStatus string
	err := r.db().QueryRowContext(ctx, `
		SELECT
			b.id, b.passenger_id, b.driver_id, b.pickup, b.dropoff, b.status, b.created_at, b.updated_at,
			COALESCE(d.name, ''), COALESCE(d.phone, ''), COALESCE(d.status, ''),
			COALESCE(d.vehicle, ''), COALESCE(d.route, ''), COALESCE(d.capacity, 0),
			COALESCE(p.name, ''), COALESCE(p.phone, ''), COALESCE(p.email, '')
		FROM bookings b
		LEFT JOIN drivers d ON d.id = b.driver_id
		LEFT JOIN passengers p ON p.id = b.passenger_id
		WHERE b.id = ? LIMIT 1
	`, id).Scan(
		&out.ID,
		&out.PassengerID,
		&out.DriverID,
		&out.Pickup,
		&out.Dropoff,
		&status,
		&out.CreatedAt,
		&out.UpdatedAt,
		&out.Driver.Name,
		&out.Driver.Phone,
		&driverStatus,
		&out.Driver.Vehicle,
		&out.Driver.Route,
		&out.Driver.Capacity,
		&out.Passenger.Name,
		&out.Passenger.Phone,
		&out.Passenger.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BookingWithParties{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.BookingWithParties{}, err
	}
	out.Status = models.BookingStatus(status)
	out.Driver.ID = out.DriverID
	out.Driver.Status = models.ApprovalStatus(driverStatus)
	out.Passenger.ID = out.PassengerID
	return out, nil
}
