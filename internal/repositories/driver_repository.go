package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "nganya/internal/config"
	intdb "nganya/internal/db"
	"nganya/internal/domain"
	"nganya/internal/domain/models"
)

const driverColumns = `
	id,
	name,
	COALESCE(phone, ''),
	password_hash,
	status,
	is_online,
	COALESCE(vehicle, ''),
	COALESCE(route, ''),
	COALESCE(capacity, 0),
	COALESCE(reject_reason, ''),
	created_at,
	updated_at`

type DriverRepository struct {
	DB *sql.DB
}

func (r DriverRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (models.Driver, error) {
	var d models.Driver
	var status string
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Phone,
		&d.PasswordHash,
		&status,
		&d.IsOnline,
		&d.Vehicle,
		&d.Route,
		&d.Capacity,
		&d.RejectReason,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	d.Status = models.ApprovalStatus(status)
	return d, err
}

func (r DriverRepository) FindByID(ctx context.Context, id string) (models.Driver, error) {
	return r.findOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ? LIMIT 1`, id)
}

func (r DriverRepository) FindByPhone(ctx context.Context, phone string) (models.Driver, error) {
	return r.findOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE phone = ? LIMIT 1`, phone)
}

func (r DriverRepository) findOne(ctx context.Context, query string, arg string) (models.Driver, error) {
	d, err := scanDriver(r.db().QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Driver{}, domain.NotFoundError{Resource: "driver", Err: err}
		}
		return models.Driver{}, err
	}
	return d, nil
}

// FindAddressable returns approved drivers that are online. No ORDER BY: callers
// must not rely on the order.
func (r DriverRepository) FindAddressable(ctx context.Context) ([]models.Driver, error) {
	return r.findMany(ctx, `SELECT `+driverColumns+` FROM drivers WHERE is_online = 1 AND status = ?`, string(models.DriverApproved))
}

func (r DriverRepository) FindAll(ctx context.Context) ([]models.Driver, error) {
	return r.findMany(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY created_at DESC`)
}

func (r DriverRepository) findMany(ctx context.Context, query string, args ...any) ([]models.Driver, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r DriverRepository) Create(ctx context.Context, d models.Driver) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO drivers (id, name, phone, password_hash, status, is_online, vehicle, route, capacity, reject_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		d.Name,
		d.Phone,
		d.PasswordHash,
		string(d.Status),
		d.IsOnline,
		intdb.NullIfEmpty(d.Vehicle),
		intdb.NullIfEmpty(d.Route),
		d.Capacity,
		intdb.NullIfEmpty(d.RejectReason),
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

// Save overwrites every mutable column. Last write wins.
func (r DriverRepository) Save(ctx context.Context, d models.Driver) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE drivers
		SET
			name          = ?,
			phone         = ?,
			status        = ?,
			is_online     = ?,
			vehicle       = ?,
			route         = ?,
			capacity      = ?,
			reject_reason = ?,
			updated_at    = ?
		WHERE id = ?
	`,
		d.Name,
		d.Phone,
		string(d.Status),
		d.IsOnline,
		intdb.NullIfEmpty(d.Vehicle),
		intdb.NullIfEmpty(d.Route),
		d.Capacity,
		intdb.NullIfEmpty(d.RejectReason),
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 for an update that changes nothing, so confirm the row.
		if _, err := r.FindByID(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}
