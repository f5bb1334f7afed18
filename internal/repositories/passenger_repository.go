package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "nganya/internal/config"
	"nganya/internal/domain"
	"nganya/internal/domain/models"
)

type PassengerRepository struct {
	DB *sql.DB
}

func (r PassengerRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r PassengerRepository) FindByID(ctx context.Context, id string) (models.Passenger, error) {
	return r.findOne(ctx, `
		SELECT id, name, COALESCE(phone, ''), email, password_hash, created_at
		FROM passengers
		WHERE id = ? LIMIT 1
	`, id)
}

func (r PassengerRepository) FindByEmail(ctx context.Context, email string) (models.Passenger, error) {
	return r.findOne(ctx, `
		SELECT id, name, COALESCE(phone, ''), email, password_hash, created_at
		FROM passengers
		WHERE email = ? LIMIT 1
	`, email)
}

func (r PassengerRepository) findOne(ctx context.Context, query, arg string) (models.Passenger, error) {
	var p models.Passenger
	err := r.db().QueryRowContext(ctx, query, arg).Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.Email,
		&p.PasswordHash,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Passenger{}, domain.NotFoundError{Resource: "passenger", Err: err}
		}
		return models.Passenger{}, err
	}
	return p, nil
}

func (r PassengerRepository) Create(ctx context.Context, p models.Passenger) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO passengers (id, name, phone, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Phone, p.Email, p.PasswordHash, p.CreatedAt)
	return err
}
