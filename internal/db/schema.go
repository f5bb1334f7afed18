package db

import (
	"context"
	"database/sql"
	"fmt"
)

// QueryRower is satisfied by *sql.DB and *sql.Tx.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// NullIfEmpty stores optional strings as NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var tables = []struct {
	name string
	ddl  string
}{
	{"passengers", `
CREATE TABLE IF NOT EXISTS passengers (
	id CHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	phone VARCHAR(50) NOT NULL DEFAULT '',
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_passenger_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"drivers", `
CREATE TABLE IF NOT EXISTS drivers (
	id CHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	phone VARCHAR(50) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	is_online TINYINT(1) NOT NULL DEFAULT 0,
	vehicle VARCHAR(255) NULL,
	route VARCHAR(255) NULL,
	capacity INT NOT NULL DEFAULT 0,
	reject_reason VARCHAR(500) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_driver_phone (phone),
	KEY idx_driver_presence (status, is_online)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id CHAR(36) NOT NULL PRIMARY KEY,
	passenger_id CHAR(36) NOT NULL,
	driver_id CHAR(36) NOT NULL,
	pickup VARCHAR(255) NOT NULL DEFAULT '',
	dropoff VARCHAR(255) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_booking_driver (driver_id),
	KEY idx_booking_passenger (passenger_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

type Conn interface {
	QueryRower
	Execer
}

// Migrate creates missing tables. Existing tables are left untouched.
func Migrate(ctx context.Context, conn Conn) error {
	for _, t := range tables {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}
