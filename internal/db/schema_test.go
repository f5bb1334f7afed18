package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrateCreatesOnlyMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("passengers").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("passengers"))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("drivers").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS drivers").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("bookings").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS bookings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Migrate(context.Background(), conn); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNullIfEmpty(t *testing.T) {
	if NullIfEmpty("") != nil {
		t.Fatalf("empty string should map to nil")
	}
	if NullIfEmpty("x") != "x" {
		t.Fatalf("non-empty string should pass through")
	}
}
