package services

import (
	"context"

	"nganya/internal/domain/models"
	"nganya/internal/realtime"
)

// Stores return domain.NotFoundError for missing rows and raw errors otherwise.

type PassengerStore interface {
	FindByID(ctx context.Context, id string) (models.Passenger, error)
	FindByEmail(ctx context.Context, email string) (models.Passenger, error)
	Create(ctx context.Context, p models.Passenger) error
}

type DriverStore interface {
	FindByID(ctx context.Context, id string) (models.Driver, error)
	FindByPhone(ctx context.Context, phone string) (models.Driver, error)
	FindAddressable(ctx context.Context) ([]models.Driver, error)
	FindAll(ctx context.Context) ([]models.Driver, error)
	Create(ctx context.Context, d models.Driver) error
	Save(ctx context.Context, d models.Driver) error
}

type BookingStore interface {
	FindByID(ctx context.Context, id string) (models.Booking, error)
	FindWithParties(ctx context.Context, id string) (models.BookingWithParties, error)
	Create(ctx context.Context, b models.Booking) error
	Save(ctx context.Context, b models.Booking) error
}

// Publisher is the dispatch router as seen by the services. Every method
// returns how many local sessions received the event; zero is not an error.
type Publisher interface {
	PublishToRoom(room string, ev realtime.Event) int
	Broadcast(ev realtime.Event) int
	SendTo(sessionID string, ev realtime.Event) bool
}
