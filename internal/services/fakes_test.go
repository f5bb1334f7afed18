package services

import (
	"context"
	"errors"
	"sync"

	"nganya/internal/domain"
	"nganya/internal/domain/models"
	"nganya/internal/realtime"
)

var errStoreDown = errors.New("store down")

type memDrivers struct {
	mu      sync.Mutex
	order   []string
	rows    map[string]models.Driver
	saveErr error
	findErr error
	saves   int
}

func newMemDrivers(ds ...models.Driver) *memDrivers {
	m := &memDrivers{rows: map[string]models.Driver{}}
	for _, d := range ds {
		m.order = append(m.order, d.ID)
		m.rows[d.ID] = d
	}
	return m
}

func (m *memDrivers) FindByID(_ context.Context, id string) (models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return models.Driver{}, m.findErr
	}
	d, ok := m.rows[id]
	if !ok {
		return models.Driver{}, domain.NotFoundError{Resource: "driver"}
	}
	return d, nil
}

func (m *memDrivers) FindByPhone(_ context.Context, phone string) (models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if m.rows[id].Phone == phone {
			return m.rows[id], nil
		}
	}
	return models.Driver{}, domain.NotFoundError{Resource: "driver"}
}

func (m *memDrivers) FindAddressable(_ context.Context) ([]models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []models.Driver
	for _, id := range m.order {
		if d := m.rows[id]; d.Addressable() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDrivers) FindAll(_ context.Context) ([]models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Driver, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.rows[id])
	}
	return out, nil
}

func (m *memDrivers) Create(_ context.Context, d models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = append(m.order, d.ID)
	m.rows[d.ID] = d
	return nil
}

func (m *memDrivers) Save(_ context.Context, d models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.rows[d.ID]; !ok {
		return domain.NotFoundError{Resource: "driver"}
	}
	m.rows[d.ID] = d
	m.saves++
	return nil
}

func (m *memDrivers) get(id string) models.Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type memPassengers struct {
	mu   sync.Mutex
	rows map[string]models.Passenger
}

func newMemPassengers(ps ...models.Passenger) *memPassengers {
	m := &memPassengers{rows: map[string]models.Passenger{}}
	for _, p := range ps {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memPassengers) FindByID(_ context.Context, id string) (models.Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return models.Passenger{}, domain.NotFoundError{Resource: "passenger"}
	}
	return p, nil
}

func (m *memPassengers) FindByEmail(_ context.Context, email string) (models.Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Email == email {
			return p, nil
		}
	}
	return models.Passenger{}, domain.NotFoundError{Resource: "passenger"}
}

func (m *memPassengers) Create(_ context.Context, p models.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = p
	return nil
}

type memBookings struct {
	mu         sync.Mutex
	rows       map[string]models.Booking
	drivers    *memDrivers
	passengers *memPassengers
	saveErr    error
	saves      int
}

func newMemBookings(drivers *memDrivers, passengers *memPassengers) *memBookings {
	return &memBookings{rows: map[string]models.Booking{}, drivers: drivers, passengers: passengers}
}

func (m *memBookings) FindByID(_ context.Context, id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (m *memBookings) FindWithParties(ctx context.Context, id string) (models.BookingWithParties, error) {
	b, err := m.FindByID(ctx, id)
	if err != nil {
		return models.BookingWithParties{}, err
	}
	full := models.BookingWithParties{Booking: b}
	full.Driver = m.drivers.get(b.DriverID)
	full.Driver.ID = b.DriverID
	if p, err := m.passengers.FindByID(ctx, b.PassengerID); err == nil {
		full.Passenger = p
	}
	full.Passenger.ID = b.PassengerID
	return full, nil
}

func (m *memBookings) Create(_ context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = b
	return nil
}

func (m *memBookings) Save(_ context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rows[b.ID] = b
	m.saves++
	return nil
}

type published struct {
	kind   string // room, all or session
	target string
	ev     realtime.Event
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *recordingPublisher) PublishToRoom(room string, ev realtime.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{kind: "room", target: room, ev: ev})
	return 1
}

func (p *recordingPublisher) Broadcast(ev realtime.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{kind: "all", ev: ev})
	return 1
}

func (p *recordingPublisher) SendTo(sessionID string, ev realtime.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{kind: "session", target: sessionID, ev: ev})
	return true
}

func (p *recordingPublisher) named(name string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, s := range p.sent {
		if s.ev.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func (p *recordingPublisher) lastSnapshot() []models.DriverPresence {
	list := p.named(realtime.EventDriversOnlineList)
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1].ev.Data.([]models.DriverPresence)
}
