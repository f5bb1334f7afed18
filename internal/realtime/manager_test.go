package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"nganya/internal/domain"
)

type fakePresence struct {
	mu        sync.Mutex
	attached  []string
	detached  []string
	snapshots []string
	err       error
}

func (f *fakePresence) AttachDriver(_ context.Context, driverID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = append(f.attached, driverID+"@"+sessionID)
	return f.err
}

func (f *fakePresence) DetachDriver(_ context.Context, driverID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached = append(f.detached, driverID+"@"+sessionID)
	return f.err
}

func (f *fakePresence) SendSnapshot(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, sessionID)
	return f.err
}

func envelope(t *testing.T, event string, data any) Envelope {
	t.Helper()
	env := Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		env.Data = raw
	}
	return env
}

func TestJoinDriverAttachesAndTriggersPresence(t *testing.T) {
	presence := &fakePresence{}
	m := NewManager(NewHub(), presence, 8)
	s := m.Connect()

	m.Handle(context.Background(), s, envelope(t, EventJoinDriver, "d-1"))

	role, id, ok := s.Identity()
	if !ok || role != domain.RoleDriver || id != "d-1" {
		t.Fatalf("identity not declared: %s %s %v", role, id, ok)
	}
	if m.Hub.RoomSize("d-1") != 1 {
		t.Fatalf("driver room not joined")
	}
	if len(presence.attached) != 1 || presence.attached[0] != "d-1@"+s.ID {
		t.Fatalf("presence not notified: %v", presence.attached)
	}
}

func TestJoinPassengerOnlyAttachesRoom(t *testing.T) {
	presence := &fakePresence{}
	m := NewManager(NewHub(), presence, 8)
	s := m.Connect()

	m.Handle(context.Background(), s, envelope(t, EventJoinPassenger, "p-1"))

	if m.Hub.RoomSize("p-1") != 1 {
		t.Fatalf("passenger room not joined")
	}
	if len(presence.attached) != 0 {
		t.Fatalf("passenger join must not touch presence")
	}
}

func TestJoinWithSecondIdentityIsRefused(t *testing.T) {
	m := NewManager(NewHub(), &fakePresence{}, 8)
	s := m.Connect()

	if err := m.Join(context.Background(), s, domain.RolePassenger, "p-1"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := m.Join(context.Background(), s, domain.RolePassenger, "p-1"); err != nil {
		t.Fatalf("rejoining the same identity should be accepted: %v", err)
	}
	if err := m.Join(context.Background(), s, domain.RoleDriver, "d-9"); !errors.Is(err, ErrAlreadyIdentified) {
		t.Fatalf("expected ErrAlreadyIdentified, got %v", err)
	}
	if m.Hub.RoomSize("d-9") != 0 {
		t.Fatalf("refused join must not attach a room")
	}

	m.Handle(context.Background(), s, envelope(t, EventJoinDriver, "d-9"))
	frames := drain(s)
	if len(frames) != 1 || frames[0].Event != EventError {
		t.Fatalf("expected an error event, got %+v", frames)
	}
}

func TestJoinWithoutIDSendsError(t *testing.T) {
	m := NewManager(NewHub(), &fakePresence{}, 8)
	s := m.Connect()

	m.Handle(context.Background(), s, Envelope{Event: EventJoinDriver})
	frames := drain(s)
	if len(frames) != 1 || frames[0].Event != EventError {
		t.Fatalf("expected an error event, got %+v", frames)
	}
	if _, _, ok := s.Identity(); ok {
		t.Fatalf("session must stay unidentified")
	}
}

func TestPassengerGPSRelaysToConnectedDriver(t *testing.T) {
	m := NewManager(NewHub(), &fakePresence{}, 8)
	driver := m.Connect()
	passenger := m.Connect()
	ctx := context.Background()
	m.Handle(ctx, driver, envelope(t, EventJoinDriver, "d-1"))
	m.Handle(ctx, passenger, envelope(t, EventJoinPassenger, "p-1"))

	m.Handle(ctx, passenger, envelope(t, EventPassengerGPS, map[string]any{"driverId": "d-1", "lat": 1.0, "lng": 2.0}))

	frames := drain(driver)
	if len(frames) != 1 || frames[0].Event != EventDriverGPSUpdate {
		t.Fatalf("driver did not get gps update: %+v", frames)
	}
	var point GPSPoint
	if err := json.Unmarshal(frames[0].Data, &point); err != nil {
		t.Fatalf("decode point: %v", err)
	}
	if point.Lat != 1.0 || point.Lng != 2.0 {
		t.Fatalf("coordinates changed in transit: %+v", point)
	}
	if len(drain(passenger)) != 0 {
		t.Fatalf("sender got a reply to a fire-and-forget relay")
	}
}

func TestPassengerGPSToAbsentDriverIsSilent(t *testing.T) {
	m := NewManager(NewHub(), &fakePresence{}, 8)
	passenger := m.Connect()
	m.Handle(context.Background(), passenger, envelope(t, EventJoinPassenger, "p-1"))

	if n := m.RelayLocation(passenger, "d-offline", GPSPoint{Lat: 1, Lng: 2}); n != 0 {
		t.Fatalf("expected no delivery, got %d", n)
	}
	m.Handle(context.Background(), passenger, envelope(t, EventPassengerGPS, map[string]any{"driverId": "d-offline", "lat": 1.0, "lng": 2.0}))
	if len(drain(passenger)) != 0 {
		t.Fatalf("sender must not be told about a dropped relay")
	}
}

func TestGetOnlineDriversAsksPresenceForSession(t *testing.T) {
	presence := &fakePresence{}
	m := NewManager(NewHub(), presence, 8)
	s := m.Connect()

	m.Handle(context.Background(), s, Envelope{Event: EventGetOnlineDrivers})
	if len(presence.snapshots) != 1 || presence.snapshots[0] != s.ID {
		t.Fatalf("snapshot not requested for sender: %v", presence.snapshots)
	}
}

func TestDisconnectDriverDetaches(t *testing.T) {
	presence := &fakePresence{}
	m := NewManager(NewHub(), presence, 8)
	driver := m.Connect()
	passenger := m.Connect()
	ctx := context.Background()
	m.Handle(ctx, driver, envelope(t, EventJoinDriver, "d-1"))
	m.Handle(ctx, passenger, envelope(t, EventJoinPassenger, "p-1"))

	m.Disconnect(ctx, passenger)
	if len(presence.detached) != 0 {
		t.Fatalf("passenger disconnect must not touch presence")
	}

	m.Disconnect(ctx, driver)
	if len(presence.detached) != 1 || presence.detached[0] != "d-1@"+driver.ID {
		t.Fatalf("driver disconnect not reported: %v", presence.detached)
	}
	if m.Hub.SessionCount() != 0 || m.Hub.RoomSize("d-1") != 0 {
		t.Fatalf("sessions not cleaned up")
	}
}

func TestPresenceFailureDoesNotUndoJoin(t *testing.T) {
	presence := &fakePresence{err: errors.New("db down")}
	m := NewManager(NewHub(), presence, 8)
	s := m.Connect()

	if err := m.Join(context.Background(), s, domain.RoleDriver, "d-1"); err != nil {
		t.Fatalf("join should succeed even when broadcast fails: %v", err)
	}
	if m.Hub.RoomSize("d-1") != 1 {
		t.Fatalf("room lost after broadcast failure")
	}
}
