package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"nganya/internal/domain"
	"nganya/internal/utils"

	"github.com/google/uuid"
)

// Presence is the part of the presence registry the session layer drives.
type Presence interface {
	AttachDriver(ctx context.Context, driverID, sessionID string) error
	DetachDriver(ctx context.Context, driverID, sessionID string) error
	SendSnapshot(ctx context.Context, sessionID string) error
}

// Manager owns session lifecycles and interprets inbound events.
type Manager struct {
	Hub        *Hub
	Presence   Presence
	BufferSize int
}

func NewManager(hub *Hub, presence Presence, bufferSize int) *Manager {
	return &Manager{Hub: hub, Presence: presence, BufferSize: bufferSize}
}

// Connect creates an unidentified session and registers it with the hub.
func (m *Manager) Connect() *Session {
	s := NewSession(uuid.NewString(), m.BufferSize)
	m.Hub.Register(s)
	utils.LogEvent(s.ID, "ws", "connect", "session connected")
	return s
}

// Handle dispatches one inbound frame. Unknown events are ignored.
func (m *Manager) Handle(ctx context.Context, s *Session, env Envelope) {
	switch env.Event {
	case EventJoinDriver, EventJoinPassenger:
		var id IdentityArg
		if err := decodeData(env.Data, &id); err != nil || id == "" {
			m.reject(s, env.Event, "identity id required")
			return
		}
		role := domain.RolePassenger
		if env.Event == EventJoinDriver {
			role = domain.RoleDriver
		}
		if err := m.Join(ctx, s, role, string(id)); err != nil {
			m.reject(s, env.Event, err.Error())
		}
	case EventPassengerGPS:
		var gps PassengerGPS
		if err := decodeData(env.Data, &gps); err != nil {
			return
		}
		m.RelayLocation(s, string(gps.DriverID), GPSPoint{Lat: gps.Lat, Lng: gps.Lng})
	case EventGetOnlineDrivers:
		m.QueryAddressable(ctx, s)
	default:
		utils.LogEvent(s.ID, "ws", "unknown_event", "event="+env.Event)
	}
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing data")
	}
	return json.Unmarshal(raw, dst)
}

func (m *Manager) reject(s *Session, event, message string) {
	utils.LogEvent(s.ID, "ws", "reject", "event="+event+" msg="+message)
	m.Hub.SendTo(s.ID, Event{Name: EventError, Data: ErrorPayload{Message: message}})
}

// Join attaches the session to the room named after identityID. A driver join
// also records the live address and triggers a presence broadcast; a failed
// broadcast is logged, the join itself still stands.
func (m *Manager) Join(ctx context.Context, s *Session, role domain.Role, identityID string) error {
	if err := s.identify(role, identityID); err != nil {
		return err
	}
	m.Hub.join(s, identityID)
	utils.LogEvent(s.ID, "ws", "join", fmt.Sprintf("role=%s id=%s", role, identityID))

	if role == domain.RoleDriver && m.Presence != nil {
		if err := m.Presence.AttachDriver(ctx, identityID, s.ID); err != nil {
			utils.LogEvent(s.ID, "ws", "join_broadcast", "err="+err.Error())
		}
	}
	return nil
}

// RelayLocation forwards a passenger's point to the driver's room once. Nobody
// listening means the point is dropped and the sender is not told.
func (m *Manager) RelayLocation(from *Session, targetDriverID string, point GPSPoint) int {
	if targetDriverID == "" {
		return 0
	}
	return m.Hub.Relay(from.ID, targetDriverID, Event{Name: EventDriverGPSUpdate, Data: point})
}

// QueryAddressable sends the current snapshot to the asking session only.
func (m *Manager) QueryAddressable(ctx context.Context, s *Session) {
	if m.Presence == nil {
		return
	}
	if err := m.Presence.SendSnapshot(ctx, s.ID); err != nil {
		utils.LogEvent(s.ID, "ws", "snapshot", "err="+err.Error())
	}
}

// Disconnect tears the session down. For a driver session the presence list is
// rebroadcast even though the stored online flag is left as it was.
func (m *Manager) Disconnect(ctx context.Context, s *Session) {
	role, id, identified := s.Identity()
	m.Hub.Unregister(s.ID)
	utils.LogEvent(s.ID, "ws", "disconnect", fmt.Sprintf("role=%s id=%s", role, id))

	if identified && role == domain.RoleDriver && m.Presence != nil {
		if err := m.Presence.DetachDriver(ctx, id, s.ID); err != nil {
			utils.LogEvent(s.ID, "ws", "disconnect_broadcast", "err="+err.Error())
		}
	}
}
