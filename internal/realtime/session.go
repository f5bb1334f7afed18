package realtime

import (
	"errors"
	"sync"

	"nganya/internal/domain"
)

var ErrAlreadyIdentified = errors.New("session already joined with another identity")

// Session is one live connection. It starts unidentified and becomes
// addressable once it joins a room; events published before that are lost.
type Session struct {
	ID string

	mu       sync.Mutex
	role     domain.Role
	identity string
	rooms    map[string]struct{}
	send     chan []byte
	closed   bool
}

func NewSession(id string, buffer int) *Session {
	if buffer <= 0 {
		buffer = 64
	}
	return &Session{
		ID:    id,
		rooms: map[string]struct{}{},
		send:  make(chan []byte, buffer),
	}
}

// Outbound yields encoded frames for the connection writer. It is closed when
// the session is unregistered.
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

func (s *Session) Identity() (domain.Role, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role, s.identity, s.identity != ""
}

// identify attaches the identity once. Re-declaring the same identity is a no-op.
func (s *Session) identify(role domain.Role, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != "" && (s.identity != id || s.role != role) {
		return ErrAlreadyIdentified
	}
	s.role = role
	s.identity = id
	s.rooms[id] = struct{}{}
	return nil
}

func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rooms))
	for r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// enqueue never blocks: a full or closed session drops the frame.
func (s *Session) enqueue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
