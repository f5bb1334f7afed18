package realtime

import (
	"encoding/json"
	"sync"

	"nganya/internal/utils"
)

// Forwarder relays published frames to other server instances.
type Forwarder interface {
	Forward(msg BridgeMessage)
}

// BridgeMessage is a frame crossing instances. Room "" means every session.
type BridgeMessage struct {
	Node   string          `json:"node"`
	Room   string          `json:"room,omitempty"`
	Except string          `json:"except,omitempty"`
	Frame  json.RawMessage `json:"frame"`
}

// Hub routes events to rooms, single sessions or everyone. Counts returned by
// the publish methods cover local sessions only.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[string]map[string]*Session
	bridge   Forwarder
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
	}
}

// SetForwarder enables cross-instance fan-out. Call before serving traffic.
func (h *Hub) SetForwarder(f Forwarder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridge = f
}

func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
}

// Unregister drops the session from every room and closes its outbound queue.
func (h *Hub) Unregister(id string) *Session {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
		for _, room := range s.Rooms() {
			h.leaveLocked(room, id)
		}
	}
	h.mu.Unlock()

	if ok {
		s.close()
	}
	return s
}

func (h *Hub) join(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Session)
		h.rooms[room] = members
	}
	members[s.ID] = s
}

func (h *Hub) leaveLocked(room, id string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// PublishToRoom delivers ev to every session in room. An empty room is not an
// error: the event is dropped.
func (h *Hub) PublishToRoom(room string, ev Event) int {
	return h.publish(room, "", ev)
}

// Relay publishes to room, skipping the sending session.
func (h *Hub) Relay(fromSessionID, room string, ev Event) int {
	return h.publish(room, fromSessionID, ev)
}

// Broadcast delivers ev to every connected session.
func (h *Hub) Broadcast(ev Event) int {
	return h.publish("", "", ev)
}

// SendTo delivers ev to one local session only.
func (h *Hub) SendTo(sessionID string, ev Event) bool {
	data, err := ev.Encode()
	if err != nil {
		utils.LogEvent("", "hub", "encode", "event="+ev.Name+" err="+err.Error())
		return false
	}
	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return s.enqueue(data)
}

func (h *Hub) publish(room, except string, ev Event) int {
	data, err := ev.Encode()
	if err != nil {
		utils.LogEvent("", "hub", "encode", "event="+ev.Name+" err="+err.Error())
		return 0
	}

	h.mu.RLock()
	bridge := h.bridge
	h.mu.RUnlock()
	if bridge != nil {
		bridge.Forward(BridgeMessage{Room: room, Except: except, Frame: data})
	}
	return h.deliver(room, except, data)
}

// DeliverRemote hands a frame received from another instance to local sessions.
func (h *Hub) DeliverRemote(msg BridgeMessage) int {
	return h.deliver(msg.Room, msg.Except, msg.Frame)
}

func (h *Hub) deliver(room, except string, data []byte) int {
	h.mu.RLock()
	var targets []*Session
	if room == "" {
		targets = make([]*Session, 0, len(h.sessions))
		for _, s := range h.sessions {
			targets = append(targets, s)
		}
	} else {
		members := h.rooms[room]
		targets = make([]*Session, 0, len(members))
		for _, s := range members {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if s.ID == except {
			continue
		}
		if s.enqueue(data) {
			delivered++
		} else {
			utils.LogEvent("", "hub", "drop", "session="+s.ID+" reason=queue_full_or_closed")
		}
	}
	return delivered
}
