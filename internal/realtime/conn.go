package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nganya/internal/utils"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and runs the session until the peer goes away.
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.LogEvent(r.Header.Get("X-Request-ID"), "ws", "upgrade", "err="+err.Error())
		return
	}

	s := m.Connect()
	done := make(chan struct{})
	go func() {
		writePump(conn, s)
		close(done)
	}()

	// Session work is not tied to the request context; disconnect runs after it ends.
	ctx := context.WithoutCancel(r.Context())
	m.readPump(ctx, conn, s)
	m.Disconnect(ctx, s)
	<-done
}

func (m *Manager) readPump(ctx context.Context, conn *websocket.Conn, s *Session) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.LogEvent(s.ID, "ws", "read", "err="+err.Error())
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			m.reject(s, "", "invalid frame")
			continue
		}
		m.Handle(ctx, s, env)
	}
}

// writePump drains the session queue until the hub closes it.
func writePump(conn *websocket.Conn, s *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				utils.LogEvent(s.ID, "ws", "write", "err="+err.Error())
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
