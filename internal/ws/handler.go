package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// API key auth provides access control.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SnapshotFunc returns the current state sent to a client right after it
// connects.
type SnapshotFunc func() any

type snapshotMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Handler returns an http.HandlerFunc that upgrades connections to WebSocket
// and registers the client with the hub. The optional "types" query parameter
// filters events by type. Auth is handled by the router middleware.
func Handler(hub *Hub, logger *slog.Logger, snapshot SnapshotFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws: upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		client := hub.NewClient(conn, ParseTypes(r.URL.Query().Get("types")))

		// Queue the snapshot before registering so it is always the first message.
		if snapshot != nil {
			data, err := json.Marshal(snapshotMessage{
				Type:      SnapshotType,
				Timestamp: time.Now(),
				Data:      snapshot(),
			})
			if err != nil {
				logger.Error("ws: failed to marshal snapshot", "error", err)
			} else {
				client.send <- data
			}
		}

		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
