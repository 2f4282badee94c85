package httpapi

import (
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The daemon binds to loopback; cross-origin review UIs are expected.
	CheckOrigin: func(*http.Request) bool { return true },
}

// eventsHandler streams status snapshots for one project over a websocket.
// A frame is sent immediately on connect and then whenever the snapshot
// changes, checked at the configured interval.
func eventsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")
		if _, err := buildSnapshot(r.Context(), cfg.Store, projectID); err != nil {
			writeActionError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.Logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		// Drain client frames so pings and close messages are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(cfg.StreamInterval)
		defer ticker.Stop()

		var last StatusSnapshot
		for {
			snapshot, err := buildSnapshot(r.Context(), cfg.Store, projectID)
			if err != nil {
				return
			}
			if !reflect.DeepEqual(snapshot, last) {
				if err := conn.WriteJSON(snapshot); err != nil {
					return
				}
				last = snapshot
			}

			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}
