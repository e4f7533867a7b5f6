// Package spectator exposes a match as a read-only WebSocket feed. The
// dealer hands the hub every observer-view state line it broadcasts; the
// hub fans the lines out to however many viewers are attached, dropping
// slow consumers rather than stalling the match.
package spectator

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"poker-dealer-server/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Authorizer admits or rejects one viewer based on their bearer token.
type Authorizer func(token string) error

// Hub maintains the set of attached viewers and routes state lines to them.
// Broadcast is safe to call from the dealer's game loop at any time,
// including before Run starts and after it stops.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	lines      chan string

	authorize Authorizer // nil means open admission
	log       *slog.Logger
}

// NewHub creates a hub. A nil authorize admits every viewer.
func NewHub(logger *slog.Logger, authorize Authorizer) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		lines:      make(chan string, 64),
		authorize:  authorize,
		log:        logger,
	}
}

// Run starts the hub's main loop. Should be run as a goroutine; returns
// when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.log.Info("spectator hub stopping")
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.log.Info("spectator attached", "viewers", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("spectator detached", "viewers", len(h.clients))
			}

		case line := <-h.lines:
			for c := range h.clients {
				select {
				case c.send <- line:
				default:
					// Viewer cannot keep up; the feed is best-effort.
				}
			}
		}
	}
}

// Broadcast queues one state line for every attached viewer. The line is
// dropped if the hub itself is saturated; the match never blocks on its
// audience.
func (h *Hub) Broadcast(line string) {
	select {
	case h.lines <- line:
	default:
	}
}

// ServeWS upgrades one HTTP request into a viewer connection. The bearer
// token comes from the Authorization header or a "token" query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.authorize != nil {
		token := auth.BearerToken(r.Header.Get("Authorization"), r.URL.Query().Get("token"))
		if err := h.authorize(token); err != nil {
			h.log.Warn("spectator rejected", "remote", r.RemoteAddr, "err", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan string, 256),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}
