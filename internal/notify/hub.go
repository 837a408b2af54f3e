package notify

import (
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Toasts queued per client before it is considered stalled.
	sendBuffer = 16
)

// client is one websocket plus the queue drained by its writer.
type client struct {
	conn *websocket.Conn
	send chan Toast
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub holds one live websocket per session and pushes toasts to it.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*client
	upgrader websocket.Upgrader
}

// NewHub builds a hub accepting browser connections whose Origin matches one
// of allowOrigins ("*" wildcards allowed). With no patterns only same-origin
// requests are upgraded.
func NewHub(allowOrigins ...string) *Hub {
	h := &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowOrigins) > 0 {
		h.upgrader.CheckOrigin = originChecker(allowOrigins)
	}
	return h
}

func originChecker(patterns []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Not a browser.
			return true
		}
		for _, p := range patterns {
			if p == "*" || strings.EqualFold(p, origin) {
				return true
			}
			if ok, err := path.Match(p, origin); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// register attaches c to the session, closing any previous connection.
func (h *Hub) register(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[sessionID]; ok && old != c {
		old.close()
	}
	h.clients[sessionID] = c
	log.Info().Str("session_id", sessionID).Msg("Notification client connected")
}

// unregister drops c if it is still the session's active connection.
func (h *Hub) unregister(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[sessionID]; ok && cur == c {
		delete(h.clients, sessionID)
		log.Info().Str("session_id", sessionID).Msg("Notification client disconnected")
	}
	c.close()
}

// Connected reports whether the session has a live connection.
func (h *Hub) Connected(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[sessionID]
	return ok
}

// Notify queues t for the session's connection, if any. It never blocks:
// a client whose queue is full is dropped.
func (h *Hub) Notify(sessionID string, t Toast) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[sessionID]
	if !ok {
		return
	}
	select {
	case c.send <- t:
	default:
		log.Warn().Str("session_id", sessionID).Msg("Notification client is not reading, removing client")
		delete(h.clients, sessionID)
		c.close()
	}
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: ws, send: make(chan Toast, sendBuffer)}
	h.register(sessionID, c)
	go c.writePump()

	defer h.unregister(sessionID, c)

	// Clients never send anything; reading handles pongs and notices disconnects.
	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return nil
		}
	}
}

// writePump owns every write on the connection. It exits, closing the
// socket, when the send queue is closed or a write fails or times out.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case t, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(t); err != nil {
				log.Error().Err(err).Msg("Failed to send toast")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
