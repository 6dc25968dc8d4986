package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"teamtasks/internal/models"
)

// Hub fans notifications out to every open connection of their recipient.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[*Conn]struct{}
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		users: make(map[string]map[*Conn]struct{}),
		log:   log,
	}
}

func (h *Hub) Register(userID string, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*Conn]struct{})
	}
	h.users[userID][conn] = struct{}{}
}

func (h *Hub) Unregister(userID string, conn *Conn) {
	h.mu.Lock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// Connections reports how many sockets the user has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Publish writes n to the recipient's connections. Failed writes are logged
// and the connection is left for its reader to clean up.
func (h *Hub) Publish(n models.Notification) {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.users[n.UserID]))
	for c := range h.users[n.UserID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(n); err != nil {
			h.log.Warn().Err(err).Str("user_id", n.UserID).Msg("[realtime][publish] write failed")
		}
	}
}
