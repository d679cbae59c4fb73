package webhook

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/voxhall/tavus-relay/internal/logging"
)

// observer is one WebSocket subscriber on the event feed.
type observer struct {
	id     string
	socket *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// feedFrame is the wire shape broadcast to observers.
type feedFrame struct {
	Type    string         `json:"type"`
	Seq     int64          `json:"seq"`
	Ts      int64          `json:"ts"`
	Payload map[string]any `json:"payload"`
}

func (o *observer) send(frame feedFrame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return websocket.ErrCloseSent
	}
	return o.socket.WriteJSON(frame)
}

func (o *observer) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.socket.Close()
}

// Feed broadcasts every accepted webhook event to connected observers.
type Feed struct {
	mu        sync.RWMutex
	observers map[string]*observer
	seq       atomic.Int64
	log       *logging.Logger
}

// NewFeed creates an empty event feed.
func NewFeed(log *logging.Logger) *Feed {
	return &Feed{
		observers: make(map[string]*observer),
		log:       log,
	}
}

// Count returns the number of connected observers.
func (f *Feed) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.observers)
}

// Broadcast sends one event payload to every observer. Send failures drop
// the observer.
func (f *Feed) Broadcast(payload map[string]any) {
	f.mu.RLock()
	if len(f.observers) == 0 {
		f.mu.RUnlock()
		return
	}
	frame := feedFrame{
		Type:    "event",
		Seq:     f.seq.Add(1),
		Ts:      time.Now().UnixMilli(),
		Payload: payload,
	}
	var stale []string
	for id, o := range f.observers {
		if err := o.send(frame); err != nil {
			f.log.Warn().Err(err).Str("observer", id).Msg("feed send failed")
			stale = append(stale, id)
		}
	}
	f.mu.RUnlock()

	for _, id := range stale {
		f.remove(id)
	}
}

func (f *Feed) add(o *observer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers[o.id] = o
	f.log.Info().Str("observer", o.id).Msg("feed observer connected")
}

func (f *Feed) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.observers[id]; ok {
		o.close()
		delete(f.observers, id)
		f.log.Info().Str("observer", id).Msg("feed observer disconnected")
	}
}

// CloseAll disconnects every observer.
func (f *Feed) CloseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, o := range f.observers {
		o.close()
		delete(f.observers, id)
	}
}

// handleEventFeed upgrades the connection and streams accepted events until
// the client disconnects.
func (s *Server) handleEventFeed(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(64 * 1024)

	o := &observer{id: uuid.New().String(), socket: conn}
	s.feed.add(o)
	defer s.feed.remove(o.id)

	// Observers are read-only; the loop only notices disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
