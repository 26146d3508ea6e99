package fanout

import (
	"encoding/json"
	"log/slog"
	"sync"

	"never-have-i-ever/internal/game"
)

const DefaultQueueSize = 256

type Envelope struct {
	Event string            `json:"event"`
	Data  game.Notification `json:"data"`
}

func Encode(n game.Notification) ([]byte, error) {
	return json.Marshal(Envelope{Event: n.Event(), Data: n})
}

// Session is one subscriber of a room. Messages are queued and drained by
// the transport; a session whose queue fills up is dropped.
type Session struct {
	RoomID string
	UserID string

	mu     sync.Mutex
	queue  chan []byte
	closed bool
}

func NewSession(roomID, userID string, size int) *Session {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Session{RoomID: roomID, UserID: userID, queue: make(chan []byte, size)}
}

// Queue is closed once the session is dropped or closed.
func (s *Session) Queue() <-chan []byte {
	return s.queue
}

type enqueueResult int

const (
	enqueued enqueueResult = iota
	sessionClosed
	queueFull
)

func (s *Session) enqueue(data []byte) enqueueResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sessionClosed
	}
	select {
	case s.queue <- data:
		return enqueued
	default:
		return queueFull
	}
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.queue)
}

type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*Session]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[string]map[*Session]struct{}),
		logger: logger,
	}
}

func (h *Hub) Subscribe(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[session.RoomID]
	if group == nil {
		group = make(map[*Session]struct{})
		h.rooms[session.RoomID] = group
	}
	group[session] = struct{}{}
}

func (h *Hub) Unsubscribe(session *Session) {
	h.mu.Lock()
	h.removeLocked(session)
	h.mu.Unlock()
	session.Close()
}

func (h *Hub) removeLocked(session *Session) {
	group := h.rooms[session.RoomID]
	if group == nil {
		return
	}
	delete(group, session)
	if len(group) == 0 {
		delete(h.rooms, session.RoomID)
	}
}

func (h *Hub) Publish(roomID string, n game.Notification) {
	data, err := Encode(n)
	if err != nil {
		h.logger.Error("encode notification", "event", n.Event(), "error", err)
		return
	}
	h.mu.Lock()
	group := h.rooms[roomID]
	sessions := make([]*Session, 0, len(group))
	for session := range group {
		sessions = append(sessions, session)
	}
	h.mu.Unlock()
	h.deliver(sessions, data)
}

func (h *Hub) PublishAll(n game.Notification) {
	data, err := Encode(n)
	if err != nil {
		h.logger.Error("encode notification", "event", n.Event(), "error", err)
		return
	}
	h.mu.Lock()
	sessions := make([]*Session, 0)
	for _, group := range h.rooms {
		for session := range group {
			sessions = append(sessions, session)
		}
	}
	h.mu.Unlock()
	h.deliver(sessions, data)
}

// Send delivers to a single session, used for snapshots and errors that
// only concern the originating client.
func (h *Hub) Send(session *Session, n game.Notification) bool {
	data, err := Encode(n)
	if err != nil {
		h.logger.Error("encode notification", "event", n.Event(), "error", err)
		return false
	}
	return session.enqueue(data) == enqueued
}

func (h *Hub) deliver(sessions []*Session, data []byte) {
	for _, session := range sessions {
		switch session.enqueue(data) {
		case enqueued:
		case queueFull:
			h.logger.Warn("dropping slow session", "room_id", session.RoomID, "user_id", session.UserID)
			h.Unsubscribe(session)
		case sessionClosed:
			// Disconnected between the snapshot and delivery.
			h.Unsubscribe(session)
		}
	}
}

// Prune forgets a finished room. Sessions stay open until their clients
// disconnect but receive nothing further.
func (h *Hub) Prune(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomID)
}

func (h *Hub) RoomSize(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
