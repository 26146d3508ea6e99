package game

import (
	"context"
	"sort"
	"sync"
)

// RoomStore persists room aggregates. Get returns a private copy; Save
// succeeds only when the stored version equals room.Version and bumps it.
type RoomStore interface {
	Create(ctx context.Context, room *Room) error
	Get(ctx context.Context, id string) (*Room, error)
	Save(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id string) error
	// List returns one window of matching rooms, newest first, and the
	// number of rooms matching the filter.
	List(ctx context.Context, filter ListFilter) ([]RoomSummary, int64, error)
}

type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*Room)}
}

func (s *MemoryStore) Create(_ context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return Validationf("room %s already exists", room.ID)
	}
	room.Version = 1
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[room.ID]
	if !ok {
		return ErrRoomNotFound
	}
	if current.Version != room.Version {
		return ErrStaleRoom
	}
	room.Version++
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return ErrRoomNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]RoomSummary, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		if !room.matches(filter) {
			continue
		}
		list = append(list, room.Summary())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	total := int64(len(list))
	start, end := window(len(list), filter.Offset, filter.Limit)
	return list[start:end], total, nil
}

// window clamps an offset/limit pair to a slice of length n.
func window(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		return n, n
	}
	if limit <= 0 || limit > n-offset {
		return offset, n
	}
	return offset, offset + limit
}
