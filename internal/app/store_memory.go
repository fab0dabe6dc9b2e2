package app

import (
	"context"
	"sync"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// MemoryStore is the default in-process RoomStore. Mutators run on a
// working copy that is swapped in only on success, so a failed mutation
// never leaves a half-written room behind.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[domain.RoomID]*domain.Room)}
}

func (s *MemoryStore) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return core.ErrRoomExists
	}
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) Exists(_ context.Context, id domain.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *MemoryStore) Update(_ context.Context, id domain.RoomID, mutate func(*domain.Room) error) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	work := room.Clone()
	if err := mutate(work); err != nil {
		return nil, err
	}
	s.rooms[id] = work
	return work.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms), nil
}

func (s *MemoryStore) IDs(_ context.Context) ([]domain.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(s.rooms))
	for id := range s.rooms {
		out = append(out, id)
	}
	return out, nil
}
