package core

import (
	"context"

	"github.com/dkeye/Poker/internal/domain"
)

// RoomStore owns the mapping from room id to room state.
//
// Update must apply the mutator atomically with respect to other
// mutations on the same room; a mutator error leaves the room
// unchanged. Implementations return defensive copies so callers can
// marshal snapshots outside any critical section.
type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	Exists(ctx context.Context, id domain.RoomID) (bool, error)
	Update(ctx context.Context, id domain.RoomID, mutate func(*domain.Room) error) (*domain.Room, error)
	Delete(ctx context.Context, id domain.RoomID) error
	Count(ctx context.Context) (int, error)
	IDs(ctx context.Context) ([]domain.RoomID, error)
}
