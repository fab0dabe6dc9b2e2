package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

const roomKeyPrefix = "room:"

// RedisStore keeps each room as one JSON value. Atomicity of Update is
// carried by an in-process per-key lock; the deployment model is a
// single process, there is no cross-process coordination to do.
type RedisStore struct {
	client *redis.Client

	mu    sync.Mutex
	locks map[domain.RoomID]*sync.Mutex
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{
		client: client,
		locks:  make(map[domain.RoomID]*sync.Mutex),
	}, nil
}

func roomKey(id domain.RoomID) string { return roomKeyPrefix + string(id) }

func (s *RedisStore) lock(id domain.RoomID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *RedisStore) forgetLock(id domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

func (s *RedisStore) Create(ctx context.Context, room *domain.Room) error {
	data, err := encodeRoom(room)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, roomKey(room.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrRoomExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRoom(data)
}

func (s *RedisStore) Exists(ctx context.Context, id domain.RoomID) (bool, error) {
	n, err := s.client.Exists(ctx, roomKey(id)).Result()
	return n > 0, err
}

func (s *RedisStore) Update(ctx context.Context, id domain.RoomID, mutate func(*domain.Room) error) (*domain.Room, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(room); err != nil {
		return nil, err
	}
	data, err := encodeRoom(room)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, roomKey(id), data, 0).Err(); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RedisStore) Delete(ctx context.Context, id domain.RoomID) error {
	if err := s.client.Del(ctx, roomKey(id)).Err(); err != nil {
		return err
	}
	s.forgetLock(id)
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	ids, err := s.IDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *RedisStore) IDs(ctx context.Context) ([]domain.RoomID, error) {
	var (
		out    []domain.RoomID
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, roomKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			out = append(out, domain.RoomID(k[len(roomKeyPrefix):]))
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}
