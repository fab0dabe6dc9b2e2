// Package store provides RoomStore implementations backed by external
// storage. They keep the same atomic per-room Update contract as the
// in-memory store, so the orchestrator does not care which one it got.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// roomRow stores the whole room as one JSONB document. Rooms are small
// and always read/written wholesale, so per-field columns would buy
// nothing.
type roomRow struct {
	ID        string `gorm:"primaryKey;size:6"`
	Data      string `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (roomRow) TableName() string { return "rooms" }

type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&roomRow{}); err != nil {
		return nil, fmt.Errorf("migrate rooms table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func encodeRoom(room *domain.Room) (string, error) {
	b, err := json.Marshal(room)
	if err != nil {
		return "", fmt.Errorf("encode room: %w", err)
	}
	return string(b), nil
}

func decodeRoom(data string) (*domain.Room, error) {
	var room domain.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &room, nil
}

func (s *PostgresStore) Create(ctx context.Context, room *domain.Room) error {
	data, err := encodeRoom(room)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&roomRow{ID: string(room.ID), Data: data})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrRoomExists
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var row roomRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRoom(row.Data)
}

func (s *PostgresStore) Exists(ctx context.Context, id domain.RoomID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&roomRow{}).Where("id = ?", string(id)).Count(&count).Error
	return count > 0, err
}

// Update locks the row for the duration of the transaction, which is
// what carries the atomic per-room contract here.
func (s *PostgresStore) Update(ctx context.Context, id domain.RoomID, mutate func(*domain.Room) error) (*domain.Room, error) {
	var out *domain.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row roomRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", string(id)).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		room, err := decodeRoom(row.Data)
		if err != nil {
			return err
		}
		if err := mutate(room); err != nil {
			return err
		}
		data, err := encodeRoom(room)
		if err != nil {
			return err
		}
		if err := tx.Model(&roomRow{}).Where("id = ?", string(id)).Update("data", data).Error; err != nil {
			return err
		}
		out = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.RoomID) error {
	return s.db.WithContext(ctx).Delete(&roomRow{}, "id = ?", string(id)).Error
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&roomRow{}).Count(&count).Error
	return int(count), err
}

func (s *PostgresStore) IDs(ctx context.Context) ([]domain.RoomID, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&roomRow{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	out := make([]domain.RoomID, len(ids))
	for i, id := range ids {
		out[i] = domain.RoomID(id)
	}
	return out, nil
}
