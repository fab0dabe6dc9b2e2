package app

import (
	"errors"
	"math/rand"

	"github.com/dkeye/Poker/internal/domain"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLen      = 6
	maxCodeAttempts  = 10
)

var ErrCodeGeneration = errors.New("failed to generate unique room code")

// NewRoomCode draws 6-char codes until one is not taken. The retry
// bound turns a pathologically full code space into an error instead
// of a spin.
func NewRoomCode(taken func(domain.RoomID) bool) (domain.RoomID, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		buf := make([]byte, roomCodeLen)
		for i := range buf {
			buf[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		code := domain.RoomID(buf)
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrCodeGeneration
}
