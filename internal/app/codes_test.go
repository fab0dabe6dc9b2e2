package app

import (
	"regexp"
	"testing"

	"github.com/dkeye/Poker/internal/domain"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestNewRoomCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewRoomCode(func(domain.RoomID) bool { return false })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !codePattern.MatchString(string(code)) {
			t.Fatalf("code %q does not match [A-Z0-9]{6}", code)
		}
	}
}

func TestNewRoomCodeRetriesOnCollision(t *testing.T) {
	collisions := 0
	code, err := NewRoomCode(func(domain.RoomID) bool {
		collisions++
		return collisions <= 3
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code == "" {
		t.Fatal("expected a code after retries")
	}
	if collisions != 4 {
		t.Errorf("expected 4 attempts, got %d", collisions)
	}
}

func TestNewRoomCodeExhaustion(t *testing.T) {
	_, err := NewRoomCode(func(domain.RoomID) bool { return true })
	if err != ErrCodeGeneration {
		t.Errorf("expected ErrCodeGeneration, got %v", err)
	}
}
