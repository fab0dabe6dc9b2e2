package app

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

func TestCreateRoom(t *testing.T) {
	o := newTestOrch(Settings{})
	conn := connect(o, "s1")

	room, user := mustCreateRoom(t, o, "s1", "Alice")

	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(string(room.ID)) {
		t.Errorf("room id %q does not match [A-Z0-9]{6}", room.ID)
	}
	if user.Role.Kind != domain.RoleFacilitator {
		t.Errorf("creator role = %q, want facilitator", user.Role.Kind)
	}
	if room.Phase != domain.PhaseNoStory {
		t.Errorf("phase = %q, want no_story", room.Phase)
	}

	stored := getRoom(t, o, room.ID)
	if len(stored.Users) != 1 || stored.Users[0].ID != user.ID {
		t.Errorf("stored users = %v", stored.Users)
	}

	if ev := conn.lastEventOfType(t, "room_updated"); ev == nil {
		t.Error("expected a room_updated broadcast to the creator")
	}
}

func TestCreateRoomWithInitialStory(t *testing.T) {
	o := newTestOrch(Settings{})
	connect(o, "s1")

	room, _, err := o.CreateRoom(context.Background(), "s1", "Alice", &StoryInput{Title: "", Description: "first"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Story == nil {
		t.Fatal("expected voting to start immediately")
	}
	if room.Story.Title != "Voting #1" {
		t.Errorf("title = %q, want %q", room.Story.Title, "Voting #1")
	}
	if room.Phase != domain.PhaseOpen {
		t.Errorf("phase = %q, want open", room.Phase)
	}
}

func TestCreateRoomServerCapacity(t *testing.T) {
	o := newTestOrch(Settings{MaxRooms: 1})
	connect(o, "s1")
	connect(o, "s2")

	mustCreateRoom(t, o, "s1", "Alice")
	_, _, err := o.CreateRoom(context.Background(), "s2", "Bob", nil)
	if !errors.Is(err, core.ErrServerFull) {
		t.Errorf("expected ErrServerFull, got %v", err)
	}
}

func TestJoinRoom(t *testing.T) {
	o := newTestOrch(Settings{})
	aliceConn := connect(o, "s1")
	connect(o, "s2")

	room, _ := mustCreateRoom(t, o, "s1", "Alice")
	bob := mustJoinRoom(t, o, "s2", room.ID, "Bob")

	if bob.Role.Kind != domain.RoleParticipant {
		t.Errorf("joiner role = %q, want participant", bob.Role.Kind)
	}
	stored := getRoom(t, o, room.ID)
	if len(stored.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(stored.Users))
	}
	// Join order is preserved for deterministic promotion later.
	if stored.Users[0].Name != "Alice" || stored.Users[1].Name != "Bob" {
		t.Errorf("join order broken: %v, %v", stored.Users[0].Name, stored.Users[1].Name)
	}

	ev := aliceConn.lastEventOfType(t, "room_updated")
	if ev == nil {
		t.Fatal("expected room_updated after join")
	}
	roomDTO := ev["room"].(map[string]any)
	if users := roomDTO["users"].([]any); len(users) != 2 {
		t.Errorf("snapshot users = %d, want 2", len(users))
	}
}

func TestJoinRoomErrors(t *testing.T) {
	o := newTestOrch(Settings{MaxUsersPerRoom: 2})
	connect(o, "s1")
	connect(o, "s2")
	connect(o, "s3")

	room, _ := mustCreateRoom(t, o, "s1", "Alice")
	mustJoinRoom(t, o, "s2", room.ID, "Bob")

	if _, _, err := o.JoinRoom(context.Background(), "s3", room.ID, "Carol"); !errors.Is(err, core.ErrRoomFull) {
		t.Errorf("expected ErrRoomFull, got %v", err)
	}
	if _, _, err := o.JoinRoom(context.Background(), "s3", "ZZZZZZ", "Carol"); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRejoinRoomErrors(t *testing.T) {
	o := newTestOrch(Settings{})
	connect(o, "s1")
	connect(o, "s2")

	room, _ := mustCreateRoom(t, o, "s1", "Alice")

	if _, _, err := o.RejoinRoom(context.Background(), "s2", "ZZZZZZ", "nobody"); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if _, _, err := o.RejoinRoom(context.Background(), "s2", room.ID, "nobody"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
