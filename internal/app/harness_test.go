package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// fakeConn records every frame sent to it.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// events decodes all received frames into generic maps.
func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("bad frame %s: %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) lastEventOfType(t *testing.T, typ string) map[string]any {
	t.Helper()
	var found map[string]any
	for _, ev := range c.events(t) {
		if ev["type"] == typ {
			found = ev
		}
	}
	return found
}

func newTestOrch(settings Settings) *Orchestrator {
	if settings.MaxRooms == 0 {
		settings.MaxRooms = 50
	}
	if settings.MaxUsersPerRoom == 0 {
		settings.MaxUsersPerRoom = 20
	}
	if settings.PromotionDelay == 0 {
		settings.PromotionDelay = time.Hour
	}
	if settings.GracePeriod == 0 {
		settings.GracePeriod = time.Hour
	}
	if settings.CleanupInterval == 0 {
		settings.CleanupInterval = time.Hour
	}
	if settings.RoomTTL == 0 {
		settings.RoomTTL = time.Hour
	}
	reg := NewRegistry()
	return &Orchestrator{
		Store:    NewMemoryStore(),
		Registry: reg,
		Gateway:  NewGateway(reg, nil),
		Settings: settings,
	}
}

// connect binds a fake transport session.
func connect(o *Orchestrator, sid core.SessionID) *fakeConn {
	conn := &fakeConn{}
	o.Registry.Bind(sid, conn, func() {})
	return conn
}

func mustCreateRoom(t *testing.T, o *Orchestrator, sid core.SessionID, name string) (*domain.Room, *domain.User) {
	t.Helper()
	room, user, err := o.CreateRoom(context.Background(), sid, name, nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room, user
}

func mustJoinRoom(t *testing.T, o *Orchestrator, sid core.SessionID, roomID domain.RoomID, name string) *domain.User {
	t.Helper()
	_, user, err := o.JoinRoom(context.Background(), sid, roomID, name)
	if err != nil {
		t.Fatalf("join room: %v", err)
	}
	return user
}

func getRoom(t *testing.T, o *Orchestrator, id domain.RoomID) *domain.Room {
	t.Helper()
	room, err := o.Store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get room %s: %v", id, err)
	}
	return room
}
