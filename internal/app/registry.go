package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

type sessionEntry struct {
	UserID domain.UserID
	RoomID domain.RoomID
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry tracks live transport sessions and which (user, room) pair
// each one is bound to. It is the only bridge between room state and
// connections; the store never sees transports.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*sessionEntry)}
}

func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// SetIdentity records the (user, room) pair issued on create/join/rejoin.
func (r *Registry) SetIdentity(sid core.SessionID, userID domain.UserID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.UserID = userID
	e.RoomID = roomID
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).
		Str("user", string(userID)).Str("room", string(roomID)).Msg("bound identity")
	return true
}

func (r *Registry) Identity(sid core.SessionID) (domain.UserID, domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", "", false
	}
	return e.UserID, e.RoomID, true
}

func (r *Registry) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// ClearIdentity detaches the session from its room but keeps the
// transport alive, e.g. after the user was removed from the room.
func (r *Registry) ClearIdentity(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.UserID = ""
		e.RoomID = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("cleared identity")
}

// UnbindIfConn removes the session only while it still carries conn.
// A read pump outlives its connection, so by the time its teardown runs
// the sid may already be bound to a newer transport; that newer binding
// must not be touched. Returns the identity that was bound, with ok set
// only when the unbind happened and the session had joined a room.
func (r *Registry) UnbindIfConn(sid core.SessionID, conn core.SignalConnection) (domain.UserID, domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.Conn != conn {
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("skipped unbind for superseded connection")
		return "", "", false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return e.UserID, e.RoomID, e.RoomID != ""
}

type RoomMember struct {
	SID    core.SessionID
	UserID domain.UserID
	Conn   core.SignalConnection
}

func (r *Registry) MembersOfRoom(roomID domain.RoomID) []RoomMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomMember, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.RoomID == roomID {
			out = append(out, RoomMember{SID: sid, UserID: e.UserID, Conn: e.Conn})
		}
	}
	return out
}

func (r *Registry) SessionOfUser(roomID domain.RoomID, userID domain.UserID) (core.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sid, e := range r.sessions {
		if e.RoomID == roomID && e.UserID == userID {
			return sid, true
		}
	}
	return "", false
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
