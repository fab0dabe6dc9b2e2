package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

type Settings struct {
	MaxRooms        int
	MaxUsersPerRoom int
	PromotionDelay  time.Duration
	GracePeriod     time.Duration
	CleanupInterval time.Duration
	RoomTTL         time.Duration
}

// Orchestrator is the server-side authority over rooms, roles, votes
// and connection lifecycles. Every mutation goes through a single
// atomic store update and is followed by a full-snapshot broadcast.
type Orchestrator struct {
	Store    core.RoomStore
	Registry *Registry
	Gateway  *Gateway
	Settings Settings
}

type StoryInput struct {
	Title       string
	Description string
}

func touch(r *domain.Room) { r.LastActivity = time.Now() }

// identity resolves the acting user from the session binding. The
// room id supplied by the client must match the bound one; client
// payloads never override server-side identity.
func (o *Orchestrator) identity(sid core.SessionID, roomID domain.RoomID) (domain.UserID, error) {
	uid, rid, ok := o.Registry.Identity(sid)
	if !ok || rid != roomID {
		return "", core.ErrNotBound
	}
	return uid, nil
}

// CreateRoom creates a room with the caller as facilitator and, when
// an initial story is supplied, opens voting on it right away.
func (o *Orchestrator) CreateRoom(ctx context.Context, sid core.SessionID, userName string, initial *StoryInput) (*domain.Room, *domain.User, error) {
	// The cap is advisory: Count and Create are separate store calls,
	// so concurrent creates can overshoot MaxRooms by the number of
	// in-flight requests. The janitor drains any excess.
	count, err := o.Store.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	if o.Settings.MaxRooms > 0 && count >= o.Settings.MaxRooms {
		return nil, nil, core.ErrServerFull
	}

	code, err := NewRoomCode(func(id domain.RoomID) bool {
		ok, err := o.Store.Exists(ctx, id)
		return ok || err != nil
	})
	if err != nil {
		return nil, nil, err
	}

	user, err := domain.NewUser(userName, domain.RoleFacilitator, code)
	if err != nil {
		return nil, nil, err
	}

	room := domain.NewRoom(code)
	room.Users = append(room.Users, user)
	if err := o.Store.Create(ctx, room); err != nil {
		return nil, nil, err
	}

	o.Registry.SetIdentity(sid, user.ID, code)
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(code)).Str("user", user.Name).Msg("room created")

	if initial != nil {
		room, err = o.Store.Update(ctx, code, func(r *domain.Room) error {
			r.VotingCount++
			r.Story = domain.NewStory(initial.Title, initial.Description, r.VotingCount)
			r.Phase = domain.PhaseOpen
			touch(r)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		o.Gateway.RoomUpdated(room)
		log.Info().Str("module", "app").Str("room", string(code)).Str("story", room.Story.Title).Msg("voting started")
	}
	return room, user, nil
}

func (o *Orchestrator) JoinRoom(ctx context.Context, sid core.SessionID, roomID domain.RoomID, userName string) (*domain.Room, *domain.User, error) {
	var user *domain.User
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		if o.Settings.MaxUsersPerRoom > 0 && len(r.Users) >= o.Settings.MaxUsersPerRoom {
			return core.ErrRoomFull
		}
		u, err := domain.NewUser(userName, domain.RoleParticipant, roomID)
		if err != nil {
			return err
		}
		r.Users = append(r.Users, u)
		user = u
		touch(r)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	o.Registry.SetIdentity(sid, user.ID, roomID)
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("user", user.Name).Msg("user joined")
	return room, user, nil
}

// RejoinRoom restores a previously issued identity after a transport
// drop. A displaced facilitator gets the seat back; any stand-in is
// demoted.
func (o *Orchestrator) RejoinRoom(ctx context.Context, sid core.SessionID, roomID domain.RoomID, userID domain.UserID) (*domain.Room, *domain.User, error) {
	var (
		user     *domain.User
		restored bool
		demoted  *domain.User
	)
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		u := r.FindUser(userID)
		if u == nil {
			return core.ErrUserNotFound
		}
		u.Connected = true
		u.DisconnectedAt = nil
		if u.Role.Kind == domain.RoleDisplaced {
			u.Role = domain.Role{Kind: domain.RoleFacilitator}
			restored = true
			for _, other := range r.Users {
				if other.Role.Kind == domain.RoleTemporary {
					other.Role = domain.Role{Kind: domain.RoleParticipant}
					demoted = other
				}
			}
		}
		user = u
		touch(r)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// A ghost session may still hold this seat; drop it before rebinding.
	if old, ok := o.Registry.SessionOfUser(roomID, userID); ok && old != sid {
		o.Registry.ClearIdentity(old)
		o.Registry.Cancel(old)
	}
	if !o.Registry.SetIdentity(sid, userID, roomID) {
		// The session dropped while the update ran; the disconnect path
		// for the new binding never fires, so fail the rejoin outright.
		return nil, nil, core.ErrNotBound
	}

	o.Gateway.RoomUpdated(room)
	if restored {
		ev := scrumMasterChangedEvent{
			Type:           "scrum_master_changed",
			NewFacilitator: core.SnapshotUser(user),
			Reason:         ReasonOriginalReconnected,
		}
		if demoted != nil {
			d := core.SnapshotUser(demoted)
			ev.PreviousTempFacilitator = &d
		}
		o.Gateway.BroadcastRoom(roomID, ev)
	}
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("user", string(userID)).
		Bool("restored", restored).Msg("user rejoined")
	return room, user, nil
}
