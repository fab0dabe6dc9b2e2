package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// errStaleTimer marks a scheduled check whose precondition no longer
// holds; the timer must be a no-op, not a forced mutation.
var errStaleTimer = errors.New("stale timer")

// OnDisconnect handles a transport-level drop. The user keeps their
// seat for the grace period; a facilitator's role is reserved, not
// removed. The conn identifies which transport dropped: if the sid has
// already rebound to a newer connection, this event is stale and must
// leave both the registry and the room untouched.
func (o *Orchestrator) OnDisconnect(sid core.SessionID, conn core.SignalConnection) {
	uid, roomID, ok := o.Registry.UnbindIfConn(sid, conn)
	if !ok {
		return
	}

	ctx := context.Background()
	var roleHolder bool
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		u := r.FindUser(uid)
		if u == nil {
			return core.ErrUserNotFound
		}
		now := time.Now()
		u.Connected = false
		u.DisconnectedAt = &now
		if u.Role.Kind == domain.RoleFacilitator {
			u.Role.Kind = domain.RoleDisplaced
		}
		roleHolder = u.Role.Kind == domain.RoleDisplaced || u.Role.Kind == domain.RoleTemporary
		touch(r)
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("module", "app").Str("sid", string(sid)).Msg("disconnect for unknown room/user")
		return
	}

	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("user", string(uid)).Msg("user disconnected")

	// Timers re-validate at fire time instead of being cancelable.
	if roleHolder {
		time.AfterFunc(o.Settings.PromotionDelay, func() { o.runPromotionCheck(roomID, uid) })
	}
	time.AfterFunc(o.Settings.GracePeriod, func() { o.runRemovalCheck(roomID, uid) })
}

// runPromotionCheck promotes the longest-connected participant to
// temporary facilitator, unless the picture changed since the timer
// was scheduled.
func (o *Orchestrator) runPromotionCheck(roomID domain.RoomID, departedID domain.UserID) {
	ctx := context.Background()
	var ev *scrumMasterChangedEvent
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		departed := r.FindUser(departedID)
		if departed == nil || departed.Connected {
			return errStaleTimer
		}
		if departed.Role.Kind != domain.RoleDisplaced && departed.Role.Kind != domain.RoleTemporary {
			return errStaleTimer
		}
		if r.FirstConnected(func(u *domain.User) bool { return u.Role.CanFacilitate() }) != nil {
			return errStaleTimer
		}
		next := r.FirstConnected(func(u *domain.User) bool { return u.Role.Kind == domain.RoleParticipant })
		if next == nil {
			// No promotion; the room has no active facilitator until
			// someone reconnects or joins.
			return errStaleTimer
		}

		seat := departed.ID
		if departed.Role.Kind == domain.RoleTemporary {
			seat = departed.Role.CoveringFor
			departed.Role = domain.Role{Kind: domain.RoleParticipant}
		}
		next.Role = domain.Role{Kind: domain.RoleTemporary, CoveringFor: seat}

		orig := core.SnapshotUser(departed)
		ev = &scrumMasterChangedEvent{
			Type:                "scrum_master_changed",
			NewFacilitator:      core.SnapshotUser(next),
			Reason:              ReasonOriginalDisconnected,
			OriginalFacilitator: &orig,
		}
		return nil
	})
	if err != nil {
		return
	}
	o.Gateway.RoomUpdated(room)
	o.Gateway.BroadcastRoom(roomID, *ev)
	log.Info().Str("module", "app").Str("room", string(roomID)).
		Str("new", string(ev.NewFacilitator.ID)).Msg("temporary facilitator promoted")
}

// runRemovalCheck performs the permanent departure once the grace
// period has elapsed without a reconnect.
func (o *Orchestrator) runRemovalCheck(roomID domain.RoomID, userID domain.UserID) {
	ctx := context.Background()
	var (
		ev    *scrumMasterChangedEvent
		empty bool
	)
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		u := r.FindUser(userID)
		if u == nil || u.Connected || u.DisconnectedAt == nil {
			return errStaleTimer
		}
		if time.Since(*u.DisconnectedAt) < o.Settings.GracePeriod {
			return errStaleTimer
		}
		wasHolder := u.Role.Kind != domain.RoleParticipant
		r.RemoveUser(userID)
		if len(r.Users) == 0 {
			empty = true
			return nil
		}
		if wasHolder {
			// Prefer an already-promoted stand-in, else the first
			// connected user; either becomes the permanent facilitator.
			next := r.FirstConnected(func(u *domain.User) bool { return u.Role.CanFacilitate() })
			if next == nil {
				next = r.FirstConnected(nil)
			}
			if next != nil {
				next.Role = domain.Role{Kind: domain.RoleFacilitator}
				for _, other := range r.Users {
					if other != next && other.Role.Kind == domain.RoleTemporary {
						other.Role = domain.Role{Kind: domain.RoleParticipant}
					}
				}
				ev = &scrumMasterChangedEvent{
					Type:           "scrum_master_changed",
					NewFacilitator: core.SnapshotUser(next),
					Reason:         ReasonPermanentPromotion,
				}
			}
		}
		touch(r)
		return nil
	})
	if err != nil {
		return
	}
	if empty {
		if err := o.Store.Delete(ctx, roomID); err != nil {
			log.Error().Err(err).Str("module", "app").Str("room", string(roomID)).Msg("delete empty room")
		}
		log.Info().Str("module", "app").Str("room", string(roomID)).Msg("room removed (empty)")
		return
	}
	o.Gateway.RoomUpdated(room)
	if ev != nil {
		o.Gateway.BroadcastRoom(roomID, *ev)
	}
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("user", string(userID)).Msg("user removed after grace period")
}

// EndSession deletes the room immediately; every member is told first.
func (o *Orchestrator) EndSession(ctx context.Context, sid core.SessionID, roomID domain.RoomID) error {
	uid, err := o.identity(sid, roomID)
	if err != nil {
		return err
	}
	room, err := o.Store.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := requireFacilitator(room, uid); err != nil {
		return err
	}

	o.Gateway.BroadcastRoom(roomID, sessionEndedEvent{Type: "session_ended"})
	for _, m := range o.Registry.MembersOfRoom(roomID) {
		o.Registry.ClearIdentity(m.SID)
	}
	if err := o.Store.Delete(ctx, roomID); err != nil {
		return err
	}
	log.Info().Str("module", "app").Str("room", string(roomID)).Msg("session ended")
	return nil
}

// RemoveUser lets a facilitator remove a participant. Facilitator-role
// holders and the actor themselves are off limits.
func (o *Orchestrator) RemoveUser(ctx context.Context, sid core.SessionID, roomID domain.RoomID, targetID domain.UserID) error {
	uid, err := o.identity(sid, roomID)
	if err != nil {
		return err
	}
	if targetID == uid {
		return core.ErrUnauthorized
	}
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		if _, err := requireFacilitator(r, uid); err != nil {
			return err
		}
		target := r.FindUser(targetID)
		if target == nil {
			return core.ErrUserNotFound
		}
		if target.Role.Kind != domain.RoleParticipant {
			return core.ErrUnauthorized
		}
		r.RemoveUser(targetID)
		touch(r)
		return nil
	})
	if err != nil {
		return err
	}

	if targetSID, ok := o.Registry.SessionOfUser(roomID, targetID); ok {
		o.Gateway.SendTo(targetSID, removedEvent{Type: "removed", Reason: "removed_by_facilitator"})
		o.Registry.ClearIdentity(targetSID)
	}
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("user", string(targetID)).Msg("user removed by facilitator")
	return nil
}

// StartJanitor sweeps idle and empty rooms in the background, the way
// long-forgotten tabs keep rooms alive otherwise.
func (o *Orchestrator) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(o.Settings.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.sweepIdleRooms(ctx)
			}
		}
	}()
}

func (o *Orchestrator) sweepIdleRooms(ctx context.Context) {
	ids, err := o.Store.IDs(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("janitor list rooms")
		return
	}
	for _, id := range ids {
		room, err := o.Store.Get(ctx, id)
		if err != nil {
			continue
		}
		if len(room.Users) > 0 && time.Since(room.LastActivity) <= o.Settings.RoomTTL {
			continue
		}
		o.Gateway.BroadcastRoom(id, sessionEndedEvent{Type: "session_ended"})
		for _, m := range o.Registry.MembersOfRoom(id) {
			o.Registry.ClearIdentity(m.SID)
		}
		if err := o.Store.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("module", "app").Str("room", string(id)).Msg("janitor delete")
			continue
		}
		log.Info().Str("module", "app").Str("room", string(id)).Msg("cleaned up inactive room")
	}
}
