package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// requireFacilitator gates an action on the acting user's current
// role. Displaced facilitators have no authority until restored.
func requireFacilitator(r *domain.Room, uid domain.UserID) (*domain.User, error) {
	u := r.FindUser(uid)
	if u == nil {
		return nil, core.ErrUserNotFound
	}
	if !u.Role.CanFacilitate() {
		return nil, core.ErrUnauthorized
	}
	return u, nil
}

// StartVoting replaces any prior story outright; its votes are gone.
func (o *Orchestrator) StartVoting(ctx context.Context, sid core.SessionID, roomID domain.RoomID, title, description string) error {
	uid, err := o.identity(sid, roomID)
	if err != nil {
		return err
	}
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		if _, err := requireFacilitator(r, uid); err != nil {
			return err
		}
		r.VotingCount++
		r.Story = domain.NewStory(title, description, r.VotingCount)
		r.Phase = domain.PhaseOpen
		touch(r)
		return nil
	})
	if err != nil {
		return err
	}
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("story", room.Story.Title).Msg("voting started")
	return nil
}

// SubmitVote is open to every member while the phase is Open. Reveal
// closes voting, whatever the legacy booleans used to say.
func (o *Orchestrator) SubmitVote(ctx context.Context, sid core.SessionID, roomID domain.RoomID, value string) error {
	uid, err := o.identity(sid, roomID)
	if err != nil {
		return err
	}
	if !domain.ValidCard(value) {
		return core.ErrInvalidVote
	}
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		if r.FindUser(uid) == nil {
			return core.ErrUserNotFound
		}
		if r.Phase != domain.PhaseOpen {
			return core.ErrVotingClosed
		}
		if r.Story == nil {
			return core.ErrNoStory
		}
		r.Story.SetVote(uid, value)
		touch(r)
		return nil
	})
	if err != nil {
		return err
	}
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Str("user", string(uid)).Str("value", value).Msg("vote submitted")
	return nil
}

func (o *Orchestrator) RevealResults(ctx context.Context, sid core.SessionID, roomID domain.RoomID) error {
	uid, err := o.identity(sid, roomID)
	if err != nil {
		return err
	}
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		if _, err := requireFacilitator(r, uid); err != nil {
			return err
		}
		if r.Story == nil {
			return core.ErrNoStory
		}
		r.Phase = domain.PhaseRevealed
		touch(r)
		return nil
	})
	if err != nil {
		return err
	}
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Msg("results revealed")
	return nil
}

// ResetVoting keeps the story identity but wipes its votes and reopens.
func (o *Orchestrator) ResetVoting(ctx context.Context, sid core.SessionID, roomID domain.RoomID) error {
	uid, err := o.identity(sid, roomID)
	if err != nil {
		return err
	}
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		if _, err := requireFacilitator(r, uid); err != nil {
			return err
		}
		if r.Story == nil {
			return core.ErrNoStory
		}
		r.Story.Votes = []domain.Vote{}
		r.Phase = domain.PhaseOpen
		touch(r)
		return nil
	})
	if err != nil {
		return err
	}
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Msg("voting reset")
	return nil
}

// ClearVoting discards the story entirely.
func (o *Orchestrator) ClearVoting(ctx context.Context, sid core.SessionID, roomID domain.RoomID) error {
	uid, err := o.identity(sid, roomID)
	if err != nil {
		return err
	}
	room, err := o.Store.Update(ctx, roomID, func(r *domain.Room) error {
		if _, err := requireFacilitator(r, uid); err != nil {
			return err
		}
		r.Story = nil
		r.Phase = domain.PhaseNoStory
		touch(r)
		return nil
	})
	if err != nil {
		return err
	}
	o.Gateway.RoomUpdated(room)
	log.Info().Str("module", "app").Str("room", string(roomID)).Msg("voting cleared")
	return nil
}
