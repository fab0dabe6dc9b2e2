package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

func (ctl *WSController) handleStartVoting(ctx context.Context, sid core.SessionID, conn *wsConn, data []byte) {
	var p struct {
		envelope
		RoomID string       `json:"roomId"`
		Story  storyPayload `json:"story"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad start_voting payload")
		return
	}
	if err := ctl.Orch.StartVoting(ctx, sid, domain.RoomID(p.RoomID), p.Story.Title, p.Story.Description); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("start voting")
		if p.Rid != "" {
			ctl.sendError(conn, p.Rid, err.Error())
		}
	}
}

// handleSubmitVote is fire-and-forget: invalid values are dropped and
// logged, no error frame goes back.
func (ctl *WSController) handleSubmitVote(ctx context.Context, sid core.SessionID, data []byte) {
	var p struct {
		envelope
		RoomID string `json:"roomId"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad submit_vote payload")
		return
	}
	if err := ctl.Orch.SubmitVote(ctx, sid, domain.RoomID(p.RoomID), p.Value); err != nil {
		if errors.Is(err, core.ErrInvalidVote) {
			log.Warn().Str("module", "signal").Str("room", p.RoomID).Str("value", p.Value).Msg("invalid vote dropped")
			return
		}
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("submit vote")
	}
}

func (ctl *WSController) handleRevealResults(ctx context.Context, sid core.SessionID, data []byte) {
	var p struct {
		envelope
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad reveal_results payload")
		return
	}
	if err := ctl.Orch.RevealResults(ctx, sid, domain.RoomID(p.RoomID)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("reveal results")
	}
}

func (ctl *WSController) handleResetVoting(ctx context.Context, sid core.SessionID, data []byte) {
	var p struct {
		envelope
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad reset_voting payload")
		return
	}
	if err := ctl.Orch.ResetVoting(ctx, sid, domain.RoomID(p.RoomID)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("reset voting")
	}
}

func (ctl *WSController) handleClearVoting(ctx context.Context, sid core.SessionID, data []byte) {
	var p struct {
		envelope
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad clear_voting payload")
		return
	}
	if err := ctl.Orch.ClearVoting(ctx, sid, domain.RoomID(p.RoomID)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("clear voting")
	}
}
