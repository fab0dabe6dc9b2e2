package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
)

func (ctl *WSController) writePump(ctx context.Context, c *wsConn) {
	period := ctl.Cfg.PingPeriod
	if period <= 0 {
		period = 54 * time.Second
	}
	pings := time.NewTicker(period)
	defer pings.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-pings.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *WSController) readPump(ctx context.Context, sid core.SessionID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(sid, c)
		ctl.limiter.Forget(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(ctx, sid, c, data)
		}
	}
}

type envelope struct {
	Type string `json:"type"`
	Rid  string `json:"rid,omitempty"`
}

func (ctl *WSController) handleFrame(ctx context.Context, sid core.SessionID, c *wsConn, data []byte) {
	// A broken handler must drop the frame, never take the process down.
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("module", "signal").Str("sid", string(sid)).Any("panic", rec).Msg("handler panic")
		}
	}()

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	if env.Type != "ping" && !ctl.limiter.Allow(sid) {
		ctl.sendError(c, env.Rid, "rate limited")
		return
	}

	switch env.Type {
	case "create_room":
		ctl.handleCreateRoom(ctx, sid, c, data)
	case "join_room":
		ctl.handleJoinRoom(ctx, sid, c, data)
	case "rejoin_room":
		ctl.handleRejoinRoom(ctx, sid, c, data)
	case "start_voting":
		ctl.handleStartVoting(ctx, sid, c, data)
	case "submit_vote":
		ctl.handleSubmitVote(ctx, sid, data)
	case "reveal_results":
		ctl.handleRevealResults(ctx, sid, data)
	case "reset_voting":
		ctl.handleResetVoting(ctx, sid, data)
	case "clear_voting":
		ctl.handleClearVoting(ctx, sid, data)
	case "end_session":
		ctl.handleEndSession(ctx, sid, data)
	case "remove_user":
		ctl.handleRemoveUser(ctx, sid, c, data)
	case "ping":
		ctl.sendJSON(c, map[string]any{"type": "pong"})
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *WSController) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *WSController) sendError(c *wsConn, rid, msg string) {
	ctl.sendJSON(c, struct {
		Type    string `json:"type"`
		Rid     string `json:"rid,omitempty"`
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{
		Type:    "error",
		Rid:     rid,
		Success: false,
		Error:   msg,
	})
}
