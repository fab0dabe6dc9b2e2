package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/app"
	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

type storyPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (ctl *WSController) handleCreateRoom(ctx context.Context, sid core.SessionID, conn *wsConn, data []byte) {
	var p struct {
		envelope
		UserName     string        `json:"userName"`
		InitialStory *storyPayload `json:"initialStory,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create_room payload")
		ctl.sendError(conn, "", "bad_payload")
		return
	}

	var initial *app.StoryInput
	if p.InitialStory != nil {
		initial = &app.StoryInput{Title: p.InitialStory.Title, Description: p.InitialStory.Description}
	}

	room, user, err := ctl.Orch.CreateRoom(ctx, sid, p.UserName, initial)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("create room")
		ctl.sendError(conn, p.Rid, err.Error())
		return
	}

	ctl.sendJSON(conn, struct {
		Type    string        `json:"type"`
		Rid     string        `json:"rid,omitempty"`
		Success bool          `json:"success"`
		RoomID  domain.RoomID `json:"roomId"`
		User    core.UserDTO  `json:"user"`
	}{
		Type:    "room_created",
		Rid:     p.Rid,
		Success: true,
		RoomID:  room.ID,
		User:    core.SnapshotUser(user),
	})
}

func (ctl *WSController) handleJoinRoom(ctx context.Context, sid core.SessionID, conn *wsConn, data []byte) {
	var p struct {
		envelope
		RoomID   string `json:"roomId"`
		UserName string `json:"userName"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_room payload")
		ctl.sendError(conn, "", "bad_payload")
		return
	}

	room, user, err := ctl.Orch.JoinRoom(ctx, sid, domain.RoomID(p.RoomID), p.UserName)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("join room")
		ctl.sendError(conn, p.Rid, err.Error())
		return
	}

	ctl.sendJSON(conn, struct {
		Type    string       `json:"type"`
		Rid     string       `json:"rid,omitempty"`
		Success bool         `json:"success"`
		User    core.UserDTO `json:"user"`
		Room    core.RoomDTO `json:"room"`
	}{
		Type:    "room_joined",
		Rid:     p.Rid,
		Success: true,
		User:    core.SnapshotUser(user),
		Room:    core.SnapshotRoom(room),
	})
}

func (ctl *WSController) handleRejoinRoom(ctx context.Context, sid core.SessionID, conn *wsConn, data []byte) {
	var p struct {
		envelope
		RoomID string `json:"roomId"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad rejoin_room payload")
		ctl.sendError(conn, "", "bad_payload")
		return
	}

	room, user, err := ctl.Orch.RejoinRoom(ctx, sid, domain.RoomID(p.RoomID), domain.UserID(p.UserID))
	if err != nil {
		// The client falls back to the join flow on this error.
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Str("user", p.UserID).Msg("rejoin room")
		ctl.sendError(conn, p.Rid, err.Error())
		return
	}

	ctl.sendJSON(conn, struct {
		Type    string       `json:"type"`
		Rid     string       `json:"rid,omitempty"`
		Success bool         `json:"success"`
		User    core.UserDTO `json:"user"`
		Room    core.RoomDTO `json:"room"`
	}{
		Type:    "room_rejoined",
		Rid:     p.Rid,
		Success: true,
		User:    core.SnapshotUser(user),
		Room:    core.SnapshotRoom(room),
	})
}

func (ctl *WSController) handleEndSession(ctx context.Context, sid core.SessionID, data []byte) {
	var p struct {
		envelope
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad end_session payload")
		return
	}
	if err := ctl.Orch.EndSession(ctx, sid, domain.RoomID(p.RoomID)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("end session")
	}
}

func (ctl *WSController) handleRemoveUser(ctx context.Context, sid core.SessionID, conn *wsConn, data []byte) {
	var p struct {
		envelope
		RoomID         string `json:"roomId"`
		UserIDToRemove string `json:"userIdToRemove"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad remove_user payload")
		ctl.sendError(conn, "", "bad_payload")
		return
	}
	if err := ctl.Orch.RemoveUser(ctx, sid, domain.RoomID(p.RoomID), domain.UserID(p.UserIDToRemove)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", p.RoomID).Msg("remove user")
		ctl.sendError(conn, p.Rid, err.Error())
		return
	}
	ctl.sendJSON(conn, struct {
		Type    string `json:"type"`
		Rid     string `json:"rid,omitempty"`
		Success bool   `json:"success"`
	}{
		Type:    "user_removed",
		Rid:     p.Rid,
		Success: true,
	})
}
