package core

import "errors"

// Error taxonomy surfaced through acknowledgement frames. Fire-and-forget
// actions log these server-side instead.
var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRoomFull     = errors.New("room full")
	ErrServerFull   = errors.New("server at capacity")
	ErrNoStory      = errors.New("no story under vote")
	ErrVotingClosed = errors.New("voting is not active")
	ErrInvalidVote  = errors.New("invalid vote value")
	ErrNotBound     = errors.New("connection not bound to a room")
)
