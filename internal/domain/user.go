// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen = 36
	MaxNameLen   = 100
)

var ErrNameEmpty = errors.New("name empty")

// truncate cuts s to at most max bytes without splitting a rune, so
// truncated values stay valid UTF-8 on the wire.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

type UserID string

type RoleKind string

const (
	RoleFacilitator RoleKind = "Scrum Master"
	RoleParticipant RoleKind = "Participant"
	RoleTemporary   RoleKind = "Temporary Scrum Master"
	RoleDisplaced   RoleKind = "Displaced Scrum Master"
)

// Role keeps "who is standing in for whom" explicit instead of being
// inferred by scanning the user list. CoveringFor is set only for
// RoleTemporary and names the displaced facilitator's seat.
type Role struct {
	Kind        RoleKind `json:"kind"`
	CoveringFor UserID   `json:"coveringFor,omitempty"`
}

// CanFacilitate reports whether the role grants facilitator authority.
// A displaced facilitator has no privileges until restored.
func (r Role) CanFacilitate() bool {
	return r.Kind == RoleFacilitator || r.Kind == RoleTemporary
}

type User struct {
	ID             UserID     `json:"id"`
	Name           string     `json:"name"`
	Role           Role       `json:"role"`
	RoomID         RoomID     `json:"roomId"`
	Connected      bool       `json:"isConnected"`
	DisconnectedAt *time.Time `json:"disconnectedAt,omitempty"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// Names are trimmed and truncated rather than rejected; only an empty
// name is an error.
func NewUser(name string, kind RoleKind, roomID RoomID) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}
	name = truncate(name, MaxNameLen)
	return &User{
		ID:        UserID(uuid.NewString()),
		Name:      name,
		Role:      Role{Kind: kind},
		RoomID:    roomID,
		Connected: true,
	}, nil
}
