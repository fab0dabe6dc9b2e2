package app

import "github.com/dkeye/Poker/internal/core"

// Reasons carried on scrum_master_changed notifications.
const (
	ReasonOriginalDisconnected = "original_disconnected"
	ReasonOriginalReconnected  = "original_reconnected"
	ReasonPermanentPromotion   = "permanent_promotion"
)

// Discrete notifications broadcast beyond the snapshot so clients can
// show contextual messaging. The snapshot stays the source of truth.

type roomUpdatedEvent struct {
	Type string       `json:"type"`
	Room core.RoomDTO `json:"room"`
}

type scrumMasterChangedEvent struct {
	Type                    string        `json:"type"`
	NewFacilitator          core.UserDTO  `json:"newFacilitator"`
	Reason                  string        `json:"reason"`
	OriginalFacilitator     *core.UserDTO `json:"originalFacilitator,omitempty"`
	PreviousTempFacilitator *core.UserDTO `json:"previousTempFacilitator,omitempty"`
}

type sessionEndedEvent struct {
	Type string `json:"type"`
}

type removedEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
