package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// Gateway fans out room events to every session bound to a room.
// Sends are non-blocking; sessions that cannot keep up go through the
// backpressure policy.
type Gateway struct {
	Registry *Registry
	Policy   Policy
}

func NewGateway(reg *Registry, policy Policy) *Gateway {
	return &Gateway{Registry: reg, Policy: policy}
}

// RoomUpdated broadcasts the full current snapshot, not a diff.
func (g *Gateway) RoomUpdated(room *domain.Room) {
	g.BroadcastRoom(room.ID, roomUpdatedEvent{Type: "room_updated", Room: core.SnapshotRoom(room)})
}

func (g *Gateway) BroadcastRoom(roomID domain.RoomID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("broadcast marshal")
		return
	}
	sent := 0
	for _, m := range g.Registry.MembersOfRoom(roomID) {
		if err := m.Conn.TrySend(core.Frame(b)); err != nil {
			log.Warn().Str("module", "app.gateway").Str("sid", string(m.SID)).Msg("dropped frame")
			if g.Policy != nil && g.Policy.OnBackPressure(m.SID) == KickMember {
				g.Registry.Cancel(m.SID)
			}
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.gateway").Str("room", string(roomID)).Int("sent_to", sent).Msg("broadcast")
}

func (g *Gateway) SendTo(sid core.SessionID, v any) {
	conn, ok := g.Registry.Conn(sid)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("send marshal")
		return
	}
	_ = conn.TrySend(core.Frame(b))
}
