package domain

import "time"

type RoomID string

// VotingPhase collapses the voting/results booleans of the wire contract
// into one state: once results are revealed, voting is closed.
type VotingPhase string

const (
	PhaseNoStory  VotingPhase = "no_story"
	PhaseOpen     VotingPhase = "open"
	PhaseRevealed VotingPhase = "revealed"
)

type Room struct {
	ID           RoomID      `json:"id"`
	Users        []*User     `json:"users"` // join order
	Story        *Story      `json:"currentStory"`
	Phase        VotingPhase `json:"phase"`
	VotingCount  int         `json:"votingCount"`
	LastActivity time.Time   `json:"lastActivity"`
}

func NewRoom(id RoomID) *Room {
	return &Room{
		ID:           id,
		Users:        []*User{},
		Phase:        PhaseNoStory,
		LastActivity: time.Now(),
	}
}

func (r *Room) FindUser(id UserID) *User {
	for _, u := range r.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// RemoveUser splices the user out of the join-order list and strips
// their vote from the current story, if any.
func (r *Room) RemoveUser(id UserID) bool {
	for i, u := range r.Users {
		if u.ID == id {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			if r.Story != nil {
				r.Story.RemoveVote(id)
			}
			return true
		}
	}
	return false
}

// FirstConnected returns the longest-connected user matching pred,
// relying on Users being in join order.
func (r *Room) FirstConnected(pred func(*User) bool) *User {
	for _, u := range r.Users {
		if u.Connected && (pred == nil || pred(u)) {
			return u
		}
	}
	return nil
}

// Clone deep-copies the room so a snapshot can be marshalled outside
// the store's critical section.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Users = make([]*User, len(r.Users))
	for i, u := range r.Users {
		uc := *u
		if u.DisconnectedAt != nil {
			t := *u.DisconnectedAt
			uc.DisconnectedAt = &t
		}
		cp.Users[i] = &uc
	}
	if r.Story != nil {
		sc := *r.Story
		sc.Votes = append([]Vote(nil), r.Story.Votes...)
		cp.Story = &sc
	}
	return &cp
}
