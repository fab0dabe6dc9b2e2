package core

import "github.com/dkeye/Poker/internal/domain"

// Read-only wire views. Clients are stateless renderers of the latest
// snapshot, so the room DTO carries the full state every time and keeps
// the legacy isVotingActive/isResultsVisible booleans, derived from the
// phase.

type UserDTO struct {
	ID          domain.UserID   `json:"id"`
	Name        string          `json:"name"`
	Role        domain.RoleKind `json:"role"`
	CoveringFor domain.UserID   `json:"coveringFor,omitempty"`
	IsConnected bool            `json:"isConnected"`
}

type StoryDTO struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Votes       []domain.Vote       `json:"votes"`
	Stats       *domain.VotingStats `json:"stats,omitempty"`
}

type RoomDTO struct {
	ID               domain.RoomID `json:"id"`
	Users            []UserDTO     `json:"users"`
	CurrentStory     *StoryDTO     `json:"currentStory"`
	IsVotingActive   bool          `json:"isVotingActive"`
	IsResultsVisible bool          `json:"isResultsVisible"`
	VotingCount      int           `json:"votingCount"`
}

func SnapshotUser(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role.Kind,
		CoveringFor: u.Role.CoveringFor,
		IsConnected: u.Connected,
	}
}

func SnapshotRoom(r *domain.Room) RoomDTO {
	dto := RoomDTO{
		ID:               r.ID,
		Users:            make([]UserDTO, 0, len(r.Users)),
		IsVotingActive:   r.Phase == domain.PhaseOpen,
		IsResultsVisible: r.Phase == domain.PhaseRevealed,
		VotingCount:      r.VotingCount,
	}
	for _, u := range r.Users {
		dto.Users = append(dto.Users, SnapshotUser(u))
	}
	if r.Story != nil {
		votes := r.Story.Votes
		if votes == nil {
			votes = []domain.Vote{}
		}
		dto.CurrentStory = &StoryDTO{
			ID:          r.Story.ID,
			Title:       r.Story.Title,
			Description: r.Story.Description,
			Votes:       votes,
		}
		// Stats only accompany revealed results.
		if r.Phase == domain.PhaseRevealed {
			stats := domain.CalculateStats(votes)
			dto.CurrentStory.Stats = &stats
		}
	}
	return dto
}
