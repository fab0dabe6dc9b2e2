package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
)

// Planning-poker card deck. Everything else is rejected.
var allowedCards = map[string]struct{}{
	"0": {}, "1": {}, "2": {}, "3": {}, "5": {}, "8": {}, "13": {}, "21": {},
	"?": {}, "☕": {},
}

func ValidCard(value string) bool {
	_, ok := allowedCards[value]
	return ok
}

type Vote struct {
	UserID UserID `json:"userId"`
	Value  string `json:"value"`
}

type Story struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Votes       []Vote `json:"votes"`
}

// NewStory trims the title and falls back to "Voting #N" when it is
// blank. Title and description are truncated, not rejected.
func NewStory(title, description string, votingCount int) *Story {
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Voting #%d", votingCount)
	}
	title = truncate(title, MaxTitleLen)
	description = truncate(description, MaxDescriptionLen)
	return &Story{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Votes:       []Vote{},
	}
}

// SetVote replaces any prior vote by the same user: one vote per user,
// last write wins.
func (s *Story) SetVote(userID UserID, value string) {
	s.RemoveVote(userID)
	s.Votes = append(s.Votes, Vote{UserID: userID, Value: value})
}

func (s *Story) RemoveVote(userID UserID) {
	for i, v := range s.Votes {
		if v.UserID == userID {
			s.Votes = append(s.Votes[:i], s.Votes[i+1:]...)
			return
		}
	}
}
