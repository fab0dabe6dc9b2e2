package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidCard(t *testing.T) {
	for _, value := range []string{"0", "1", "2", "3", "5", "8", "13", "21", "?", "☕"} {
		if !ValidCard(value) {
			t.Errorf("expected %q to be a valid card", value)
		}
	}
	for _, value := range []string{"100", "4", "", "five", "♠"} {
		if ValidCard(value) {
			t.Errorf("expected %q to be rejected", value)
		}
	}
}

func TestNewStoryDefaultTitle(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		votingCount int
		wantTitle   string
	}{
		{"blank title synthesized", "", 1, "Voting #1"},
		{"whitespace title synthesized", "   ", 3, "Voting #3"},
		{"explicit title kept", "Login flow", 2, "Login flow"},
		{"title trimmed", "  Login flow  ", 2, "Login flow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStory(tt.title, "", tt.votingCount)
			if s.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", s.Title, tt.wantTitle)
			}
			if s.ID == "" {
				t.Error("expected a story id")
			}
			if len(s.Votes) != 0 {
				t.Errorf("expected empty votes, got %d", len(s.Votes))
			}
		})
	}
}

func TestNewStoryTruncation(t *testing.T) {
	s := NewStory(strings.Repeat("t", 300), strings.Repeat("d", 900), 1)
	if len(s.Title) != MaxTitleLen {
		t.Errorf("title length = %d, want %d", len(s.Title), MaxTitleLen)
	}
	if len(s.Description) != MaxDescriptionLen {
		t.Errorf("description length = %d, want %d", len(s.Description), MaxDescriptionLen)
	}
}

func TestTruncationKeepsValidUTF8(t *testing.T) {
	// The byte limit lands inside the first multi-byte rune; the cut
	// must back off to the rune boundary instead of splitting it.
	title := strings.Repeat("t", MaxTitleLen-1) + "☕☕"
	s := NewStory(title, strings.Repeat("☕", 200), 1)
	if !utf8.ValidString(s.Title) {
		t.Errorf("title is not valid UTF-8: %q", s.Title)
	}
	if len(s.Title) != MaxTitleLen-1 {
		t.Errorf("title length = %d, want %d", len(s.Title), MaxTitleLen-1)
	}
	if !utf8.ValidString(s.Description) {
		t.Errorf("description is not valid UTF-8: %q", s.Description)
	}
	if len(s.Description) > MaxDescriptionLen {
		t.Errorf("description length = %d, over %d", len(s.Description), MaxDescriptionLen)
	}

	u, err := NewUser(strings.Repeat("☕", 40), RoleParticipant, "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(u.Name) {
		t.Errorf("name is not valid UTF-8: %q", u.Name)
	}
	if len(u.Name) > MaxNameLen {
		t.Errorf("name length = %d, over %d", len(u.Name), MaxNameLen)
	}
}

func TestSetVoteReplacesPriorVote(t *testing.T) {
	s := NewStory("x", "", 1)
	s.SetVote("u1", "5")
	s.SetVote("u2", "8")
	s.SetVote("u1", "13")

	if len(s.Votes) != 2 {
		t.Fatalf("expected 2 votes, got %d", len(s.Votes))
	}
	for _, v := range s.Votes {
		if v.UserID == "u1" && v.Value != "13" {
			t.Errorf("u1 vote = %q, want %q", v.Value, "13")
		}
	}
}

func TestNewUser(t *testing.T) {
	if _, err := NewUser("   ", RoleParticipant, "ABC123"); err != ErrNameEmpty {
		t.Errorf("expected ErrNameEmpty, got %v", err)
	}

	u, err := NewUser(strings.Repeat("n", 250), RoleFacilitator, "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(u.Name) != MaxNameLen {
		t.Errorf("name length = %d, want %d", len(u.Name), MaxNameLen)
	}
	if u.Role.Kind != RoleFacilitator {
		t.Errorf("role = %q, want facilitator", u.Role.Kind)
	}
	if !u.Connected {
		t.Error("expected new user to be connected")
	}
}

func TestRoleCanFacilitate(t *testing.T) {
	tests := []struct {
		kind RoleKind
		want bool
	}{
		{RoleFacilitator, true},
		{RoleTemporary, true},
		{RoleParticipant, false},
		{RoleDisplaced, false},
	}
	for _, tt := range tests {
		if got := (Role{Kind: tt.kind}).CanFacilitate(); got != tt.want {
			t.Errorf("CanFacilitate(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
