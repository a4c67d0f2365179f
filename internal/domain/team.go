package domain

import (
	"slices"
	"time"

	"bracket-bff/pkg/errors"
)

// MaxTeamSize is the number of members a team can hold
const MaxTeamSize = 5

// Team is an ad-hoc roster formed for a tournament
type Team struct {
	ID           int64      `json:"id"`
	TournamentID ProviderID `json:"tournament_id"`
	TeamName     string     `json:"team_name"`
	UserIDs      []string   `json:"user_ids"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasMember reports whether userID is already on the roster
func (t *Team) HasMember(userID string) bool {
	return slices.Contains(t.UserIDs, userID)
}

// IsFull reports whether the roster reached capacity
func (t *Team) IsFull() bool {
	return len(t.UserIDs) >= MaxTeamSize
}

// CheckCanAdd returns the taxonomy error that prevents userID from joining, if any.
// Capacity is checked first.
func (t *Team) CheckCanAdd(userID string) error {
	if t.IsFull() {
		return errors.NewTeamFullError("The team is already full").
			WithDetail("max_size", MaxTeamSize)
	}
	if t.HasMember(userID) {
		return errors.NewDuplicateMemberError("User already in team").
			WithDetail("user_id", userID)
	}
	return nil
}

// AddMemberRequest asks for userID to join the tournament's team
type AddMemberRequest struct {
	TournamentID ProviderID `json:"tournamentId" validate:"required"`
	TeamName     string     `json:"teamName" validate:"required,max=100"`
	UserID       string     `json:"userId" validate:"required,max=100"`
}

// AddMemberResult reports what the roster operation did
type AddMemberResult struct {
	Message string `json:"message"`
	Team    *Team  `json:"team"`
	Created bool   `json:"created"`
}
