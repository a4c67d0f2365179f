package domain

import (
	"time"
)

// TournamentState is the local lifecycle state of a tournament
type TournamentState string

const (
	StateToBeStarted TournamentState = "to_be_started"
	StateOngoing     TournamentState = "ongoing"
	StateFinished    TournamentState = "finished"
)

// DefaultRequireScoreToWin is the win threshold used when none is configured
const DefaultRequireScoreToWin = 5

// remotePending is the bracket provider's state for a tournament that has not started
const remotePending = "pending"

// ParseTournamentState validates a state coming from a request
func ParseTournamentState(s string) (TournamentState, bool) {
	switch state := TournamentState(s); state {
	case StateToBeStarted, StateOngoing, StateFinished:
		return state, true
	}
	return "", false
}

func (s TournamentState) rank() int {
	switch s {
	case StateToBeStarted:
		return 0
	case StateOngoing:
		return 1
	case StateFinished:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle forward-only.
// Staying in the same state is allowed so that repeated writes are idempotent.
func (s TournamentState) CanTransitionTo(next TournamentState) bool {
	from, to := s.rank(), next.rank()
	if from < 0 || to < 0 {
		return false
	}
	return to >= from
}

// MapRemoteState converts the bracket provider's state into the local lifecycle
func MapRemoteState(remote string) TournamentState {
	if remote == remotePending {
		return StateToBeStarted
	}
	return StateOngoing
}

// Participant is a bracket entrant as assigned by the provider
type Participant struct {
	ID           ProviderID `json:"id"`
	TournamentID ProviderID `json:"tournament_id,omitempty"`
	Name         string     `json:"name"`
	Seed         int        `json:"seed,omitempty"`
}

// Tournament is the local mirror of a bracket provider tournament
type Tournament struct {
	ID                ProviderID      `json:"id"`
	Name              string          `json:"name"`
	URL               string          `json:"url"`
	Description       string          `json:"description"`
	TournamentType    string          `json:"tournament_type"`
	State             TournamentState `json:"state"`
	Participants      []Participant   `json:"participants"`
	RequireScoreToWin int             `json:"require_score_to_win"`
	FullChallongeURL  string          `json:"full_challonge_url,omitempty"`
	LiveImageURL      string          `json:"live_image_url,omitempty"`
	StartedAt         *time.Time      `json:"started_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Threshold returns the score needed to win a match, falling back to the default
func (t *Tournament) Threshold() int {
	if t.RequireScoreToWin <= 0 {
		return DefaultRequireScoreToWin
	}
	return t.RequireScoreToWin
}

// RemoteTournament is the tournament object returned by the bracket provider
type RemoteTournament struct {
	ID               ProviderID `json:"id"`
	Name             string     `json:"name"`
	URL              string     `json:"url"`
	Description      string     `json:"description"`
	TournamentType   string     `json:"tournament_type"`
	State            string     `json:"state"`
	FullChallongeURL string     `json:"full_challonge_url"`
	LiveImageURL     string     `json:"live_image_url"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// ToLocal builds the local mirror of a freshly created remote tournament
func (r *RemoteTournament) ToLocal(requireScoreToWin int) *Tournament {
	if requireScoreToWin <= 0 {
		requireScoreToWin = DefaultRequireScoreToWin
	}
	return &Tournament{
		ID:                r.ID,
		Name:              r.Name,
		URL:               r.URL,
		Description:       r.Description,
		TournamentType:    r.TournamentType,
		State:             MapRemoteState(r.State),
		Participants:      []Participant{},
		RequireScoreToWin: requireScoreToWin,
		FullChallongeURL:  r.FullChallongeURL,
		LiveImageURL:      r.LiveImageURL,
		StartedAt:         r.StartedAt,
	}
}

// CreateTournamentRequest carries the details of a new tournament
type CreateTournamentRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=60"`
	URL               string `json:"url,omitempty" validate:"omitempty,max=60,excludesall=/?#&"`
	TournamentType    string `json:"tournament_type,omitempty" validate:"omitempty,oneof='single elimination' 'double elimination' 'round robin' swiss"`
	Description       string `json:"description,omitempty" validate:"max=2000"`
	RequireScoreToWin int    `json:"require_score_to_win,omitempty" validate:"gte=0,lte=1000"`
}

// RemoteDetails is the payload the bracket provider accepts on creation
type RemoteDetails struct {
	Name           string `json:"name"`
	URL            string `json:"url,omitempty"`
	TournamentType string `json:"tournament_type,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Remote strips the local-only fields from the request
func (r *CreateTournamentRequest) Remote() RemoteDetails {
	return RemoteDetails{
		Name:           r.Name,
		URL:            r.URL,
		TournamentType: r.TournamentType,
		Description:    r.Description,
	}
}
