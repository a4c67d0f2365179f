package repository

import (
	"context"
	"errors"
	"time"

	"bracket-bff/internal/domain"
)

var (
	// ErrNotFound is returned by writes that matched no row
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when a unique key is already taken
	ErrAlreadyExists = errors.New("record already exists")
)

// TournamentRepository defines the interface for tournament mirror operations
type TournamentRepository interface {
	// Create inserts a new tournament mirror keyed by the provider ID
	Create(ctx context.Context, tournament *domain.Tournament) error

	// GetByID retrieves a tournament from the primary, nil when absent
	GetByID(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error)

	// ListByState retrieves every tournament in the given state
	ListByState(ctx context.Context, state domain.TournamentState) ([]*domain.Tournament, error)

	// ListAll retrieves every tournament
	ListAll(ctx context.Context) ([]*domain.Tournament, error)

	// AppendParticipant adds a participant to the end of the stored roster
	AppendParticipant(ctx context.Context, id domain.ProviderID, participant domain.Participant) error

	// MarkOngoing moves a tournament to ongoing unless it already finished
	MarkOngoing(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error)

	// MarkFinished moves a tournament to finished, keeping the first completion time
	MarkFinished(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error)

	// ListFinishedBefore retrieves finished tournaments completed at or before cutoff
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Tournament, error)

	// Delete removes a tournament mirror
	Delete(ctx context.Context, id domain.ProviderID) error
}

// TeamRepository defines the interface for team roster operations
type TeamRepository interface {
	// GetByTournament retrieves the team of a tournament, nil when absent
	GetByTournament(ctx context.Context, tournamentID domain.ProviderID) (*domain.Team, error)

	// Create inserts a new team, ErrAlreadyExists if the tournament already has one
	Create(ctx context.Context, team *domain.Team) error

	// AppendMember adds userID when the team has room and does not contain it yet
	AppendMember(ctx context.Context, tournamentID domain.ProviderID, userID string) (*domain.Team, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Tournament TournamentRepository
	Team       TeamRepository
}
