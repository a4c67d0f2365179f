package repository

import (
	"context"
	"errors"
	"fmt"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/database"
	"github.com/jackc/pgx/v5"
)

const teamColumns = `id, tournament_id, team_name, user_ids, created_at, updated_at`

// teamRepository handles team rosters in PostgreSQL
type teamRepository struct {
	db *database.PostgresDB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.PostgresDB) TeamRepository {
	return &teamRepository{db: db}
}

// GetByTournament reads from the primary, rosters are only read right before a write
func (r *teamRepository) GetByTournament(ctx context.Context, tournamentID domain.ProviderID) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, tournamentID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// Create inserts a team, the unique tournament_id column rejects a second one
func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	if team.UserIDs == nil {
		team.UserIDs = []string{}
	}

	query := `
		INSERT INTO teams (tournament_id, team_name, user_ids)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		team.TournamentID.String(),
		team.TeamName,
		team.UserIDs,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// AppendMember enforces capacity and uniqueness in the same statement as the write.
// When nothing was updated the current roster decides which rule was broken.
func (r *teamRepository) AppendMember(ctx context.Context, tournamentID domain.ProviderID, userID string) (*domain.Team, error) {
	query := `
		UPDATE teams
		SET user_ids = array_append(user_ids, $2), updated_at = NOW()
		WHERE tournament_id = $1
		  AND cardinality(user_ids) < $3
		  AND NOT ($2 = ANY(user_ids))
		RETURNING ` + teamColumns

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, tournamentID.String(), userID, domain.MaxTeamSize))
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to append team member: %w", err)
	}

	current, err := r.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if err := current.CheckCanAdd(userID); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("team member was not appended")
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var (
		team         domain.Team
		tournamentID string
	)

	err := row.Scan(
		&team.ID,
		&tournamentID,
		&team.TeamName,
		&team.UserIDs,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	team.TournamentID = domain.ProviderID(tournamentID)
	if team.UserIDs == nil {
		team.UserIDs = []string{}
	}

	return &team, nil
}
