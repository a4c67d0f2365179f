package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const tournamentColumns = `
	id, name, url, description, tournament_type, state, participants,
	require_score_to_win, full_challonge_url, live_image_url,
	started_at, completed_at, created_at, updated_at`

const uniqueViolation = "23505"

// tournamentRepository handles tournament mirrors in PostgreSQL
type tournamentRepository struct {
	db *database.PostgresDB
}

// NewTournamentRepository creates a new tournament repository
func NewTournamentRepository(db *database.PostgresDB) TournamentRepository {
	return &tournamentRepository{
		db: db,
	}
}

// Create inserts a new tournament mirror
func (r *tournamentRepository) Create(ctx context.Context, t *domain.Tournament) error {
	if t.Participants == nil {
		t.Participants = []domain.Participant{}
	}
	participants, err := json.Marshal(t.Participants)
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}

	query := `
		INSERT INTO tournaments (
			id, name, url, description, tournament_type, state, participants,
			require_score_to_win, full_challonge_url, live_image_url, started_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		t.ID.String(),
		t.Name,
		t.URL,
		t.Description,
		t.TournamentType,
		string(t.State),
		string(participants),
		t.RequireScoreToWin,
		t.FullChallongeURL,
		t.LiveImageURL,
		t.StartedAt,
		t.CompletedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}

	return nil
}

// GetByID reads from the primary so that it sees writes made under the tournament lock
func (r *tournamentRepository) GetByID(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(r.db.Pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	return t, nil
}

// ListByState retrieves tournaments in a given state, newest first
func (r *tournamentRepository) ListByState(ctx context.Context, state domain.TournamentState) ([]*domain.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE state = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, string(state))
}

// ListAll retrieves every tournament, newest first
func (r *tournamentRepository) ListAll(ctx context.Context) ([]*domain.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListFinishedBefore runs against the primary, the sweeper deletes what it returns
func (r *tournamentRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE state = 'finished' AND completed_at <= $1
		ORDER BY completed_at
	`

	rows, err := r.db.Pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired tournaments: %w", err)
	}
	return collectTournaments(rows)
}

// AppendParticipant adds a participant to the stored roster
func (r *tournamentRepository) AppendParticipant(ctx context.Context, id domain.ProviderID, participant domain.Participant) error {
	encoded, err := json.Marshal([]domain.Participant{participant})
	if err != nil {
		return fmt.Errorf("failed to encode participant: %w", err)
	}

	query := `
		UPDATE tournaments
		SET participants = participants || $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, id.String(), string(encoded))
	if err != nil {
		return fmt.Errorf("failed to append participant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkOngoing never moves a finished tournament backwards
func (r *tournamentRepository) MarkOngoing(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error) {
	query := `
		UPDATE tournaments
		SET state = CASE WHEN state = 'finished' THEN state ELSE 'ongoing' END,
		    started_at = CASE WHEN state = 'finished' THEN started_at ELSE COALESCE(started_at, NOW()) END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + tournamentColumns

	return r.update(ctx, query, id)
}

// MarkFinished is idempotent, a second call keeps the original completion time
func (r *tournamentRepository) MarkFinished(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error) {
	query := `
		UPDATE tournaments
		SET state = 'finished',
		    completed_at = COALESCE(completed_at, NOW()),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + tournamentColumns

	return r.update(ctx, query, id)
}

// Delete removes a tournament mirror
func (r *tournamentRepository) Delete(ctx context.Context, id domain.ProviderID) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM tournaments WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *tournamentRepository) update(ctx context.Context, query string, id domain.ProviderID) (*domain.Tournament, error) {
	t, err := scanTournament(r.db.Pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update tournament state: %w", err)
	}

	return t, nil
}

func (r *tournamentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Tournament, error) {
	rows, err := r.db.GetReadPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	return collectTournaments(rows)
}

func collectTournaments(rows pgx.Rows) ([]*domain.Tournament, error) {
	defer rows.Close()

	tournaments := []*domain.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading tournament rows: %w", err)
	}

	return tournaments, nil
}

func scanTournament(row pgx.Row) (*domain.Tournament, error) {
	var (
		t            domain.Tournament
		id           string
		state        string
		participants []byte
	)

	err := row.Scan(
		&id,
		&t.Name,
		&t.URL,
		&t.Description,
		&t.TournamentType,
		&state,
		&participants,
		&t.RequireScoreToWin,
		&t.FullChallongeURL,
		&t.LiveImageURL,
		&t.StartedAt,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ID = domain.ProviderID(id)
	t.State = domain.TournamentState(state)
	t.Participants = []domain.Participant{}
	if len(participants) > 0 {
		if err := json.Unmarshal(participants, &t.Participants); err != nil {
			return nil, fmt.Errorf("failed to decode participants: %w", err)
		}
	}

	return &t, nil
}
