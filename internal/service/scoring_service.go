package service

import (
	"context"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/internal/repository"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
)

const (
	defaultFinishAttempts = 3
	defaultFinishBackoff  = 100 * time.Millisecond
)

// scoringService ingests match scores and closes matches once a participant wins
type scoringService struct {
	tournaments    repository.TournamentRepository
	bracket        BracketProvider
	locker         Locker
	logger         *logger.Logger
	finishAttempts int
	finishBackoff  time.Duration
}

// NewScoringService creates a new scoring service
func NewScoringService(tournaments repository.TournamentRepository, bracket BracketProvider, locker Locker, log *logger.Logger) ScoringService {
	return &scoringService{
		tournaments:    tournaments,
		bracket:        bracket,
		locker:         locker,
		logger:         log.Named("scoring"),
		finishAttempts: defaultFinishAttempts,
		finishBackoff:  defaultFinishBackoff,
	}
}

// SubmitScore runs under the tournament lock:
//  1. the submission is checked against the stored roster, nothing is sent if it does not match
//  2. the score string is written to the provider
//  3. a complete match or a match without a winner ends the call
//  4. the winner is written to the provider, then the tournament is finished locally
//
// A failed winner write leaves the local tournament untouched so the whole
// submission can be replayed.
func (s *scoringService) SubmitScore(ctx context.Context, req *domain.SubmitScoreRequest) (*domain.MatchOutcome, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	unlock, err := lockTournament(ctx, s.locker, req.TournamentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tournament, err := s.tournaments.GetByID(ctx, req.TournamentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load tournament", err)
	}
	if tournament == nil {
		return nil, errors.NewNotFoundError("Tournament not found").
			WithDetail("tournament_id", req.TournamentID.String())
	}

	tally, err := buildTally(tournament, req)
	if err != nil {
		return nil, err
	}

	scoresCSV := tally.ScoresCSV()
	log := s.logger.WithFields(map[string]interface{}{
		"tournament_id": req.TournamentID.String(),
		"match_id":      req.MatchID.String(),
		"scores_csv":    scoresCSV,
	})

	match, err := s.bracket.UpdateMatch(ctx, req.TournamentID, req.MatchID, domain.MatchUpdate{ScoresCSV: scoresCSV})
	if err != nil {
		log.WithError(err).Error("Failed to record match score")
		return nil, err
	}

	if match.IsComplete() {
		log.Info("Score submitted for a match that is already complete")
		return &domain.MatchOutcome{
			Status:  domain.OutcomeAlreadyFinished,
			Message: "The match is already finished",
			Match:   match,
		}, nil
	}

	winnerID, won := tally.Winner(tournament.Threshold())
	if !won {
		log.Debug("Match score recorded, no winner yet")
		return &domain.MatchOutcome{
			Status:  domain.OutcomeInProgress,
			Message: "Score recorded",
			Match:   match,
		}, nil
	}

	winnerScore, _ := tally.Score(winnerID)
	log = log.WithFields(map[string]interface{}{
		"winner_id":    winnerID.String(),
		"winner_score": winnerScore,
	})

	final, err := s.bracket.UpdateMatch(ctx, req.TournamentID, req.MatchID, match.WinnerUpdate(winnerID, scoresCSV))
	if err != nil {
		log.WithError(err).Error("Failed to record match winner, tournament left unchanged")
		return nil, err
	}

	// The provider already holds the winner, so the local write must not be abandoned with the request.
	if err := s.markFinished(context.WithoutCancel(ctx), req.TournamentID); err != nil {
		log.WithError(err).Error("Winner recorded remotely but tournament could not be finished locally")
		return nil, errors.NewInternalError("winner recorded but tournament state could not be saved", err).
			WithDetail("winner_id", winnerID.String())
	}

	log.Info("Match won, tournament finished")
	return &domain.MatchOutcome{
		Status:   domain.OutcomeWon,
		Message:  "Match won",
		Match:    final,
		WinnerID: winnerID,
	}, nil
}

// markFinished retries the idempotent local transition a bounded number of times
func (s *scoringService) markFinished(ctx context.Context, tournamentID domain.ProviderID) error {
	var lastErr error
	for attempt := 1; attempt <= s.finishAttempts; attempt++ {
		_, err := s.tournaments.MarkFinished(ctx, tournamentID)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < s.finishAttempts {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"tournament_id": tournamentID.String(),
				"attempt":       attempt,
			}).Warn("Retrying tournament finish")

			select {
			case <-time.After(time.Duration(attempt) * s.finishBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func validateSubmission(req *domain.SubmitScoreRequest) error {
	if req == nil {
		return errors.NewValidationError("Score submission is required", nil)
	}
	if req.TournamentID.IsZero() || req.MatchID.IsZero() {
		return errors.NewValidationError("tournamentId and matchId are required", nil)
	}
	if len(req.Scores) == 0 && len(req.ParticipantScores) == 0 {
		return errors.NewValidationError("Scores must be provided", nil)
	}
	if len(req.Scores) > 0 && len(req.ParticipantScores) > 0 {
		return errors.NewValidationError("Provide either scores or participantScores, not both", nil)
	}
	return nil
}

func buildTally(tournament *domain.Tournament, req *domain.SubmitScoreRequest) (*domain.ScoreTally, error) {
	if len(req.ParticipantScores) > 0 {
		return domain.NewKeyedTally(tournament.Participants, req.ParticipantScores)
	}
	return domain.NewPositionalTally(tournament.Participants, req.Scores)
}
