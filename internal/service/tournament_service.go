package service

import (
	"context"
	stderrors "errors"

	"bracket-bff/internal/domain"
	"bracket-bff/internal/repository"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
)

// tournamentService mirrors bracket provider tournaments locally
type tournamentService struct {
	tournaments repository.TournamentRepository
	bracket     BracketProvider
	locker      Locker
	logger      *logger.Logger
}

// NewTournamentService creates a new tournament service
func NewTournamentService(tournaments repository.TournamentRepository, bracket BracketProvider, locker Locker, log *logger.Logger) TournamentService {
	return &tournamentService{
		tournaments: tournaments,
		bracket:     bracket,
		locker:      locker,
		logger:      log.Named("tournament"),
	}
}

// Create creates the remote tournament and stores a mirror under the remote ID
func (s *tournamentService) Create(ctx context.Context, req *domain.CreateTournamentRequest) (*domain.Tournament, error) {
	if req == nil || req.Name == "" {
		return nil, errors.NewValidationError("Tournament name is required", nil)
	}

	remote, err := s.bracket.CreateTournament(ctx, req.Remote())
	if err != nil {
		s.logger.WithError(err).WithField("name", req.Name).Error("Failed to create remote tournament")
		return nil, err
	}
	if remote.ID.IsZero() {
		return nil, errors.NewExternalError("bracket provider returned a tournament without an id", nil)
	}

	tournament := remote.ToLocal(req.RequireScoreToWin)
	if err := s.tournaments.Create(ctx, tournament); err != nil {
		log := s.logger.WithError(err).WithField("tournament_id", remote.ID.String())
		if stderrors.Is(err, repository.ErrAlreadyExists) {
			log.Warn("Tournament mirror already exists")
			return nil, errors.NewConflictError("Tournament already exists").
				WithDetail("tournament_id", remote.ID.String())
		}
		// the remote tournament exists without a mirror, the id is logged for manual cleanup
		log.Error("Remote tournament created but local mirror failed")
		return nil, errors.NewInternalError("failed to store tournament", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"tournament_id": tournament.ID.String(),
		"state":         string(tournament.State),
	}).Info("Tournament created")

	return tournament, nil
}

// AddParticipant registers an entrant remotely and appends it to the mirror's roster
func (s *tournamentService) AddParticipant(ctx context.Context, tournamentID domain.ProviderID, name string) (*domain.Participant, error) {
	if tournamentID.IsZero() || name == "" {
		return nil, errors.NewValidationError("tournamentId and participantName are required", nil)
	}

	unlock, err := lockTournament(ctx, s.locker, tournamentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tournament, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.State != domain.StateToBeStarted {
		return nil, errors.NewConflictError("Participants can only be added before the tournament starts").
			WithDetail("state", string(tournament.State))
	}

	participant, err := s.bracket.AddParticipant(ctx, tournamentID, name)
	if err != nil {
		s.logger.WithError(err).WithField("tournament_id", tournamentID.String()).Error("Failed to add remote participant")
		return nil, err
	}

	if err := s.tournaments.AppendParticipant(ctx, tournamentID, *participant); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"tournament_id":  tournamentID.String(),
			"participant_id": participant.ID.String(),
		}).Error("Remote participant added but local roster update failed")
		return nil, errors.NewInternalError("failed to store participant", err)
	}

	return participant, nil
}

// Start fails without a provider call when the mirror is unknown or finished
func (s *tournamentService) Start(ctx context.Context, tournamentID domain.ProviderID) (*domain.Tournament, error) {
	if tournamentID.IsZero() {
		return nil, errors.NewValidationError("tournamentId is required", nil)
	}

	unlock, err := lockTournament(ctx, s.locker, tournamentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tournament, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.State.CanTransitionTo(domain.StateOngoing) {
		return nil, errors.NewConflictError("Tournament is already finished").
			WithDetail("state", string(tournament.State))
	}

	if _, err := s.bracket.StartTournament(ctx, tournamentID); err != nil {
		s.logger.WithError(err).WithField("tournament_id", tournamentID.String()).Error("Failed to start remote tournament")
		return nil, err
	}

	started, err := s.tournaments.MarkOngoing(ctx, tournamentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to store tournament state", err)
	}

	s.logger.WithField("tournament_id", tournamentID.String()).Info("Tournament started")
	return started, nil
}

// ListByStatus queries the mirrors in one lifecycle state
func (s *tournamentService) ListByStatus(ctx context.Context, status string) ([]*domain.Tournament, error) {
	state, ok := domain.ParseTournamentState(status)
	if !ok {
		return nil, errors.NewValidationError("Unknown tournament status", map[string]interface{}{
			"status":  status,
			"allowed": []string{string(domain.StateToBeStarted), string(domain.StateOngoing), string(domain.StateFinished)},
		})
	}

	tournaments, err := s.tournaments.ListByState(ctx, state)
	if err != nil {
		return nil, errors.NewInternalError("Error retrieving tournaments by status", err)
	}
	return tournaments, nil
}

// ListAll queries every mirror
func (s *tournamentService) ListAll(ctx context.Context) ([]*domain.Tournament, error) {
	tournaments, err := s.tournaments.ListAll(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Error retrieving all tournaments", err)
	}
	return tournaments, nil
}

// ListMatches passes through to the provider
func (s *tournamentService) ListMatches(ctx context.Context, tournamentID domain.ProviderID) ([]domain.Match, error) {
	if tournamentID.IsZero() {
		return nil, errors.NewValidationError("tournamentId is required", nil)
	}
	return s.bracket.ListMatches(ctx, tournamentID)
}

func (s *tournamentService) load(ctx context.Context, tournamentID domain.ProviderID) (*domain.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load tournament", err)
	}
	if tournament == nil {
		return nil, errors.NewNotFoundError("Tournament not found").
			WithDetail("tournament_id", tournamentID.String())
	}
	return tournament, nil
}
