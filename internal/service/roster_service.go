package service

import (
	"context"
	stderrors "errors"

	"bracket-bff/internal/domain"
	"bracket-bff/internal/repository"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
)

// rosterService forms capacity bounded teams, one per tournament
type rosterService struct {
	teams  repository.TeamRepository
	locker Locker
	logger *logger.Logger
}

// NewRosterService creates a new roster service
func NewRosterService(teams repository.TeamRepository, locker Locker, log *logger.Logger) RosterService {
	return &rosterService{
		teams:  teams,
		locker: locker,
		logger: log.Named("roster"),
	}
}

// AddMember creates the team with userID as its first member, or appends userID.
// The team name only matters on creation.
func (s *rosterService) AddMember(ctx context.Context, req *domain.AddMemberRequest) (*domain.AddMemberResult, error) {
	if req == nil || req.TournamentID.IsZero() || req.UserID == "" {
		return nil, errors.NewValidationError("tournamentId and userId are required", nil)
	}

	unlock, err := lockTournament(ctx, s.locker, req.TournamentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	log := s.logger.WithFields(map[string]interface{}{
		"tournament_id": req.TournamentID.String(),
		"user_id":       req.UserID,
	})

	team, err := s.teams.GetByTournament(ctx, req.TournamentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load team", err)
	}

	if team == nil {
		team = &domain.Team{
			TournamentID: req.TournamentID,
			TeamName:     req.TeamName,
			UserIDs:      []string{req.UserID},
		}
		err := s.teams.Create(ctx, team)
		if err == nil {
			log.Info("Team created")
			return &domain.AddMemberResult{Message: "Data updated in database", Team: team, Created: true}, nil
		}
		if !stderrors.Is(err, repository.ErrAlreadyExists) {
			return nil, errors.NewInternalError("failed to create team", err)
		}
		// created concurrently elsewhere, fall through to append
	} else if err := team.CheckCanAdd(req.UserID); err != nil {
		log.WithError(err).Debug("Team member rejected")
		return nil, err
	}

	updated, err := s.teams.AppendMember(ctx, req.TournamentID, req.UserID)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.NewInternalError("failed to add team member", err)
	}

	log.Info("Team member added")
	return &domain.AddMemberResult{Message: "Data updated in database", Team: updated}, nil
}
