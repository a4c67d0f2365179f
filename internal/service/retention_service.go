package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/internal/repository"
	"bracket-bff/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const sweepParallelism = 8

// SweepResult summarizes one retention sweep
type SweepResult struct {
	Cutoff     time.Time `json:"cutoff"`
	Candidates int       `json:"candidates"`
	Deleted    int       `json:"deleted"`
	Failed     []string  `json:"failed,omitempty"`
}

// retentionService deletes finished tournaments once they are older than the retention window
type retentionService struct {
	tournaments repository.TournamentRepository
	logger      *logger.Logger
	retention   time.Duration
	hourUTC     int
	now         func() time.Time

	mu        sync.Mutex
	isRunning bool
	stopSweep chan struct{}
	done      chan struct{}
}

// NewRetentionService creates a sweeper that runs daily at hourUTC:00 UTC
func NewRetentionService(tournaments repository.TournamentRepository, retention time.Duration, hourUTC int, log *logger.Logger) RetentionService {
	return newRetentionService(tournaments, retention, hourUTC, log)
}

func newRetentionService(tournaments repository.TournamentRepository, retention time.Duration, hourUTC int, log *logger.Logger) *retentionService {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &retentionService{
		tournaments: tournaments,
		logger:      log.Named("retention"),
		retention:   retention,
		hourUTC:     hourUTC,
		now:         time.Now,
	}
}

// Start begins the daily schedule. Missed runs are not caught up.
func (s *retentionService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	s.stopSweep = make(chan struct{})
	s.done = make(chan struct{})
	go s.sweepRoutine(ctx, s.stopSweep, s.done)

	s.isRunning = true
	s.logger.WithFields(map[string]interface{}{
		"next_run":  nextRun(s.now(), s.hourUTC).Format(time.RFC3339),
		"retention": s.retention.String(),
	}).Info("Retention sweeper started")
	return nil
}

// Stop ends the schedule, waiting for a running sweep until ctx ends
func (s *retentionService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	close(s.stopSweep)
	s.isRunning = false

	select {
	case <-s.done:
		s.logger.Info("Retention sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *retentionService) sweepRoutine(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		timer := time.NewTimer(time.Until(nextRun(s.now(), s.hourUTC)))
		select {
		case <-timer.C:
			s.Sweep(ctx)
		case <-stop:
			timer.Stop()
			s.logger.Debug("Sweep routine stopped")
			return
		case <-ctx.Done():
			timer.Stop()
			s.logger.Debug("Sweep routine cancelled")
			return
		}
	}
}

// Sweep deletes every finished tournament completed at or before now minus the
// retention window. Each deletion is independent; failures are logged and skipped.
func (s *retentionService) Sweep(ctx context.Context) *SweepResult {
	result := &SweepResult{Cutoff: s.now().Add(-s.retention)}

	expired, err := s.tournaments.ListFinishedBefore(ctx, result.Cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list expired tournaments")
		return result
	}
	result.Candidates = len(expired)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(sweepParallelism)
	for _, tournament := range expired {
		g.Go(func() error {
			err := s.deleteExpired(ctx, tournament)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, tournament.ID.String())
			} else {
				result.Deleted++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.WithFields(map[string]interface{}{
		"cutoff":     result.Cutoff.Format(time.RFC3339),
		"candidates": result.Candidates,
		"deleted":    result.Deleted,
		"failed":     len(result.Failed),
	}).Info("Retention sweep finished")

	return result
}

func (s *retentionService) deleteExpired(ctx context.Context, tournament *domain.Tournament) error {
	err := s.tournaments.Delete(ctx, tournament.ID)
	if err == nil || stderrors.Is(err, repository.ErrNotFound) {
		return nil
	}
	s.logger.WithError(err).WithField("tournament_id", tournament.ID.String()).
		Error("Failed to delete expired tournament")
	return err
}

// nextRun returns the first hourUTC:00 UTC strictly after now
func nextRun(now time.Time, hourUTC int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
