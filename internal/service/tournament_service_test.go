package service

import (
	"context"
	"testing"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestTournaments(repo *fakeTournamentRepo, bracket *mockBracket) TournamentService {
	return NewTournamentService(repo, bracket, NewKeyedLocker(), logger.NewNop())
}

func TestTournamentCreate_StoresMirrorUnderRemoteID(t *testing.T) {
	repo := newFakeTournamentRepo()
	bracket := &mockBracket{}
	bracket.On("CreateTournament", mock.Anything, domain.RemoteDetails{Name: "Spring Cup", TournamentType: "single elimination"}).
		Return(&domain.RemoteTournament{ID: "4242", Name: "Spring Cup", State: "pending", TournamentType: "single elimination"}, nil)

	created, err := newTestTournaments(repo, bracket).Create(context.Background(), &domain.CreateTournamentRequest{
		Name:           "Spring Cup",
		TournamentType: "single elimination",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderID("4242"), created.ID)
	assert.Equal(t, domain.StateToBeStarted, created.State)
	assert.Equal(t, domain.DefaultRequireScoreToWin, created.RequireScoreToWin)
	assert.Empty(t, created.Participants)

	stored := repo.get("4242")
	require.NotNil(t, stored)
	assert.Equal(t, "Spring Cup", stored.Name)
}

func TestTournamentCreate_Failures(t *testing.T) {
	t.Run("provider failure", func(t *testing.T) {
		repo := newFakeTournamentRepo()
		bracket := &mockBracket{}
		bracket.On("CreateTournament", mock.Anything, mock.Anything).
			Return(nil, errors.FromProviderFailure("challonge", 422, `{"errors":["Name is taken"]}`, nil))

		_, err := newTestTournaments(repo, bracket).Create(context.Background(), &domain.CreateTournamentRequest{Name: "x"})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
		assert.Empty(t, repo.items)
	})

	t.Run("remote without id", func(t *testing.T) {
		bracket := &mockBracket{}
		bracket.On("CreateTournament", mock.Anything, mock.Anything).Return(&domain.RemoteTournament{Name: "x"}, nil)

		_, err := newTestTournaments(newFakeTournamentRepo(), bracket).Create(context.Background(), &domain.CreateTournamentRequest{Name: "x"})
		assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	})

	t.Run("duplicate mirror", func(t *testing.T) {
		repo := newFakeTournamentRepo(ongoingTournament())
		bracket := &mockBracket{}
		bracket.On("CreateTournament", mock.Anything, mock.Anything).Return(&domain.RemoteTournament{ID: "t1", State: "pending"}, nil)

		_, err := newTestTournaments(repo, bracket).Create(context.Background(), &domain.CreateTournamentRequest{Name: "x"})
		assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	})

	t.Run("missing name", func(t *testing.T) {
		bracket := &mockBracket{}
		_, err := newTestTournaments(newFakeTournamentRepo(), bracket).Create(context.Background(), &domain.CreateTournamentRequest{})
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		bracket.AssertNotCalled(t, "CreateTournament", mock.Anything, mock.Anything)
	})
}

func TestTournamentAddParticipant(t *testing.T) {
	pending := ongoingTournament()
	pending.State = domain.StateToBeStarted
	pending.Participants = nil
	repo := newFakeTournamentRepo(pending)

	bracket := &mockBracket{}
	bracket.On("AddParticipant", mock.Anything, domain.ProviderID("t1"), "Red").
		Return(&domain.Participant{ID: "11", TournamentID: "t1", Name: "Red"}, nil)

	svc := newTestTournaments(repo, bracket)
	participant, err := svc.AddParticipant(context.Background(), "t1", "Red")

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderID("11"), participant.ID)
	assert.Equal(t, []domain.Participant{{ID: "11", TournamentID: "t1", Name: "Red"}}, repo.get("t1").Participants)
}

func TestTournamentAddParticipant_RejectedOnceStarted(t *testing.T) {
	repo := newFakeTournamentRepo(ongoingTournament())
	bracket := &mockBracket{}

	_, err := newTestTournaments(repo, bracket).AddParticipant(context.Background(), "t1", "Green")

	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	bracket.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, repo.get("t1").Participants, 2)
}

func TestTournamentStart(t *testing.T) {
	pending := ongoingTournament()
	pending.State = domain.StateToBeStarted
	repo := newFakeTournamentRepo(pending)

	bracket := &mockBracket{}
	bracket.On("StartTournament", mock.Anything, domain.ProviderID("t1")).
		Return(&domain.RemoteTournament{ID: "t1", State: "underway"}, nil)

	started, err := newTestTournaments(repo, bracket).Start(context.Background(), "t1")

	require.NoError(t, err)
	assert.Equal(t, domain.StateOngoing, started.State)
	assert.NotNil(t, started.StartedAt)
	assert.Equal(t, domain.StateOngoing, repo.get("t1").State)
}

func TestTournamentStart_UnknownTournamentSkipsProvider(t *testing.T) {
	bracket := &mockBracket{}

	_, err := newTestTournaments(newFakeTournamentRepo(), bracket).Start(context.Background(), "nope")

	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	bracket.AssertNotCalled(t, "StartTournament", mock.Anything, mock.Anything)
}

func TestTournamentStart_FinishedTournamentIsConflict(t *testing.T) {
	finished := ongoingTournament()
	finished.State = domain.StateFinished
	bracket := &mockBracket{}

	_, err := newTestTournaments(newFakeTournamentRepo(finished), bracket).Start(context.Background(), "t1")

	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	bracket.AssertNotCalled(t, "StartTournament", mock.Anything, mock.Anything)
}

func TestTournamentStart_ProviderFailureKeepsState(t *testing.T) {
	pending := ongoingTournament()
	pending.State = domain.StateToBeStarted
	repo := newFakeTournamentRepo(pending)

	bracket := &mockBracket{}
	bracket.On("StartTournament", mock.Anything, domain.ProviderID("t1")).
		Return(nil, errors.FromProviderFailure("challonge", 422, "not enough participants", nil))

	_, err := newTestTournaments(repo, bracket).Start(context.Background(), "t1")

	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	assert.Equal(t, domain.StateToBeStarted, repo.get("t1").State)
}

func TestTournamentListByStatus(t *testing.T) {
	finished := ongoingTournament()
	finished.ID = "t2"
	finished.State = domain.StateFinished
	svc := newTestTournaments(newFakeTournamentRepo(ongoingTournament(), finished), &mockBracket{})

	ongoing, err := svc.ListByStatus(context.Background(), "ongoing")
	require.NoError(t, err)
	require.Len(t, ongoing, 1)
	assert.Equal(t, domain.ProviderID("t1"), ongoing[0].ID)

	none, err := svc.ListByStatus(context.Background(), "to_be_started")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.ListByStatus(context.Background(), "underway")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTournamentListMatches(t *testing.T) {
	bracket := &mockBracket{}
	bracket.On("ListMatches", mock.Anything, domain.ProviderID("t1")).Return([]domain.Match{*openMatch()}, nil)

	matches, err := newTestTournaments(newFakeTournamentRepo(), bracket).ListMatches(context.Background(), "t1")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, domain.ProviderID("m1"), matches[0].ID)
}
