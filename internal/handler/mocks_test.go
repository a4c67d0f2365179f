package handler

import (
	"context"
	"encoding/json"

	"bracket-bff/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockTournaments struct{ mock.Mock }

func (m *mockTournaments) Create(ctx context.Context, req *domain.CreateTournamentRequest) (*domain.Tournament, error) {
	args := m.Called(ctx, req)
	t, _ := args.Get(0).(*domain.Tournament)
	return t, args.Error(1)
}

func (m *mockTournaments) AddParticipant(ctx context.Context, tournamentID domain.ProviderID, name string) (*domain.Participant, error) {
	args := m.Called(ctx, tournamentID, name)
	p, _ := args.Get(0).(*domain.Participant)
	return p, args.Error(1)
}

func (m *mockTournaments) Start(ctx context.Context, tournamentID domain.ProviderID) (*domain.Tournament, error) {
	args := m.Called(ctx, tournamentID)
	t, _ := args.Get(0).(*domain.Tournament)
	return t, args.Error(1)
}

func (m *mockTournaments) ListByStatus(ctx context.Context, status string) ([]*domain.Tournament, error) {
	args := m.Called(ctx, status)
	t, _ := args.Get(0).([]*domain.Tournament)
	return t, args.Error(1)
}

func (m *mockTournaments) ListAll(ctx context.Context) ([]*domain.Tournament, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).([]*domain.Tournament)
	return t, args.Error(1)
}

func (m *mockTournaments) ListMatches(ctx context.Context, tournamentID domain.ProviderID) ([]domain.Match, error) {
	args := m.Called(ctx, tournamentID)
	matches, _ := args.Get(0).([]domain.Match)
	return matches, args.Error(1)
}

type mockScoring struct{ mock.Mock }

func (m *mockScoring) SubmitScore(ctx context.Context, req *domain.SubmitScoreRequest) (*domain.MatchOutcome, error) {
	args := m.Called(ctx, req)
	o, _ := args.Get(0).(*domain.MatchOutcome)
	return o, args.Error(1)
}

type mockRoster struct{ mock.Mock }

func (m *mockRoster) AddMember(ctx context.Context, req *domain.AddMemberRequest) (*domain.AddMemberResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*domain.AddMemberResult)
	return r, args.Error(1)
}

type mockRankingService struct{ mock.Mock }

func raw(args mock.Arguments) json.RawMessage {
	if s, ok := args.Get(0).(string); ok {
		return json.RawMessage(s)
	}
	return nil
}

func (m *mockRankingService) GetUserRank(ctx context.Context, username, region string) ([]domain.LeagueEntry, error) {
	args := m.Called(ctx, username, region)
	e, _ := args.Get(0).([]domain.LeagueEntry)
	return e, args.Error(1)
}

func (m *mockRankingService) GetLeagueDetails(ctx context.Context, leagueID, region string) (json.RawMessage, error) {
	args := m.Called(ctx, leagueID, region)
	return raw(args), args.Error(1)
}

func (m *mockRankingService) GetActiveUpcomingTournaments(ctx context.Context, region string) (json.RawMessage, error) {
	args := m.Called(ctx, region)
	return raw(args), args.Error(1)
}

func (m *mockRankingService) GetUsersInTournament(ctx context.Context, summonerID, region string) (json.RawMessage, error) {
	args := m.Called(ctx, summonerID, region)
	return raw(args), args.Error(1)
}

func (m *mockRankingService) GetMatchHistory(ctx context.Context, username, region string) (*domain.MatchHistory, error) {
	args := m.Called(ctx, username, region)
	h, _ := args.Get(0).(*domain.MatchHistory)
	return h, args.Error(1)
}

func (m *mockRankingService) CompareTeams(ctx context.Context, req *domain.CompareTeamsRequest) (*domain.TeamComparison, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*domain.TeamComparison)
	return c, args.Error(1)
}

func (m *mockRankingService) RegisterProvider(ctx context.Context, region, callbackURL string) (json.RawMessage, error) {
	args := m.Called(ctx, region, callbackURL)
	return raw(args), args.Error(1)
}

func (m *mockRankingService) RegisterTournament(ctx context.Context, region string, providerID int64, name string) (json.RawMessage, error) {
	args := m.Called(ctx, region, providerID, name)
	return raw(args), args.Error(1)
}

func (m *mockRankingService) GenerateTournamentCodes(ctx context.Context, req *domain.TournamentCodeRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	return raw(args), args.Error(1)
}
