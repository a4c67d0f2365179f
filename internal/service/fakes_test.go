package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/internal/repository"

	"github.com/stretchr/testify/mock"
)

// fakeTournamentRepo is an in-memory TournamentRepository
type fakeTournamentRepo struct {
	mu    sync.Mutex
	items map[domain.ProviderID]*domain.Tournament

	finishFailures int
	finishCalls    int
	finishErr      error
	listErr        error
	deleteErrs     map[domain.ProviderID]error
}

func newFakeTournamentRepo(tournaments ...*domain.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{
		items:      make(map[domain.ProviderID]*domain.Tournament),
		deleteErrs: make(map[domain.ProviderID]error),
	}
	for _, t := range tournaments {
		repo.items[t.ID] = cloneTournament(t)
	}
	return repo
}

func cloneTournament(t *domain.Tournament) *domain.Tournament {
	c := *t
	c.Participants = append([]domain.Participant{}, t.Participants...)
	return &c
}

func (r *fakeTournamentRepo) get(id domain.ProviderID) *domain.Tournament {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.items[id]; ok {
		return cloneTournament(t)
	}
	return nil
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *domain.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; ok {
		return repository.ErrAlreadyExists
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.items[t.ID] = cloneTournament(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error) {
	return r.get(id), nil
}

func (r *fakeTournamentRepo) ListByState(ctx context.Context, state domain.TournamentState) ([]*domain.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []*domain.Tournament{}
	for _, t := range r.items {
		if t.State == state {
			out = append(out, cloneTournament(t))
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) ListAll(ctx context.Context) ([]*domain.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []*domain.Tournament{}
	for _, t := range r.items {
		out = append(out, cloneTournament(t))
	}
	return out, nil
}

func (r *fakeTournamentRepo) AppendParticipant(ctx context.Context, id domain.ProviderID, p domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Participants = append(t.Participants, p)
	return nil
}

func (r *fakeTournamentRepo) MarkOngoing(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.State != domain.StateFinished {
		t.State = domain.StateOngoing
		if t.StartedAt == nil {
			now := time.Now()
			t.StartedAt = &now
		}
	}
	return cloneTournament(t), nil
}

func (r *fakeTournamentRepo) MarkFinished(ctx context.Context, id domain.ProviderID) (*domain.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishCalls++
	if r.finishFailures > 0 {
		r.finishFailures--
		return nil, r.finishErr
	}
	t, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.State = domain.StateFinished
	if t.CompletedAt == nil {
		now := time.Now()
		t.CompletedAt = &now
	}
	return cloneTournament(t), nil
}

func (r *fakeTournamentRepo) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []*domain.Tournament{}
	for _, t := range r.items {
		if t.State == domain.StateFinished && t.CompletedAt != nil && !t.CompletedAt.After(cutoff) {
			out = append(out, cloneTournament(t))
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id domain.ProviderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErrs[id]; err != nil {
		return err
	}
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// fakeTeamRepo is an in-memory TeamRepository that enforces the same rules as the SQL
type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[domain.ProviderID]*domain.Team
	count int64
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[domain.ProviderID]*domain.Team)}
}

func cloneTeam(t *domain.Team) *domain.Team {
	c := *t
	c.UserIDs = append([]string{}, t.UserIDs...)
	return &c
}

func (r *fakeTeamRepo) GetByTournament(ctx context.Context, tournamentID domain.ProviderID) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.teams[tournamentID]; ok {
		return cloneTeam(t), nil
	}
	return nil, nil
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.TournamentID]; ok {
		return repository.ErrAlreadyExists
	}
	r.count++
	team.ID = r.count
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	r.teams[team.TournamentID] = cloneTeam(team)
	return nil
}

func (r *fakeTeamRepo) AppendMember(ctx context.Context, tournamentID domain.ProviderID, userID string) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[tournamentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := t.CheckCanAdd(userID); err != nil {
		return nil, err
	}
	t.UserIDs = append(t.UserIDs, userID)
	return cloneTeam(t), nil
}

// mockBracket is a testify mock of BracketProvider
type mockBracket struct {
	mock.Mock
}

func (m *mockBracket) CreateTournament(ctx context.Context, details domain.RemoteDetails) (*domain.RemoteTournament, error) {
	args := m.Called(ctx, details)
	t, _ := args.Get(0).(*domain.RemoteTournament)
	return t, args.Error(1)
}

func (m *mockBracket) AddParticipant(ctx context.Context, tournamentID domain.ProviderID, name string) (*domain.Participant, error) {
	args := m.Called(ctx, tournamentID, name)
	p, _ := args.Get(0).(*domain.Participant)
	return p, args.Error(1)
}

func (m *mockBracket) StartTournament(ctx context.Context, tournamentID domain.ProviderID) (*domain.RemoteTournament, error) {
	args := m.Called(ctx, tournamentID)
	t, _ := args.Get(0).(*domain.RemoteTournament)
	return t, args.Error(1)
}

func (m *mockBracket) ListMatches(ctx context.Context, tournamentID domain.ProviderID) ([]domain.Match, error) {
	args := m.Called(ctx, tournamentID)
	matches, _ := args.Get(0).([]domain.Match)
	return matches, args.Error(1)
}

func (m *mockBracket) UpdateMatch(ctx context.Context, tournamentID, matchID domain.ProviderID, update domain.MatchUpdate) (*domain.Match, error) {
	args := m.Called(ctx, tournamentID, matchID, update)
	match, _ := args.Get(0).(*domain.Match)
	return match, args.Error(1)
}

// mockRanking is a testify mock of RankingProvider
type mockRanking struct {
	mock.Mock
}

func (m *mockRanking) SummonerByName(ctx context.Context, region, name string) (*domain.Summoner, error) {
	args := m.Called(ctx, region, name)
	s, _ := args.Get(0).(*domain.Summoner)
	return s, args.Error(1)
}

func (m *mockRanking) LeagueEntriesBySummoner(ctx context.Context, region, summonerID string) ([]domain.LeagueEntry, error) {
	args := m.Called(ctx, region, summonerID)
	entries, _ := args.Get(0).([]domain.LeagueEntry)
	return entries, args.Error(1)
}

func (m *mockRanking) LeagueByID(ctx context.Context, region, leagueID string) (json.RawMessage, error) {
	args := m.Called(ctx, region, leagueID)
	return rawArg(args, 0), args.Error(1)
}

func (m *mockRanking) ClashTournaments(ctx context.Context, region string) (json.RawMessage, error) {
	args := m.Called(ctx, region)
	return rawArg(args, 0), args.Error(1)
}

func (m *mockRanking) ClashPlayersBySummoner(ctx context.Context, region, summonerID string) ([]domain.ClashPlayer, error) {
	args := m.Called(ctx, region, summonerID)
	players, _ := args.Get(0).([]domain.ClashPlayer)
	return players, args.Error(1)
}

func (m *mockRanking) ClashTeam(ctx context.Context, region, teamID string) (json.RawMessage, error) {
	args := m.Called(ctx, region, teamID)
	return rawArg(args, 0), args.Error(1)
}

func (m *mockRanking) ClashTournamentByTeam(ctx context.Context, region, teamID string) (json.RawMessage, error) {
	args := m.Called(ctx, region, teamID)
	return rawArg(args, 0), args.Error(1)
}

func (m *mockRanking) MatchIDsByPUUID(ctx context.Context, routing, puuid string, start, count int) ([]string, error) {
	args := m.Called(ctx, routing, puuid, start, count)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockRanking) MatchByID(ctx context.Context, routing, matchID string) (json.RawMessage, error) {
	args := m.Called(ctx, routing, matchID)
	return rawArg(args, 0), args.Error(1)
}

func (m *mockRanking) RegisterProvider(ctx context.Context, region, callbackURL string) (json.RawMessage, error) {
	args := m.Called(ctx, region, callbackURL)
	return rawArg(args, 0), args.Error(1)
}

func (m *mockRanking) RegisterTournament(ctx context.Context, region string, providerID int64, name string) (json.RawMessage, error) {
	args := m.Called(ctx, region, providerID, name)
	return rawArg(args, 0), args.Error(1)
}

func (m *mockRanking) CreateTournamentCodes(ctx context.Context, req domain.TournamentCodeRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	return rawArg(args, 0), args.Error(1)
}

func rawArg(args mock.Arguments, i int) json.RawMessage {
	switch v := args.Get(i).(type) {
	case json.RawMessage:
		return v
	case string:
		return json.RawMessage(v)
	}
	return nil
}
