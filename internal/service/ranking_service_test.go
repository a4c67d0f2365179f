package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRanking(provider *mockRanking, cache *CacheService) RankingService {
	if cache == nil {
		cache = NewCacheService(nil, 0, nil)
	}
	return NewRankingService(provider, cache, RankingConfig{MatchHistoryCount: 3, MatchHistoryConcurrency: 2}, logger.NewNop())
}

func expectRank(provider *mockRanking, region, name, tier, division string) {
	summonerID := "sid-" + name
	provider.On("SummonerByName", mock.Anything, region, name).
		Return(&domain.Summoner{ID: summonerID, PUUID: "puuid-" + name, Name: name}, nil)

	var entries []domain.LeagueEntry
	if tier != "" {
		entries = []domain.LeagueEntry{{SummonerID: summonerID, Tier: tier, Rank: division}}
	}
	provider.On("LeagueEntriesBySummoner", mock.Anything, region, summonerID).Return(entries, nil)
}

func TestGetUserRank_CachedAfterFirstLookup(t *testing.T) {
	mr, cache := setupCache(t)
	provider := &mockRanking{}
	expectRank(provider, "euw1", "Faker", "CHALLENGER", "I")
	svc := newTestRanking(provider, cache)

	entries, err := svc.GetUserRank(context.Background(), "Faker", "euw1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CHALLENGER", entries[0].Tier)

	key := cache.RankKey("euw1", "Faker")
	assert.Eventually(t, func() bool { return mr.Exists(key) }, time.Second, 10*time.Millisecond)

	_, err = svc.GetUserRank(context.Background(), "faker", "EUW1")
	require.NoError(t, err)
	provider.AssertNumberOfCalls(t, "SummonerByName", 1)
}

func TestGetUserRank_ProviderNotFound(t *testing.T) {
	provider := &mockRanking{}
	provider.On("SummonerByName", mock.Anything, "na1", "ghost").
		Return(nil, errors.NewNotFoundError("riot resource not found"))

	_, err := newTestRanking(provider, nil).GetUserRank(context.Background(), "ghost", "na1")

	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	provider.AssertNotCalled(t, "LeagueEntriesBySummoner", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUserRank_RequiresUsernameAndRegion(t *testing.T) {
	provider := &mockRanking{}
	_, err := newTestRanking(provider, nil).GetUserRank(context.Background(), "", "na1")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	provider.AssertNotCalled(t, "SummonerByName", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMatchHistory_KeepsPartialFailures(t *testing.T) {
	provider := &mockRanking{}
	provider.On("SummonerByName", mock.Anything, "kr", "Deft").
		Return(&domain.Summoner{ID: "s1", PUUID: "p1"}, nil)
	provider.On("MatchIDsByPUUID", mock.Anything, domain.RoutingAsia, "p1", 0, 3).
		Return([]string{"KR_1", "KR_2", "KR_3"}, nil)
	provider.On("MatchByID", mock.Anything, domain.RoutingAsia, "KR_1").Return(`{"id":"KR_1"}`, nil)
	provider.On("MatchByID", mock.Anything, domain.RoutingAsia, "KR_2").
		Return(nil, errors.FromProviderFailure("riot", 503, "", nil))
	provider.On("MatchByID", mock.Anything, domain.RoutingAsia, "KR_3").Return(`{"id":"KR_3"}`, nil)

	history, err := newTestRanking(provider, nil).GetMatchHistory(context.Background(), "Deft", "kr")

	require.NoError(t, err)
	require.Len(t, history.Matches, 2)
	assert.JSONEq(t, `{"id":"KR_1"}`, string(history.Matches[0]))
	assert.JSONEq(t, `{"id":"KR_3"}`, string(history.Matches[1]))
	require.Len(t, history.Errors, 1)
	assert.Equal(t, "KR_2", history.Errors[0].MatchID)
	assert.NotEmpty(t, history.Errors[0].Error)
}

func TestGetMatchHistory_NoMatches(t *testing.T) {
	provider := &mockRanking{}
	provider.On("SummonerByName", mock.Anything, "euw1", "New").Return(&domain.Summoner{PUUID: "p"}, nil)
	provider.On("MatchIDsByPUUID", mock.Anything, domain.RoutingEurope, "p", 0, 3).Return([]string{}, nil)

	history, err := newTestRanking(provider, nil).GetMatchHistory(context.Background(), "New", "euw1")

	require.NoError(t, err)
	out, err := json.Marshal(history)
	require.NoError(t, err)
	assert.JSONEq(t, `{"matches":[],"errors":[]}`, string(out))
}

func TestCompareTeams_AveragesFirstEntry(t *testing.T) {
	provider := &mockRanking{}
	expectRank(provider, "na1", "a", "GOLD", "I")
	expectRank(provider, "na1", "b", "SILVER", "IV")
	expectRank(provider, "na1", "c", "", "")

	comparison, err := newTestRanking(provider, nil).CompareTeams(context.Background(), &domain.CompareTeamsRequest{
		Team1Usernames: []string{"a", "b"},
		Team2Usernames: []string{"c"},
		Region:         "na1",
	})

	require.NoError(t, err)
	assert.InDelta(t, (19.0+12.0)/2, comparison.Team1Score, 1e-9)
	assert.Zero(t, comparison.Team2Score)
}

func TestCompareTeams_FailsWhenAPlayerCannotBeResolved(t *testing.T) {
	provider := &mockRanking{}
	expectRank(provider, "na1", "a", "GOLD", "I")
	provider.On("SummonerByName", mock.Anything, "na1", "missing").
		Return(nil, errors.NewNotFoundError("riot resource not found"))

	_, err := newTestRanking(provider, nil).CompareTeams(context.Background(), &domain.CompareTeamsRequest{
		Team1Usernames: []string{"a"},
		Team2Usernames: []string{"missing"},
		Region:         "na1",
	})

	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestGetUsersInTournament_MergesTournamentDetails(t *testing.T) {
	provider := &mockRanking{}
	provider.On("ClashPlayersBySummoner", mock.Anything, "euw1", "s1").
		Return([]domain.ClashPlayer{{SummonerID: "s1", TeamID: "team-9"}}, nil)
	provider.On("ClashTeam", mock.Anything, "euw1", "team-9").
		Return(`{"id":"team-9","name":"Wolves","players":[]}`, nil)
	provider.On("ClashTournamentByTeam", mock.Anything, "euw1", "team-9").
		Return(`{"id":77,"nameKey":"spring"}`, nil)

	out, err := newTestRanking(provider, nil).GetUsersInTournament(context.Background(), "s1", "euw1")

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"team-9","name":"Wolves","players":[],"tournamentDetails":{"id":77,"nameKey":"spring"}}`, string(out))
}

func TestGetUsersInTournament_NotInTeam(t *testing.T) {
	provider := &mockRanking{}
	provider.On("ClashPlayersBySummoner", mock.Anything, "euw1", "s1").Return([]domain.ClashPlayer{}, nil)

	_, err := newTestRanking(provider, nil).GetUsersInTournament(context.Background(), "s1", "euw1")

	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	provider.AssertNotCalled(t, "ClashTeam", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterProvider_ValidatesCallback(t *testing.T) {
	provider := &mockRanking{}
	provider.On("RegisterProvider", mock.Anything, "na", "https://example.test/callback").Return(`1234`, nil)
	svc := newTestRanking(provider, nil)

	out, err := svc.RegisterProvider(context.Background(), "na", "https://example.test/callback")
	require.NoError(t, err)
	assert.Equal(t, "1234", string(out))

	_, err = svc.RegisterProvider(context.Background(), "na", "not a url")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestGenerateTournamentCodes_DefaultsToOneCode(t *testing.T) {
	provider := &mockRanking{}
	provider.On("CreateTournamentCodes", mock.Anything, mock.MatchedBy(func(req domain.TournamentCodeRequest) bool {
		return req.Count == 1 && req.TournamentID == 55
	})).Return(`["NA-CODE-1"]`, nil)

	out, err := newTestRanking(provider, nil).GenerateTournamentCodes(context.Background(), &domain.TournamentCodeRequest{
		TournamentID:  55,
		TeamSize:      5,
		MapType:       "SUMMONERS_RIFT",
		PickType:      "TOURNAMENT_DRAFT",
		SpectatorType: "ALL",
		Region:        "na",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `["NA-CODE-1"]`, string(out))
}
