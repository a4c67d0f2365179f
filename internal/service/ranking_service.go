package service

import (
	"context"
	"encoding/json"
	"net/url"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMatchHistoryCount       = 20
	defaultMatchHistoryConcurrency = 5
)

// RankingConfig tunes the ranking pass-through
type RankingConfig struct {
	MatchHistoryCount       int
	MatchHistoryConcurrency int
}

// rankingService forwards ranking provider lookups, caching rank and league reads
type rankingService struct {
	provider RankingProvider
	cache    *CacheService
	config   RankingConfig
	logger   *logger.Logger
}

// NewRankingService creates a new ranking service
func NewRankingService(provider RankingProvider, cache *CacheService, cfg RankingConfig, log *logger.Logger) RankingService {
	if cfg.MatchHistoryCount <= 0 {
		cfg.MatchHistoryCount = defaultMatchHistoryCount
	}
	if cfg.MatchHistoryConcurrency <= 0 {
		cfg.MatchHistoryConcurrency = defaultMatchHistoryConcurrency
	}
	return &rankingService{
		provider: provider,
		cache:    cache,
		config:   cfg,
		logger:   log.Named("ranking"),
	}
}

// GetUserRank resolves the summoner and returns its league entries
func (s *rankingService) GetUserRank(ctx context.Context, username, region string) ([]domain.LeagueEntry, error) {
	if username == "" || region == "" {
		return nil, errors.NewValidationError("riotUsername and region are required", nil)
	}

	return GetWithCache(ctx, s.cache, s.cache.RankKey(region, username), func(ctx context.Context) ([]domain.LeagueEntry, error) {
		summoner, err := s.provider.SummonerByName(ctx, region, username)
		if err != nil {
			return nil, err
		}
		return s.provider.LeagueEntriesBySummoner(ctx, region, summoner.ID)
	})
}

// GetLeagueDetails returns a league document
func (s *rankingService) GetLeagueDetails(ctx context.Context, leagueID, region string) (json.RawMessage, error) {
	if leagueID == "" || region == "" {
		return nil, errors.NewValidationError("leagueId and region are required", nil)
	}

	return GetWithCache(ctx, s.cache, s.cache.LeagueKey(region, leagueID), func(ctx context.Context) (json.RawMessage, error) {
		return s.provider.LeagueByID(ctx, region, leagueID)
	})
}

// GetActiveUpcomingTournaments returns the region's clash schedule
func (s *rankingService) GetActiveUpcomingTournaments(ctx context.Context, region string) (json.RawMessage, error) {
	if region == "" {
		return nil, errors.NewValidationError("region is required", nil)
	}
	return s.provider.ClashTournaments(ctx, region)
}

// GetUsersInTournament returns the summoner's clash team with its tournament under tournamentDetails
func (s *rankingService) GetUsersInTournament(ctx context.Context, summonerID, region string) (json.RawMessage, error) {
	if summonerID == "" || region == "" {
		return nil, errors.NewValidationError("summonerId and region are required", nil)
	}

	players, err := s.provider.ClashPlayersBySummoner(ctx, region, summonerID)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 || players[0].TeamID == "" {
		return nil, errors.NewNotFoundError("Summoner is not registered in a clash team").
			WithDetail("summoner_id", summonerID)
	}
	teamID := players[0].TeamID

	var team, tournament json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		team, err = s.provider.ClashTeam(gctx, region, teamID)
		return err
	})
	g.Go(func() error {
		var err error
		tournament, err = s.provider.ClashTournamentByTeam(gctx, region, teamID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(team, &merged); err != nil {
		return nil, errors.NewExternalError("ranking provider returned an unreadable team", err)
	}
	merged["tournamentDetails"] = tournament

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode team", err)
	}
	return out, nil
}

// GetMatchHistory fetches match details with bounded concurrency. A failed match is
// reported in Errors and does not abort the others.
func (s *rankingService) GetMatchHistory(ctx context.Context, username, region string) (*domain.MatchHistory, error) {
	if username == "" || region == "" {
		return nil, errors.NewValidationError("riotUsername and region are required", nil)
	}

	summoner, err := s.provider.SummonerByName(ctx, region, username)
	if err != nil {
		return nil, err
	}

	routing := domain.RoutingForRegion(region)
	ids, err := s.provider.MatchIDsByPUUID(ctx, routing, summoner.PUUID, 0, s.config.MatchHistoryCount)
	if err != nil {
		return nil, err
	}

	matches := make([]json.RawMessage, len(ids))
	failures := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.config.MatchHistoryConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			matches[i], failures[i] = s.provider.MatchByID(ctx, routing, id)
			return nil
		})
	}
	_ = g.Wait()

	history := &domain.MatchHistory{
		Matches: make([]json.RawMessage, 0, len(ids)),
		Errors:  []domain.MatchFetchError{},
	}
	for i, id := range ids {
		if failures[i] != nil {
			history.Errors = append(history.Errors, domain.MatchFetchError{
				MatchID: id,
				Error:   errors.From(failures[i]).Message,
			})
			continue
		}
		history.Matches = append(history.Matches, matches[i])
	}

	if len(history.Errors) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"region":  region,
			"failed":  len(history.Errors),
			"fetched": len(history.Matches),
		}).Warn("Some matches could not be fetched")
	}

	return history, nil
}

// CompareTeams averages the rank score of each team's players.
// Only a player's first league entry counts and unranked players count as zero.
func (s *rankingService) CompareTeams(ctx context.Context, req *domain.CompareTeamsRequest) (*domain.TeamComparison, error) {
	if req == nil || len(req.Team1Usernames) == 0 || len(req.Team2Usernames) == 0 || req.Region == "" {
		return nil, errors.NewValidationError("team1Usernames, team2Usernames and region are required", nil)
	}

	var team1, team2 float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		team1, err = s.teamAverage(gctx, req.Team1Usernames, req.Region)
		return err
	})
	g.Go(func() error {
		var err error
		team2, err = s.teamAverage(gctx, req.Team2Usernames, req.Region)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.TeamComparison{Team1Score: team1, Team2Score: team2}, nil
}

func (s *rankingService) teamAverage(ctx context.Context, usernames []string, region string) (float64, error) {
	scores := make([]int, len(usernames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MatchHistoryConcurrency)
	for i, username := range usernames {
		g.Go(func() error {
			entries, err := s.GetUserRank(gctx, username, region)
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				scores[i] = domain.RankScore(entries[0].Tier, entries[0].Rank)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, score := range scores {
		total += score
	}
	return float64(total) / float64(len(usernames)), nil
}

// RegisterProvider registers a tournament callback URL
func (s *rankingService) RegisterProvider(ctx context.Context, region, callbackURL string) (json.RawMessage, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.NewValidationError("A valid callback url is required", map[string]interface{}{"url": callbackURL})
	}
	return s.provider.RegisterProvider(ctx, region, callbackURL)
}

// RegisterTournament registers a tournament under a provider
func (s *rankingService) RegisterTournament(ctx context.Context, region string, providerID int64, name string) (json.RawMessage, error) {
	if providerID <= 0 || name == "" {
		return nil, errors.NewValidationError("providerId and tournamentName are required", nil)
	}
	return s.provider.RegisterTournament(ctx, region, providerID, name)
}

// GenerateTournamentCodes creates lobby codes, one by default
func (s *rankingService) GenerateTournamentCodes(ctx context.Context, req *domain.TournamentCodeRequest) (json.RawMessage, error) {
	if req == nil || req.TournamentID <= 0 || req.Region == "" {
		return nil, errors.NewValidationError("tournamentId and region are required", nil)
	}
	codeReq := *req
	if codeReq.Count <= 0 {
		codeReq.Count = 1
	}
	return s.provider.CreateTournamentCodes(ctx, codeReq)
}
