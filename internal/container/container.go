package container

import (
	"net/http"

	"bracket-bff/internal/config"
	"bracket-bff/internal/handler"
	"bracket-bff/internal/middleware"
	"bracket-bff/internal/repository"
	"bracket-bff/internal/service"
	"bracket-bff/internal/service/challonge"
	"bracket-bff/internal/service/riot"
	"bracket-bff/pkg/database"
	"bracket-bff/pkg/logger"
	"bracket-bff/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Services     *service.Services
	Cache        *service.CacheService
}

// New wires the repositories and services. redisClient may be nil, in which case
// locking is in-process only and rank lookups are not cached.
func New(cfg *config.Config, log *logger.Logger, db *database.PostgresDB, redisClient *redis.Client) (*Container, error) {
	repos := &repository.Repositories{
		Tournament: repository.NewTournamentRepository(db),
		Team:       repository.NewTeamRepository(db),
	}

	var locker service.Locker
	if redisClient != nil {
		locker = service.NewRedisLocker(redisClient, cfg.LockTTL, log.Named("lock"))
		log.Info("Using Redis tournament locks")
	} else {
		locker = service.NewKeyedLocker()
		log.Info("Redis not configured, using in-process tournament locks")
	}

	bracket := challonge.NewClient(challonge.Config{
		APIKey:  cfg.ChallongeAPIKey,
		BaseURL: cfg.ChallongeBaseURL,
		Timeout: cfg.ProviderTimeout,
	}, log)
	ranking := riot.NewClient(riot.Config{
		APIKey:  cfg.RiotAPIKey,
		BaseURL: cfg.RiotBaseURL,
		Timeout: cfg.ProviderTimeout,
	}, log)

	cache := service.NewCacheService(redisClient, cfg.RankCacheTTL, log.Named("cache").Logger)

	services := &service.Services{
		Scoring:    service.NewScoringService(repos.Tournament, bracket, locker, log),
		Tournament: service.NewTournamentService(repos.Tournament, bracket, locker, log),
		Roster:     service.NewRosterService(repos.Team, locker, log),
		Ranking: service.NewRankingService(ranking, cache, service.RankingConfig{
			MatchHistoryCount:       cfg.MatchHistoryCount,
			MatchHistoryConcurrency: cfg.MatchHistoryConcurrency,
		}, log),
		Retention: service.NewRetentionService(repos.Tournament, cfg.RetentionWindow(), cfg.SweepHourUTC, log),
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
		Cache:        cache,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// AdminGuard returns the middleware protecting mutating routes
func (c *Container) AdminGuard() func(http.Handler) http.Handler {
	return middleware.AdminAuth(c.Config.AdminJWTSecret, c.Logger.Named("admin"))
}

// HealthHandler builds the health handler over the live connections
func (c *Container) HealthHandler() *handler.HealthHandler {
	var db, cache handler.HealthChecker
	if c.DB != nil {
		db = c.DB
	}
	if c.RedisClient != nil {
		cache = c.Cache
	}
	return handler.NewHealthHandler(db, cache, c.Logger)
}

// BracketHandler builds the /challonge handler
func (c *Container) BracketHandler() *handler.BracketHandler {
	return handler.NewBracketHandler(c.Services.Tournament, c.Services.Scoring, c.Services.Roster, c.Logger)
}

// RankingHandler builds the /riot handler
func (c *Container) RankingHandler() *handler.RankingHandler {
	return handler.NewRankingHandler(c.Services.Ranking, c.Logger)
}
