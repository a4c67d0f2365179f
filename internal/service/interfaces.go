package service

import (
	"context"
	"encoding/json"

	"bracket-bff/internal/domain"
)

// BracketProvider defines the calls made to the bracket provider
type BracketProvider interface {
	// CreateTournament creates a remote tournament
	CreateTournament(ctx context.Context, details domain.RemoteDetails) (*domain.RemoteTournament, error)

	// AddParticipant registers an entrant on a remote tournament
	AddParticipant(ctx context.Context, tournamentID domain.ProviderID, name string) (*domain.Participant, error)

	// StartTournament starts a remote tournament
	StartTournament(ctx context.Context, tournamentID domain.ProviderID) (*domain.RemoteTournament, error)

	// ListMatches returns the matches of a remote tournament
	ListMatches(ctx context.Context, tournamentID domain.ProviderID) ([]domain.Match, error)

	// UpdateMatch writes scores and optionally the winner of a match
	UpdateMatch(ctx context.Context, tournamentID, matchID domain.ProviderID, update domain.MatchUpdate) (*domain.Match, error)
}

// RankingProvider defines the calls made to the ranking provider
type RankingProvider interface {
	SummonerByName(ctx context.Context, region, name string) (*domain.Summoner, error)
	LeagueEntriesBySummoner(ctx context.Context, region, summonerID string) ([]domain.LeagueEntry, error)
	LeagueByID(ctx context.Context, region, leagueID string) (json.RawMessage, error)
	ClashTournaments(ctx context.Context, region string) (json.RawMessage, error)
	ClashPlayersBySummoner(ctx context.Context, region, summonerID string) ([]domain.ClashPlayer, error)
	ClashTeam(ctx context.Context, region, teamID string) (json.RawMessage, error)
	ClashTournamentByTeam(ctx context.Context, region, teamID string) (json.RawMessage, error)
	MatchIDsByPUUID(ctx context.Context, routing, puuid string, start, count int) ([]string, error)
	MatchByID(ctx context.Context, routing, matchID string) (json.RawMessage, error)
	RegisterProvider(ctx context.Context, region, callbackURL string) (json.RawMessage, error)
	RegisterTournament(ctx context.Context, region string, providerID int64, name string) (json.RawMessage, error)
	CreateTournamentCodes(ctx context.Context, req domain.TournamentCodeRequest) (json.RawMessage, error)
}

// ScoringService defines score ingestion and win detection
type ScoringService interface {
	// SubmitScore forwards a score submission and closes the match once a participant wins
	SubmitScore(ctx context.Context, req *domain.SubmitScoreRequest) (*domain.MatchOutcome, error)
}

// TournamentService defines the tournament lifecycle operations
type TournamentService interface {
	Create(ctx context.Context, req *domain.CreateTournamentRequest) (*domain.Tournament, error)
	AddParticipant(ctx context.Context, tournamentID domain.ProviderID, name string) (*domain.Participant, error)
	Start(ctx context.Context, tournamentID domain.ProviderID) (*domain.Tournament, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.Tournament, error)
	ListAll(ctx context.Context) ([]*domain.Tournament, error)
	ListMatches(ctx context.Context, tournamentID domain.ProviderID) ([]domain.Match, error)
}

// RosterService defines team formation
type RosterService interface {
	// AddMember adds a user to the tournament's team, creating the team on first use
	AddMember(ctx context.Context, req *domain.AddMemberRequest) (*domain.AddMemberResult, error)
}

// RankingService defines the ranking provider pass-through operations
type RankingService interface {
	GetUserRank(ctx context.Context, username, region string) ([]domain.LeagueEntry, error)
	GetLeagueDetails(ctx context.Context, leagueID, region string) (json.RawMessage, error)
	GetActiveUpcomingTournaments(ctx context.Context, region string) (json.RawMessage, error)
	GetUsersInTournament(ctx context.Context, summonerID, region string) (json.RawMessage, error)
	GetMatchHistory(ctx context.Context, username, region string) (*domain.MatchHistory, error)
	CompareTeams(ctx context.Context, req *domain.CompareTeamsRequest) (*domain.TeamComparison, error)
	RegisterProvider(ctx context.Context, region, callbackURL string) (json.RawMessage, error)
	RegisterTournament(ctx context.Context, region string, providerID int64, name string) (json.RawMessage, error)
	GenerateTournamentCodes(ctx context.Context, req *domain.TournamentCodeRequest) (json.RawMessage, error)
}

// RetentionService defines the scheduled cleanup of finished tournaments
type RetentionService interface {
	// Start begins the daily schedule
	Start(ctx context.Context) error

	// Stop ends the schedule and waits for a running sweep
	Stop(ctx context.Context) error

	// Sweep deletes expired tournaments once
	Sweep(ctx context.Context) *SweepResult
}

// Services aggregates all service interfaces
type Services struct {
	Scoring    ScoringService
	Tournament TournamentService
	Roster     RosterService
	Ranking    RankingService
	Retention  RetentionService
}
