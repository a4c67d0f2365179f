package domain

import (
	"encoding/json"
	"strings"
)

// Summoner is the ranking provider's player profile
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// LeagueEntry is one ranked queue standing for a summoner
type LeagueEntry struct {
	LeagueID     string `json:"leagueId"`
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName,omitempty"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	Veteran      bool   `json:"veteran"`
	FreshBlood   bool   `json:"freshBlood"`
	Inactive     bool   `json:"inactive"`
}

// ClashPlayer links a summoner to a clash team
type ClashPlayer struct {
	SummonerID string `json:"summonerId"`
	TeamID     string `json:"teamId"`
	Position   string `json:"position"`
	Role       string `json:"role"`
}

// MatchFetchError records a single match that could not be retrieved
type MatchFetchError struct {
	MatchID string `json:"match_id"`
	Error   string `json:"error"`
}

// MatchHistory holds every match that could be fetched plus the ones that failed
type MatchHistory struct {
	Matches []json.RawMessage `json:"matches"`
	Errors  []MatchFetchError `json:"errors"`
}

// CompareTeamsRequest lists the summoner names of two teams in one region
type CompareTeamsRequest struct {
	Team1Usernames []string `json:"team1Usernames" validate:"required,min=1,max=10,dive,required"`
	Team2Usernames []string `json:"team2Usernames" validate:"required,min=1,max=10,dive,required"`
	Region         string   `json:"region" validate:"required"`
}

// TeamComparison is the average rank score of each team
type TeamComparison struct {
	Team1Score float64 `json:"team1Score"`
	Team2Score float64 `json:"team2Score"`
}

// TournamentCodeRequest asks the ranking provider for lobby codes
type TournamentCodeRequest struct {
	TournamentID  int64  `json:"tournamentId" validate:"required"`
	TeamSize      int    `json:"teamSize" validate:"required,min=1,max=5"`
	MapType       string `json:"mapType" validate:"required"`
	PickType      string `json:"pickType" validate:"required"`
	SpectatorType string `json:"spectatorType" validate:"required"`
	Region        string `json:"region" validate:"required"`
	Count         int    `json:"count,omitempty" validate:"gte=0,lte=1000"`
}

var tierScores = map[string]int{
	"IRON":        1,
	"BRONZE":      2,
	"SILVER":      3,
	"GOLD":        4,
	"PLATINUM":    5,
	"DIAMOND":     6,
	"MASTER":      7,
	"GRANDMASTER": 8,
	"CHALLENGER":  9,
}

var divisionScores = map[string]int{
	"IV":  0,
	"III": 1,
	"II":  2,
	"I":   3,
}

// RankScore converts a tier and division into a comparable number.
// Unknown tiers or divisions count as zero.
func RankScore(tier, division string) int {
	return tierScores[strings.ToUpper(tier)]*4 + divisionScores[strings.ToUpper(division)]
}

// Routing values for the ranking provider's regional match endpoints
const (
	RoutingAmericas = "americas"
	RoutingAsia     = "asia"
	RoutingEurope   = "europe"
	RoutingSEA      = "sea"
)

var regionRouting = map[string]string{
	"na":   RoutingAmericas,
	"na1":  RoutingAmericas,
	"br":   RoutingAmericas,
	"br1":  RoutingAmericas,
	"lan":  RoutingAmericas,
	"la1":  RoutingAmericas,
	"las":  RoutingAmericas,
	"la2":  RoutingAmericas,
	"kr":   RoutingAsia,
	"jp":   RoutingAsia,
	"jp1":  RoutingAsia,
	"eune": RoutingEurope,
	"eun1": RoutingEurope,
	"euw":  RoutingEurope,
	"euw1": RoutingEurope,
	"tr":   RoutingEurope,
	"tr1":  RoutingEurope,
	"ru":   RoutingEurope,
	"oce":  RoutingSEA,
	"oc1":  RoutingSEA,
}

// RoutingForRegion maps a platform region to its routing value, defaulting to europe
func RoutingForRegion(region string) string {
	if routing, ok := regionRouting[strings.ToLower(region)]; ok {
		return routing
	}
	return RoutingEurope
}
