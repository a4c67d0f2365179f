package riot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
)

const providerName = "ranking provider"

const hostPlaceholder = "{host}"

const maxLoggedBody = 2048

// Config holds the connection settings for the ranking provider.
// BaseURL contains a {host} placeholder replaced by a platform or routing value.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the ranking provider's regional REST APIs
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new ranking provider client
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + hostPlaceholder + ".api.riotgames.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.Named("riot"),
	}
}

// SummonerByName looks up a summoner on a platform
func (c *Client) SummonerByName(ctx context.Context, region, name string) (*domain.Summoner, error) {
	var summoner domain.Summoner
	path := "/lol/summoner/v4/summoners/by-name/" + url.PathEscape(name)
	if err := c.get(ctx, region, path, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// LeagueEntriesBySummoner returns the ranked standings of a summoner
func (c *Client) LeagueEntriesBySummoner(ctx context.Context, region, summonerID string) ([]domain.LeagueEntry, error) {
	entries := []domain.LeagueEntry{}
	path := "/lol/league/v4/entries/by-summoner/" + url.PathEscape(summonerID)
	if err := c.get(ctx, region, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// LeagueByID returns the full league document
func (c *Client) LeagueByID(ctx context.Context, region, leagueID string) (json.RawMessage, error) {
	return c.getRaw(ctx, region, "/lol/league/v4/leagues/"+url.PathEscape(leagueID))
}

// ClashTournaments returns active and upcoming clash tournaments
func (c *Client) ClashTournaments(ctx context.Context, region string) (json.RawMessage, error) {
	return c.getRaw(ctx, region, "/lol/clash/v1/tournaments")
}

// ClashPlayersBySummoner returns the clash registrations of a summoner
func (c *Client) ClashPlayersBySummoner(ctx context.Context, region, summonerID string) ([]domain.ClashPlayer, error) {
	players := []domain.ClashPlayer{}
	path := "/lol/clash/v1/players/by-summoner/" + url.PathEscape(summonerID)
	if err := c.get(ctx, region, path, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// ClashTeam returns a clash team
func (c *Client) ClashTeam(ctx context.Context, region, teamID string) (json.RawMessage, error) {
	return c.getRaw(ctx, region, "/lol/clash/v1/teams/"+url.PathEscape(teamID))
}

// ClashTournamentByTeam returns the clash tournament a team is registered for
func (c *Client) ClashTournamentByTeam(ctx context.Context, region, teamID string) (json.RawMessage, error) {
	return c.getRaw(ctx, region, "/lol/clash/v1/tournaments/by-team/"+url.PathEscape(teamID))
}

// MatchIDsByPUUID lists recent match IDs on a routing host
func (c *Client) MatchIDsByPUUID(ctx context.Context, routing, puuid string, start, count int) ([]string, error) {
	ids := []string{}
	query := url.Values{}
	query.Set("start", strconv.Itoa(start))
	query.Set("count", strconv.Itoa(count))
	path := "/lol/match/v5/matches/by-puuid/" + url.PathEscape(puuid) + "/ids?" + query.Encode()
	if err := c.get(ctx, routing, path, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MatchByID returns one match document from a routing host
func (c *Client) MatchByID(ctx context.Context, routing, matchID string) (json.RawMessage, error) {
	return c.getRaw(ctx, routing, "/lol/match/v5/matches/"+url.PathEscape(matchID))
}

// RegisterProvider registers a tournament callback URL and returns the provider ID
func (c *Client) RegisterProvider(ctx context.Context, region, callbackURL string) (json.RawMessage, error) {
	body := map[string]string{
		"region": strings.ToUpper(region),
		"url":    callbackURL,
	}
	return c.postRaw(ctx, region, "/lol/tournament/v5/providers", body)
}

// RegisterTournament registers a tournament under a provider and returns its ID
func (c *Client) RegisterTournament(ctx context.Context, region string, providerID int64, name string) (json.RawMessage, error) {
	body := map[string]interface{}{
		"name":       name,
		"providerId": providerID,
	}
	return c.postRaw(ctx, region, "/lol/tournament/v5/tournaments", body)
}

// CreateTournamentCodes generates lobby codes for a registered tournament
func (c *Client) CreateTournamentCodes(ctx context.Context, req domain.TournamentCodeRequest) (json.RawMessage, error) {
	count := req.Count
	if count <= 0 {
		count = 1
	}
	query := url.Values{}
	query.Set("tournamentId", strconv.FormatInt(req.TournamentID, 10))
	query.Set("count", strconv.Itoa(count))

	body := map[string]interface{}{
		"teamSize":      req.TeamSize,
		"mapType":       req.MapType,
		"pickType":      req.PickType,
		"spectatorType": req.SpectatorType,
	}
	return c.postRaw(ctx, req.Region, "/lol/tournament/v5/codes?"+query.Encode(), body)
}

func (c *Client) get(ctx context.Context, host, path string, out interface{}) error {
	raw, err := c.do(ctx, http.MethodGet, host, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"path":          path,
			"response_body": truncate(raw),
		}).Error("Failed to parse ranking provider response")
		return errors.NewExternalError("ranking provider returned an unreadable response", err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, host, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, host, path, nil)
}

func (c *Client) postRaw(ctx context.Context, host, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, host, path, body)
}

// baseURL substitutes the host into the template, lowercased as the provider expects
func (c *Client) baseURL(host string) string {
	return strings.Replace(c.config.BaseURL, hostPlaceholder, strings.ToLower(host), 1)
}

// do sends one request with the token header and returns the raw 2xx body
func (c *Client) do(ctx context.Context, method, host, path string, body interface{}) (json.RawMessage, error) {
	if !validHost(host) {
		return nil, errors.NewValidationError("Invalid region", map[string]interface{}{"region": host})
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errors.NewInternalError("failed to encode request", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL(host)+path, reader)
	if err != nil {
		return nil, errors.NewInternalError("failed to create request", err)
	}
	req.Header.Set("X-Riot-Token", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.WithFields(map[string]interface{}{
		"method": method,
		"host":   host,
		"path":   pathWithoutQuery(path),
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Ranking provider request failed")
		return nil, errors.FromProviderFailure(providerName, 0, "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Error("Failed to read ranking provider response")
		return nil, errors.FromProviderFailure(providerName, resp.StatusCode, "", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		log.Debug("Ranking provider resource not found")
		return nil, errors.NewNotFoundError("Resource not found at ranking provider").
			WithDetail("provider_status", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := truncate(respBody)
		log.WithFields(map[string]interface{}{
			"status_code":   resp.StatusCode,
			"response_body": snippet,
		}).Error("Ranking provider returned an error")
		return nil, errors.FromProviderFailure(providerName, resp.StatusCode, snippet, nil)
	}

	log.WithFields(map[string]interface{}{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).String(),
	}).Debug("Ranking provider request succeeded")

	return json.RawMessage(respBody), nil
}

// validHost keeps user supplied regions from rewriting the request host
func validHost(host string) bool {
	if host == "" || len(host) > 16 {
		return false
	}
	for _, r := range host {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func pathWithoutQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func truncate(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}
	return string(body[:maxLoggedBody]) + "..."
}

// String omits the API key
func (c Config) String() string {
	return fmt.Sprintf("riot.Config{BaseURL: %q, Timeout: %s}", c.BaseURL, c.Timeout)
}
