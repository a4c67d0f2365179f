package challonge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bracket-bff/internal/domain"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
)

const providerName = "bracket provider"

// maxLoggedBody caps how much of a provider response ends up in logs and error details
const maxLoggedBody = 2048

// Config holds the connection settings for the bracket provider
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the bracket provider's REST API
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new bracket provider client
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.Named("challonge"),
	}
}

type tournamentEnvelope struct {
	Tournament domain.RemoteTournament `json:"tournament"`
}

type participantEnvelope struct {
	Participant domain.Participant `json:"participant"`
}

type matchEnvelope struct {
	Match domain.Match `json:"match"`
}

// CreateTournament creates a remote tournament
func (c *Client) CreateTournament(ctx context.Context, details domain.RemoteDetails) (*domain.RemoteTournament, error) {
	var resp tournamentEnvelope
	body := map[string]interface{}{"tournament": details}
	if err := c.do(ctx, http.MethodPost, "/tournaments.json", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Tournament, nil
}

// AddParticipant registers a new entrant
func (c *Client) AddParticipant(ctx context.Context, tournamentID domain.ProviderID, name string) (*domain.Participant, error) {
	var resp participantEnvelope
	body := map[string]interface{}{"participant": map[string]string{"name": name}}
	path := fmt.Sprintf("/tournaments/%s/participants.json", url.PathEscape(tournamentID.String()))
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Participant, nil
}

// StartTournament starts the remote tournament and returns its new remote state
func (c *Client) StartTournament(ctx context.Context, tournamentID domain.ProviderID) (*domain.RemoteTournament, error) {
	var resp tournamentEnvelope
	path := fmt.Sprintf("/tournaments/%s/start.json", url.PathEscape(tournamentID.String()))
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Tournament, nil
}

// ListMatches returns every match of a tournament
func (c *Client) ListMatches(ctx context.Context, tournamentID domain.ProviderID) ([]domain.Match, error) {
	var resp []matchEnvelope
	path := fmt.Sprintf("/tournaments/%s/matches.json", url.PathEscape(tournamentID.String()))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.Match, len(resp))
	for i := range resp {
		matches[i] = resp[i].Match
	}
	return matches, nil
}

// UpdateMatch writes scores and optionally the winner of a match
func (c *Client) UpdateMatch(ctx context.Context, tournamentID, matchID domain.ProviderID, update domain.MatchUpdate) (*domain.Match, error) {
	var resp matchEnvelope
	body := map[string]interface{}{"match": update}
	path := fmt.Sprintf("/tournaments/%s/matches/%s.json",
		url.PathEscape(tournamentID.String()), url.PathEscape(matchID.String()))
	if err := c.do(ctx, http.MethodPut, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Match, nil
}

// do sends one request with the api key attached and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternalError("failed to encode request", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	endpoint := c.config.BaseURL + path + "?api_key=" + url.QueryEscape(c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.NewInternalError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.WithFields(map[string]interface{}{
		"method": method,
		"path":   path,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Bracket provider request failed")
		return errors.FromProviderFailure(providerName, 0, "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Error("Failed to read bracket provider response")
		return errors.FromProviderFailure(providerName, resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := truncate(respBody)
		log.WithFields(map[string]interface{}{
			"status_code":   resp.StatusCode,
			"response_body": snippet,
		}).Error("Bracket provider returned an error")
		return errors.FromProviderFailure(providerName, resp.StatusCode, snippet, nil)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			log.WithFields(map[string]interface{}{
				"status_code":   resp.StatusCode,
				"response_body": truncate(respBody),
			}).Error("Failed to parse bracket provider response")
			return errors.NewExternalError("bracket provider returned an unreadable response", err)
		}
	}

	log.WithFields(map[string]interface{}{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).String(),
	}).Debug("Bracket provider request succeeded")

	return nil
}

func truncate(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}
	return string(body[:maxLoggedBody]) + "..."
}
