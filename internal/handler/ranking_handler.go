package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bracket-bff/internal/domain"
	"bracket-bff/internal/service"
	"bracket-bff/pkg/logger"
)

// RankingHandler serves the /riot routes
type RankingHandler struct {
	ranking service.RankingService
	logger  *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(ranking service.RankingService, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		ranking: ranking,
		logger:  log.Named("ranking_handler"),
	}
}

type registerProviderRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

type registerTournamentRequest struct {
	ProviderID     int64  `json:"providerId" validate:"required,gt=0"`
	TournamentName string `json:"tournamentName" validate:"required,max=100"`
}

// Routes mounts the ranking routes; admin guards the registration ones
func (h *RankingHandler) Routes(admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/user-rank/{riotUsername}/{region}", h.GetUserRank)
	r.Get("/league-details/{leagueId}/{region}", h.GetLeagueDetails)
	r.Get("/tournaments/{region}", h.GetActiveUpcomingTournaments)
	r.Get("/users-in-tournament/{summonerId}/{region}", h.GetUsersInTournament)
	r.Get("/match-history/{riotUsername}/{region}", h.GetMatchHistory)
	r.Post("/compare-teams", h.CompareTeams)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/register-provider/{region}", h.RegisterProvider)
		r.Post("/register-tournament/{region}", h.RegisterTournament)
		r.Post("/generate-tournament-codes", h.GenerateTournamentCodes)
	})

	return r
}

// GetUserRank handles GET /riot/user-rank/{riotUsername}/{region}
func (h *RankingHandler) GetUserRank(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ranking.GetUserRank(r.Context(), chi.URLParam(r, "riotUsername"), chi.URLParam(r, "region"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if entries == nil {
		entries = []domain.LeagueEntry{}
	}
	respondData(w, entries)
}

// GetLeagueDetails handles GET /riot/league-details/{leagueId}/{region}
func (h *RankingHandler) GetLeagueDetails(w http.ResponseWriter, r *http.Request) {
	league, err := h.ranking.GetLeagueDetails(r.Context(), chi.URLParam(r, "leagueId"), chi.URLParam(r, "region"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondData(w, league)
}

// GetActiveUpcomingTournaments handles GET /riot/tournaments/{region}
func (h *RankingHandler) GetActiveUpcomingTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.ranking.GetActiveUpcomingTournaments(r.Context(), chi.URLParam(r, "region"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondData(w, tournaments)
}

// GetUsersInTournament handles GET /riot/users-in-tournament/{summonerId}/{region}
func (h *RankingHandler) GetUsersInTournament(w http.ResponseWriter, r *http.Request) {
	team, err := h.ranking.GetUsersInTournament(r.Context(), chi.URLParam(r, "summonerId"), chi.URLParam(r, "region"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondData(w, team)
}

// GetMatchHistory handles GET /riot/match-history/{riotUsername}/{region}. The body is not enveloped.
func (h *RankingHandler) GetMatchHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.ranking.GetMatchHistory(r.Context(), chi.URLParam(r, "riotUsername"), chi.URLParam(r, "region"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// CompareTeams handles POST /riot/compare-teams
func (h *RankingHandler) CompareTeams(w http.ResponseWriter, r *http.Request) {
	var req domain.CompareTeamsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	comparison, err := h.ranking.CompareTeams(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, comparison)
}

// RegisterProvider handles POST /riot/register-provider/{region}
func (h *RankingHandler) RegisterProvider(w http.ResponseWriter, r *http.Request) {
	var req registerProviderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	providerID, err := h.ranking.RegisterProvider(r.Context(), chi.URLParam(r, "region"), req.URL)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]json.RawMessage{"providerId": providerID})
}

// RegisterTournament handles POST /riot/register-tournament/{region}
func (h *RankingHandler) RegisterTournament(w http.ResponseWriter, r *http.Request) {
	var req registerTournamentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	tournamentID, err := h.ranking.RegisterTournament(r.Context(), chi.URLParam(r, "region"), req.ProviderID, req.TournamentName)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]json.RawMessage{"tournamentId": tournamentID})
}

// GenerateTournamentCodes handles POST /riot/generate-tournament-codes
func (h *RankingHandler) GenerateTournamentCodes(w http.ResponseWriter, r *http.Request) {
	var req domain.TournamentCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	codes, err := h.ranking.GenerateTournamentCodes(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, codes)
}
