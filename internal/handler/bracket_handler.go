package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bracket-bff/internal/domain"
	"bracket-bff/internal/service"
	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"
)

// BracketHandler serves the /challonge routes
type BracketHandler struct {
	tournaments service.TournamentService
	scoring     service.ScoringService
	roster      service.RosterService
	logger      *logger.Logger
}

// NewBracketHandler creates a new bracket handler
func NewBracketHandler(tournaments service.TournamentService, scoring service.ScoringService, roster service.RosterService, log *logger.Logger) *BracketHandler {
	return &BracketHandler{
		tournaments: tournaments,
		scoring:     scoring,
		roster:      roster,
		logger:      log.Named("bracket_handler"),
	}
}

type addParticipantRequest struct {
	TournamentID    domain.ProviderID `json:"tournamentId" validate:"required"`
	ParticipantName string            `json:"participantName" validate:"required,max=255"`
}

type startTournamentRequest struct {
	TournamentID domain.ProviderID `json:"tournamentId" validate:"required"`
}

// Routes mounts the bracket routes; admin guards the mutating ones
func (h *BracketHandler) Routes(admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/tournament/{tournamentId}/matches", h.ListMatches)
	r.Get("/tournaments/{status}", h.ListByStatus)
	r.Get("/all-tournaments", h.ListAll)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/create-tournament", h.CreateTournament)
		r.Post("/add-participant", h.AddParticipant)
		r.Post("/start-tournament", h.StartTournament)
		r.Post("/add-user-in-team", h.AddUserInTeam)
		r.Post("/add-match-score", h.AddMatchScore)
	})

	return r
}

// CreateTournament handles POST /challonge/create-tournament
func (h *BracketHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTournamentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	tournament, err := h.tournaments.Create(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, tournament)
}

// AddParticipant handles POST /challonge/add-participant
func (h *BracketHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req addParticipantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	participant, err := h.tournaments.AddParticipant(r.Context(), req.TournamentID, req.ParticipantName)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, participant)
}

// StartTournament handles POST /challonge/start-tournament
func (h *BracketHandler) StartTournament(w http.ResponseWriter, r *http.Request) {
	var req startTournamentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	tournament, err := h.tournaments.Start(r.Context(), req.TournamentID)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, tournament)
}

// AddUserInTeam handles POST /challonge/add-user-in-team
func (h *BracketHandler) AddUserInTeam(w http.ResponseWriter, r *http.Request) {
	var req domain.AddMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	result, err := h.roster.AddMember(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondJSON(w, status, result)
}

// ListMatches handles GET /challonge/tournament/{tournamentId}/matches
func (h *BracketHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID := domain.ProviderID(chi.URLParam(r, "tournamentId"))

	matches, err := h.tournaments.ListMatches(r.Context(), tournamentID)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if matches == nil {
		matches = []domain.Match{}
	}
	respondJSON(w, http.StatusOK, matches)
}

// AddMatchScore handles POST /challonge/add-match-score. An already finished match is a 200.
func (h *BracketHandler) AddMatchScore(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	outcome, err := h.scoring.SubmitScore(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// ListByStatus handles GET /challonge/tournaments/{status}
func (h *BracketHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	if status == "" {
		respondError(w, r, errors.NewValidationError("status is required", nil), h.logger)
		return
	}

	tournaments, err := h.tournaments.ListByStatus(r.Context(), status)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, tournaments)
}

// ListAll handles GET /challonge/all-tournaments
func (h *BracketHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournaments.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, tournaments)
}
