package handlers

import (
	"net/http"

	"github.com/openfooty/bracket-system/middleware"
	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	teamService       services.TeamService
}

func NewTournamentHandler(ts services.TournamentService, teams services.TeamService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts, teamService: teams}
}

// CreateHandler handles POST /tournaments (admin).
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// ListHandler handles GET /tournaments.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}.
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// UpdateStatusHandler handles PUT /tournaments/{tournamentID}/status (admin).
func (h *TournamentHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID} (admin).
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterHandler handles POST /tournaments/{tournamentID}/register.
// Players register themselves; an admin token may register any player
// by passing player_id.
func (h *TournamentHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		TeamID   int `json:"team_id"`
		PlayerID int `json:"player_id,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	playerID, ok := resolvePlayerID(r, input.PlayerID)
	if !ok {
		forbiddenResponse(w, "cannot register on behalf of another player")
		return
	}

	registration, err := h.tournamentService.Register(r.Context(), tournamentID, playerID, input.TeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": registration}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// WithdrawHandler handles DELETE /tournaments/{tournamentID}/register.
func (h *TournamentHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		PlayerID int `json:"player_id,omitempty"`
	}
	// Body is optional for self-withdrawal.
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, err)
			return
		}
	}

	playerID, ok := resolvePlayerID(r, input.PlayerID)
	if !ok {
		forbiddenResponse(w, "cannot withdraw another player")
		return
	}

	if err := h.tournamentService.Withdraw(r.Context(), tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AvailableTeamsHandler handles GET /tournaments/{tournamentID}/available-teams.
func (h *TournamentHandler) AvailableTeamsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	teams, err := h.teamService.ListAvailable(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// resolvePlayerID picks the player acted on: admins may name any
// player, a player token is pinned to its own id.
func resolvePlayerID(r *http.Request, requestedID int) (int, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return 0, false
	}
	if claims.Role == services.RoleAdmin {
		return requestedID, requestedID > 0
	}
	if requestedID != 0 && requestedID != claims.PlayerID {
		return 0, false
	}
	return claims.PlayerID, claims.PlayerID > 0
}
