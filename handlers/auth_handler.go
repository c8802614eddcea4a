package handlers

import (
	"net/http"

	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// AdminLoginHandler handles POST /auth/admin/login.
func (h *AuthHandler) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	token, err := h.authService.AdminLogin(r.Context(), input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}

// PlayerLoginHandler handles POST /players/login. An unknown username
// creates the player on the fly; a known username must present the
// same whatsapp number.
func (h *AuthHandler) PlayerLoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds models.PlayerCredentials
	if err := readJSON(w, r, &creds); err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.authService.PlayerLogin(r.Context(), creds)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, jsonResponse{
		"player": result.Player,
		"token":  result.Token,
	}, nil); err != nil {
		serverErrorResponse(w, err)
	}
}
