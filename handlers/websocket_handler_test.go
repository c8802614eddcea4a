package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestServeWsRejectsBadTournamentID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewWebSocketHandler(nil, nil, logger)
	router := chi.NewRouter()
	router.Get("/ws/tournaments/{tournamentID}", h.ServeWs)

	// Zero and negative ids parse cleanly but name no tournament; they
	// must get a 400 like any other malformed parameter.
	for _, path := range []string{"/ws/tournaments/0", "/ws/tournaments/-3", "/ws/tournaments/abc"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
