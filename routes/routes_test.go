package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfooty/bracket-system/handlers"
	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/services"
)

var routesTestSecret = []byte("routes-test-secret")

// stubMatchService answers every call with an empty success so the
// tests below exercise only the middleware chain in front of it.
type stubMatchService struct{}

func (stubMatchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return nil, nil
}

func (stubMatchService) SaveScore(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error) {
	return &models.Match{ID: matchID}, nil
}

func (stubMatchService) Confirm(ctx context.Context, matchID int) (*models.Match, error) {
	return &models.Match{ID: matchID, Confirmed: true}, nil
}

func (stubMatchService) ConfirmAll(ctx context.Context, tournamentID int, groupName *string) (int, error) {
	return 0, nil
}

func (stubMatchService) GenerateKnockout(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return nil, nil
}

func (stubMatchService) ResolveRound(ctx context.Context, tournamentID int, stage models.MatchStage) ([]*models.Match, error) {
	return nil, nil
}

func signTestToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"role":      role,
		"player_id": 7,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(routesTestSecret)
	require.NoError(t, err)
	return signed
}

func TestScoreEntryOpenToPlayersConfirmAdminOnly(t *testing.T) {
	router := SetupRoutes(Handlers{Match: handlers.NewMatchHandler(stubMatchService{})}, routesTestSecret)

	testCases := []struct {
		name       string
		method     string
		path       string
		body       string
		role       string
		wantStatus int
	}{
		{"player saves a score", http.MethodPut, "/matches/1/score", `{"home_score": 2, "away_score": 1}`, services.RolePlayer, http.StatusOK},
		{"admin saves a score", http.MethodPut, "/matches/1/score", `{"home_score": 2, "away_score": 1}`, services.RoleAdmin, http.StatusOK},
		{"anonymous cannot save a score", http.MethodPut, "/matches/1/score", `{"home_score": 2, "away_score": 1}`, "", http.StatusUnauthorized},
		{"player cannot confirm", http.MethodPut, "/matches/1/confirm", "", services.RolePlayer, http.StatusForbidden},
		{"admin confirms", http.MethodPut, "/matches/1/confirm", "", services.RoleAdmin, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.role != "" {
				req.Header.Set("Authorization", "Bearer "+signTestToken(t, tc.role))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
