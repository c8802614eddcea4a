package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openfooty/bracket-system/handlers"
	"github.com/openfooty/bracket-system/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Team       *handlers.TeamHandler
	Tournament *handlers.TournamentHandler
	Group      *handlers.GroupHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes wires the full HTTP surface. Reads are public; writes
// require a token, and bracket administration requires the admin role.
func SetupRoutes(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Authenticator(jwtSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Post("/auth/admin/login", h.Auth.AdminLoginHandler)

	router.Route("/players", func(r chi.Router) {
		r.Post("/login", h.Auth.PlayerLoginHandler)
		r.Get("/", h.Player.ListHandler)
		r.Get("/{playerID}", h.Player.GetByIDHandler)
		r.Get("/{playerID}/registrations", h.Player.RegistrationsHandler)
		r.Get("/{playerID}/matches", h.Player.MatchHistoryHandler)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListHandler)
		r.Get("/{teamID}", h.Team.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Put("/{teamID}/crest", h.Team.UploadCrestHandler)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/available-teams", h.Tournament.AvailableTeamsHandler)
		r.Get("/{tournamentID}/groups", h.Group.StandingsHandler)
		r.Get("/{tournamentID}/matches", h.Match.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/{tournamentID}/register", h.Tournament.RegisterHandler)
			r.Delete("/{tournamentID}/register", h.Tournament.WithdrawHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.Tournament.CreateHandler)
			r.Put("/{tournamentID}/status", h.Tournament.UpdateStatusHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)
			r.Post("/{tournamentID}/groups/generate", h.Group.GenerateHandler)
			r.Put("/{tournamentID}/matches/confirm-all", h.Match.ConfirmAllHandler)
			r.Post("/{tournamentID}/knockout/generate", h.Match.GenerateKnockoutHandler)
			r.Post("/{tournamentID}/knockout/resolve", h.Match.ResolveRoundHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		// Any logged-in player may enter or correct a score; only an
		// admin can confirm and lock it.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Put("/{matchID}/score", h.Match.SaveScoreHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Put("/{matchID}/confirm", h.Match.ConfirmHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
