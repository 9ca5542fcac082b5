package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/AdamBeresnev/elim-bracket/internal/config"
	"github.com/AdamBeresnev/elim-bracket/internal/httputil"
	"github.com/AdamBeresnev/elim-bracket/internal/metrics"
	"github.com/AdamBeresnev/elim-bracket/internal/middleware"
	"github.com/AdamBeresnev/elim-bracket/internal/service"
	"github.com/AdamBeresnev/elim-bracket/internal/store"
	"github.com/AdamBeresnev/elim-bracket/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth/gothic"
)

func newRouter(database *sqlx.DB, sessionManager *scs.SessionManager, cfg *config.Config, opts ...service.BracketOption) http.Handler {
	tournamentStore := store.NewTournamentStore(database)
	matchStore := store.NewMatchStore(database)
	userStore := store.NewUserStore(database)

	bracketService := service.NewBracketService(database, tournamentStore, matchStore, tournamentStore, opts...)
	matchService := service.NewMatchService(database, tournamentStore, matchStore)
	tournamentService := service.NewTournamentService(database, tournamentStore, matchStore)
	teamService := service.NewTeamService(tournamentStore)
	userService := service.NewUserService(userStore)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(sessionManager, userStore))

	r.Handle("/metrics", metrics.Handler())

	r.Get("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		var filter store.TournamentFilter
		if s := r.URL.Query().Get("status"); s != "" {
			status := bracket.TournamentStatus(s)
			filter.Status = &status
		}
		if s := r.URL.Query().Get("owner"); s != "" {
			ownerID, err := uuid.Parse(s)
			if err != nil {
				httputil.BadRequest(w, "Invalid owner ID", err)
				return
			}
			filter.OwnerID = &ownerID
		}

		tournaments, err := tournamentService.ListTournaments(r.Context(), filter)
		if err != nil {
			httputil.ServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tournaments)
	})

	r.Route("/tournaments/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			data, err := tournamentService.GetTournamentData(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, data)
		})

		r.Get("/matches", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			matches, err := matchService.ListMatches(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, matches)
		})

		r.Get("/bracket", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			data, err := tournamentService.GetTournamentData(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, err)
				return
			}
			if err := views.Render(w, r, views.BracketPage(data.Tournament, data.Matches)); err != nil {
				httputil.InternalServerError(w, "Failed to render bracket", err)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
				id, ok := tournamentID(w, r)
				if !ok {
					return
				}
				var req struct {
					TeamID uuid.UUID `json:"teamId"`
				}
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				if err := tournamentService.RegisterTeam(r.Context(), id, req.TeamID); err != nil {
					httputil.ServiceError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Post("/bracket", func(w http.ResponseWriter, r *http.Request) {
				id, ok := tournamentID(w, r)
				if !ok {
					return
				}
				matches, err := bracketService.Build(r.Context(), id)
				if err != nil {
					httputil.ServiceError(w, err)
					return
				}
				writeJSON(w, http.StatusCreated, matches)
			})

			r.Post("/matches", func(w http.ResponseWriter, r *http.Request) {
				id, ok := tournamentID(w, r)
				if !ok {
					return
				}
				var req struct {
					Matches []service.ResultInput `json:"matches"`
				}
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				matches, err := matchService.ReportResults(r.Context(), id, req.Matches)
				if err != nil {
					httputil.ServiceError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, matches)
			})

			r.Post("/matches/{number}/result", func(w http.ResponseWriter, r *http.Request) {
				id, ok := tournamentID(w, r)
				if !ok {
					return
				}
				number, ok := matchNumber(w, r)
				if !ok {
					return
				}
				var in service.ResultInput
				if err := httputil.ReadJSON(w, r, &in); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				in.Number = number
				outcome, err := matchService.ReportResult(r.Context(), id, in)
				if err != nil {
					httputil.ServiceError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, outcome)
			})

			r.Patch("/matches/{number}", func(w http.ResponseWriter, r *http.Request) {
				id, ok := tournamentID(w, r)
				if !ok {
					return
				}
				number, ok := matchNumber(w, r)
				if !ok {
					return
				}
				var update service.MatchUpdate
				if err := httputil.ReadJSON(w, r, &update); err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				outcome, err := matchService.UpdateMatch(r.Context(), id, number, update)
				if err != nil {
					httputil.ServiceError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, outcome)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name string `json:"name"`
			}
			if err := httputil.ReadJSON(w, r, &req); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			team, err := teamService.CreateTeam(r.Context(), req.Name)
			if err != nil {
				httputil.ServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, team)
		})

		r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			ownerID, _ := middleware.GetUserIDFromContext(r.Context())

			var in service.TournamentInput
			if err := httputil.ReadJSON(w, r, &in); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			tournament, err := tournamentService.CreateTournament(r.Context(), ownerID, in)
			if err != nil {
				httputil.ServiceError(w, err)
				return
			}
			w.Header().Set("Location", fmt.Sprintf("/tournaments/%s", tournament.ID))
			writeJSON(w, http.StatusCreated, tournament)
		})
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		gothic.BeginAuthHandler(w, withProvider(r))
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		gothUser, err := gothic.CompleteUserAuth(w, withProvider(r))
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := userService.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		if err := sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		writeJSON(w, http.StatusOK, user)
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		user, err := userService.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		if err := sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		writeJSON(w, http.StatusOK, user)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to end session", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func tournamentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func matchNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		httputil.BadRequest(w, "Invalid match ID", err)
		return 0, false
	}
	return number, true
}

// withProvider passes the chi route's provider to gothic, which reads it from
// the query string.
func withProvider(r *http.Request) *http.Request {
	q := r.URL.Query()
	q.Set("provider", chi.URLParam(r, "provider"))
	r.URL.RawQuery = q.Encode()
	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		httputil.InternalServerError(w, "Failed to write response", err)
	}
}
