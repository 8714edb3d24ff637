// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jobdeck/internal/cache"
	"jobdeck/internal/core"
	"jobdeck/internal/dispatch"
	"jobdeck/internal/jobsource"
	"jobdeck/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app        *core.App
	db         *sql.DB
	store      *store.Store
	source     jobsource.Source
	refresher  *cache.Refresher
	dispatcher *dispatch.Dispatcher
}

// NewServer creates a new Server instance.
func NewServer(app *core.App, source jobsource.Source, refresher *cache.Refresher) *Server {
	return &Server{
		app:        app,
		db:         app.DB(),
		store:      store.New(app.DB()),
		source:     source,
		refresher:  refresher,
		dispatcher: dispatch.New(dispatch.DefaultWindow),
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// SetDispatcher swaps the command dispatcher. Tests use this to shrink
// the debounce window.
func (s *Server) SetDispatcher(d *dispatch.Dispatcher) {
	s.dispatcher = d
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/version", s.handleGetVersion)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Route("/api", func(r chi.Router) {
			// Job list / view model
			r.Get("/jobs", s.handleGetJobs)
			r.Post("/jobs/refresh", s.handleForceRefresh)

			// Commands relayed to the job source
			r.Delete("/jobs/{jobID}", s.handleDeleteJob)
			r.Post("/jobs/{jobID}/action", s.handleJobAction)
			r.Post("/jobs/clear", s.handleClearQueue)

			// Local audit log
			r.Get("/history", s.handleGetHistory)
		})
	})

	// WebSocket route
	r.Get("/ws/jobs", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
