// Package httpapi exposes the server's services over an HTTP/JSON API:
// credential auth, the profiles record surface, and mood journal entries.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/mkaranov/brospace/internal/logging"
	"github.com/mkaranov/brospace/internal/server/services"
)

type Server struct {
	address        string
	allowedOrigins []string
	logger         logging.Logger
	validate       *validator.Validate
	users          *services.UserService
	profiles       *services.ProfileService
	moods          *services.MoodService
}

func NewServer(address string, allowedOrigins []string, l logging.Logger,
	us *services.UserService, ps *services.ProfileService, ms *services.MoodService) *Server {
	return &Server{
		address:        address,
		allowedOrigins: allowedOrigins,
		logger:         l.With("module", "httpapi"),
		validate:       validator.New(),
		users:          us,
		profiles:       ps,
		moods:          ms,
	}
}

// Router assembles the chi router. Split from Run so tests can drive the
// handler tree through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/api/health", s.handleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/api/profiles", func(r chi.Router) {
			r.Post("/", s.handleEnsureProfile)
			r.Get("/{id}", s.handleGetProfile)
			r.Patch("/{id}", s.handlePatchProfile)
		})

		r.Route("/api/moods", func(r chi.Router) {
			r.Post("/", s.handleCreateMoodEntry)
			r.Get("/", s.handleListMoodEntries)
		})
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// --- JSON plumbing ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), msg, "path", r.URL.Path)
	}
	s.writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation. On failure it writes the error response and returns false.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON body", codeValidation)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), codeValidation)
		return false
	}
	return true
}
