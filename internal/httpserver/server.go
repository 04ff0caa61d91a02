package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/albireox/Totoro/internal/audit"
	"github.com/albireox/Totoro/internal/plugger"
)

type Server struct {
	plugger  *plugger.Plugger
	pipeline *audit.Pipeline
	authMW   func(http.Handler) http.Handler
}

// New builds the HTTP surface over the plugger. pipeline and authMW may be
// nil.
func New(p *plugger.Plugger, pipeline *audit.Pipeline, authMW func(http.Handler) http.Handler) *Server {
	return &Server{plugger: p, pipeline: pipeline, authMW: authMW}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.authMW != nil {
			r.Use(s.authMW)
		}
		r.Post("/plugger/run", s.handleRun)
		r.Get("/plugger/plugged", s.handlePlugged)
	})

	return r
}

type runBody struct {
	StartDate float64 `json:"startDate"`
	EndDate   float64 `json:"endDate"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var body runBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.plugger.Run(r.Context(), body.StartDate, body.EndDate)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, plugger.ErrBadDateRange) {
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}
	s.pipeline.Publish(r.Context(), audit.ReportFromRun(result))
	respondJSON(w, http.StatusOK, result)
}

// handlePlugged is the degraded no-dates mode: it reports the plugged,
// non-completed plates without scheduling anything.
func (s *Server) handlePlugged(w http.ResponseWriter, r *http.Request) {
	result, err := s.plugger.Run(r.Context(), 0, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.pipeline.Publish(r.Context(), audit.ReportFromRun(result))
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message})
}
