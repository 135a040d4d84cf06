// Package server exposes the analysis engine over HTTP for the dashboard.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/engine"
	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/internal/resolve"
	"github.com/fincase/bizcase-cli/internal/store"
)

// Server handles HTTP requests against the engine.
type Server struct {
	engine *engine.Engine
}

// New creates a Server.
func New(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/analyses", func(r chi.Router) {
		r.Post("/", s.handleAnalyze)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Post("/simulate", s.handleSimulate)
			r.Post("/revert", s.handleRevert)
			r.Get("/simulations", s.handleSimulations)
			r.Delete("/", s.handleArchive)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"catalog":  resolve.CatalogVersion,
		"defaults": resolve.DefaultsVersion,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	a, err := s.engine.Analyze(r.Context(), req.Name, req.Text)
	if err != nil {
		if errors.Is(err, resolve.ErrMissingRequiredField) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		serverError(w, "analyze", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filter := store.AnalysisFilter{
		Status:    model.AnalysisStatus(r.URL.Query().Get("status")),
		Archetype: model.Archetype(r.URL.Query().Get("archetype")),
		Limit:     limit,
	}
	analyses, err := s.engine.Store.ListAnalyses(r.Context(), filter)
	if err != nil {
		serverError(w, "list analyses", err)
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := s.engine.Store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, "get analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Instruction == "" {
		writeError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	res, err := s.engine.Simulate(r.Context(), chi.URLParam(r, "id"), req.Instruction)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, "simulate", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Revert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, "revert", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSimulations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := s.engine.Store.ListSimulations(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		serverError(w, "list simulations", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Store.ArchiveAnalysis(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, "archive", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, op string, err error) {
	zap.L().Error("server: "+op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}
