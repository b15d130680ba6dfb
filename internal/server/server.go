// Package server exposes the triage pipeline over HTTP: error submission,
// ledger reads, and the next-suggestion endpoint. Every failure path
// returns a structured JSON error body, never a bare stack trace.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/ledger"
	"github.com/IshaanBansal2006/p5-sub000/internal/next"
	"github.com/IshaanBansal2006/p5-sub000/internal/triage"
	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// Server is the triage HTTP service.
type Server struct {
	router  *httprouter.Router
	service *triage.Service
	store   *ledger.Store
	server  *http.Server
	logger  *zap.Logger
}

// New wires the routes.
func New(addr string, service *triage.Service, store *ledger.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  httprouter.New(),
		service: service,
		store:   store,
		logger:  logger,
	}
	s.router.POST("/api/report-errors", s.handleReportErrors)
	s.router.GET("/api/bugs/:owner/:repo", s.handleBugs)
	s.router.GET("/api/next/:owner/:repo", s.handleNext)
	s.router.GET("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving requests.
func (s *Server) ListenAndServe() error {
	s.logger.Info("triage service listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReportErrors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var col types.ErrorCollection
	if err := json.NewDecoder(r.Body).Decode(&col); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if col.Repository.Owner == "" || col.Repository.Repo == "" {
		writeError(w, http.StatusBadRequest, "repository owner and repo are required")
		return
	}

	resp, err := s.service.Process(r.Context(), col)
	if err != nil {
		s.logger.Error("triage failed",
			zap.String("repository", col.Repository.Key()),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process errors: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// bugsResponse is the ledger read payload.
type bugsResponse struct {
	Repository string                 `json:"repository"`
	TotalBugs  int                    `json:"totalBugs"`
	TotalTasks int                    `json:"totalTasks"`
	Bugs       []types.ProcessedError `json:"bugs"`
	Tasks      []types.WorkItem       `json:"tasks"`
}

func (s *Server) handleBugs(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	key := ps.ByName("owner") + "-" + ps.ByName("repo")
	l, _, err := s.store.Load(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledger: "+err.Error())
		return
	}
	resp := bugsResponse{
		Repository: key,
		TotalBugs:  len(l.Bugs),
		TotalTasks: len(l.Tasks),
		Bugs:       l.Bugs,
		Tasks:      l.Tasks,
	}
	if resp.Bugs == nil {
		resp.Bugs = []types.ProcessedError{}
	}
	if resp.Tasks == nil {
		resp.Tasks = []types.WorkItem{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	key := ps.ByName("owner") + "-" + ps.ByName("repo")
	l, _, err := s.store.Load(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledger: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, next.Select(l))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
