package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"applypilot/internal/automation"
	"applypilot/internal/core"
	"applypilot/internal/observability"
	"applypilot/internal/report"
	"applypilot/internal/store"
	"applypilot/internal/tailor"
)

// Collaborator contracts, satisfied by the concrete pipeline components and
// by fakes in tests.
type Orchestrator interface {
	Apply(ctx context.Context, userID int, jobURL string) (*core.Outcome, error)
}

type ApplicationStore interface {
	GetUser(ctx context.Context, userID int) (*store.User, error)
	ListApplications(ctx context.Context, userID, limit, offset int) ([]store.Application, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, jobURL, resumeText string) (*report.Report, error)
}

type SkillAnalyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (tailor.Analysis, error)
}

type FormApplier interface {
	Apply(ctx context.Context, jobURL string, user automation.UserData) automation.Result
}

type Server struct {
	router       *chi.Mux
	orchestrator Orchestrator
	store        ApplicationStore
	reports      ReportGenerator
	analyzer     SkillAnalyzer
	applier      FormApplier
	devMode      bool
}

func NewServer(
	orch Orchestrator,
	st ApplicationStore,
	reports ReportGenerator,
	analyzer SkillAnalyzer,
	applier FormApplier,
	devMode bool,
) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		orchestrator: orch,
		store:        st,
		reports:      reports,
		analyzer:     analyzer,
		applier:      applier,
		devMode:      devMode,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Post("/applications", s.handleCreateApplication)
	s.router.Get("/applications", s.handleListApplications)
	s.router.Post("/reports/linkedin", s.handleLinkedInReport)
	s.router.Post("/match/validate", s.handleValidateMatch)
	s.router.Post("/automation/apply", s.handleAutomationApply)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// errorBody is the uniform failure shape: a short code, a human message, and
// a remediation hint. Internal detail only leaks in dev mode.
func (s *Server) respondError(w http.ResponseWriter, status int, code, message, details string, err error) {
	body := map[string]string{
		"error":   code,
		"message": message,
	}
	if details != "" {
		body["details"] = details
	}
	if s.devMode && err != nil {
		body["internal"] = err.Error()
	}
	respondJSON(w, status, body)
}
