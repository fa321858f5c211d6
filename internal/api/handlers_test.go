package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applypilot/internal/automation"
	"applypilot/internal/core"
	"applypilot/internal/extractor"
	"applypilot/internal/match"
	"applypilot/internal/oracle"
	"applypilot/internal/platform"
	"applypilot/internal/report"
	"applypilot/internal/store"
	"applypilot/internal/tailor"
)

type fakeOrchestrator struct {
	outcome *core.Outcome
	err     error
}

func (f *fakeOrchestrator) Apply(context.Context, int, string) (*core.Outcome, error) {
	return f.outcome, f.err
}

type fakeAppStore struct {
	user *store.User
	apps []store.Application
}

func (f *fakeAppStore) GetUser(_ context.Context, id int) (*store.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, errors.New("user not found")
	}
	return f.user, nil
}

func (f *fakeAppStore) ListApplications(context.Context, int, int, int) ([]store.Application, error) {
	return f.apps, nil
}

type fakeReports struct {
	report *report.Report
	err    error
}

func (f *fakeReports) Generate(context.Context, string, string) (*report.Report, error) {
	return f.report, f.err
}

type fakeAnalyzer struct {
	analysis tailor.Analysis
	err      error
}

func (f *fakeAnalyzer) Analyze(context.Context, string, string) (tailor.Analysis, error) {
	return f.analysis, f.err
}

type fakeFormApplier struct {
	result automation.Result
}

func (f *fakeFormApplier) Apply(context.Context, string, automation.UserData) automation.Result {
	return f.result
}

func successOutcome() *core.Outcome {
	return &core.Outcome{
		ApplicationID: 1,
		Job: &extractor.JobPosting{
			Platform: platform.Indeed, Title: "Backend Engineer", Company: "Acme",
			Description: "Build services.", URL: "https://www.indeed.com/viewjob?jk=1",
		},
		Analysis: tailor.Analysis{
			Match:          match.SkillMatchResult{MatchPercentage: 67},
			Recommendation: match.Recommendation{Type: "good"},
		},
		TailoredResumePath: "/tmp/7_tailored.txt",
		Automation: automation.Result{
			Status: automation.StatusSubmitted, Platform: platform.Indeed, Message: "application submitted",
		},
	}
}

func testServer(t *testing.T, opts ...func(*Server)) *Server {
	t.Helper()
	dir := t.TempDir()
	resumePath := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("resume text"), 0o644))

	s := NewServer(
		&fakeOrchestrator{outcome: successOutcome()},
		&fakeAppStore{user: &store.User{ID: 7, Name: "Ada", Email: "ada@example.com", ResumePath: resumePath}},
		&fakeReports{report: &report.Report{JobTitle: "Backend Engineer", PDFPath: "/tmp/report.pdf"}},
		&fakeAnalyzer{analysis: tailor.Analysis{Match: match.SkillMatchResult{MatchPercentage: 50}}},
		&fakeFormApplier{result: automation.Result{Status: automation.StatusSubmitted, Message: "application submitted"}},
		false,
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateApplicationFullSuccess(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/applications", `{"userId":7,"jobUrl":"https://www.indeed.com/viewjob?jk=1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Application submitted", body["message"])
	app := body["application"].(map[string]interface{})
	assert.Equal(t, "Backend Engineer", app["jobTitle"])
	assert.Equal(t, float64(67), app["matchPercentage"])
}

func TestCreateApplicationPartialSuccessIs207(t *testing.T) {
	outcome := successOutcome()
	outcome.Partial = true
	outcome.Automation = automation.Result{
		Status: automation.StatusFailed, Kind: automation.FailNoApplyButton,
		Message: "no apply button found on the page",
	}
	s := testServer(t, func(s *Server) { s.orchestrator = &fakeOrchestrator{outcome: outcome} })

	rec := doJSON(t, s, http.MethodPost, "/applications", `{"userId":7,"jobUrl":"https://www.indeed.com/viewjob?jk=1"}`)
	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body["message"], "apply manually")
}

func TestCreateApplicationValidation(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/applications", `{"jobUrl":"https://x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/applications", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateApplicationStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			"unsupported platform",
			&core.PipelineError{Stage: core.StageExtraction, Err: &extractor.Error{Kind: extractor.KindUnsupportedPlatform, URL: "https://x"}},
			http.StatusBadRequest, "unsupported_platform",
		},
		{
			"extraction timeout",
			&core.PipelineError{Stage: core.StageExtraction, Err: &extractor.Error{Kind: extractor.KindTimeout, URL: "https://x"}},
			http.StatusGatewayTimeout, "extraction_timeout",
		},
		{
			"network error",
			&core.PipelineError{Stage: core.StageExtraction, Err: &extractor.Error{Kind: extractor.KindNetwork, URL: "https://x"}},
			http.StatusServiceUnavailable, "extraction_network",
		},
		{
			"description not found",
			&core.PipelineError{Stage: core.StageExtraction, Err: &extractor.Error{Kind: extractor.KindDescriptionNotFound, URL: "https://x"}},
			http.StatusUnprocessableEntity, "description_not_found",
		},
		{
			"oracle rate limited",
			&core.PipelineError{Stage: core.StageTailoring, Err: oracle.NewError(oracle.KindRateLimited, "openai", nil)},
			http.StatusTooManyRequests, "oracle_rate_limited",
		},
		{
			"oracle not configured",
			&core.PipelineError{Stage: core.StageTailoring, Err: oracle.NewError(oracle.KindNotConfigured, "", nil)},
			http.StatusInternalServerError, "oracle_not_configured",
		},
		{
			"unknown user",
			&core.PipelineError{Stage: core.StageStore, Err: errors.New("user 99 not found")},
			http.StatusNotFound, "user_not_found",
		},
		{
			"duplicate application",
			&core.PipelineError{Stage: core.StageStore, Err: core.ErrAlreadyApplied},
			http.StatusConflict, "already_applied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(t, func(s *Server) { s.orchestrator = &fakeOrchestrator{err: tt.err} })
			rec := doJSON(t, s, http.MethodPost, "/applications", `{"userId":7,"jobUrl":"https://www.indeed.com/viewjob?jk=1"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["error"])
		})
	}
}

func TestListApplications(t *testing.T) {
	s := testServer(t, func(s *Server) {
		s.store = &fakeAppStore{
			user: &store.User{ID: 7},
			apps: []store.Application{{ID: 1, UserID: 7, JobLink: "https://x", Status: store.StatusApplied}},
		}
	})
	rec := doJSON(t, s, http.MethodGet, "/applications?userId=7", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["items"], 1)
}

func TestListApplicationsRequiresUserID(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/applications", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLinkedInReport(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/reports/linkedin", `{"userId":7,"jobUrl":"https://www.linkedin.com/jobs/view/123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend Engineer", decode(t, rec)["jobTitle"])
}

func TestLinkedInReportUnknownUser(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/reports/linkedin", `{"userId":99,"jobUrl":"https://www.linkedin.com/jobs/view/123"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidateMatch(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/match/validate", `{"userId":7,"jobDescription":"Go and SQL work"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	m := body["match"].(map[string]interface{})
	assert.Equal(t, float64(50), m["matchPercentage"])
}

func TestValidateMatchOracleFailure(t *testing.T) {
	s := testServer(t, func(s *Server) {
		s.analyzer = &fakeAnalyzer{err: oracle.NewError(oracle.KindSchemaParse, "openai", nil)}
	})
	rec := doJSON(t, s, http.MethodPost, "/match/validate", `{"userId":7,"jobDescription":"Go work"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "oracle_schema", decode(t, rec)["error"])
}

func TestAutomationApplySuccess(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/automation/apply", `{"userId":7,"jobUrl":"https://www.indeed.com/viewjob?jk=1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAutomationApplyFailureMapping(t *testing.T) {
	tests := []struct {
		kind   string
		status int
	}{
		{automation.FailUnsupportedPlatform, http.StatusBadRequest},
		{automation.FailMissingResume, http.StatusBadRequest},
		{automation.FailNoApplyButton, http.StatusUnprocessableEntity},
		{automation.FailNavigation, http.StatusGatewayTimeout},
		{automation.FailAuthRequired, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s := testServer(t, func(s *Server) {
				s.applier = &fakeFormApplier{result: automation.Result{Status: automation.StatusFailed, Kind: tt.kind, Message: "failed"}}
			})
			rec := doJSON(t, s, http.MethodPost, "/automation/apply", `{"userId":7,"jobUrl":"https://www.indeed.com/viewjob?jk=1"}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestStats(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "errors_total")
}
