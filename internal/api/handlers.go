package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"applypilot/internal/automation"
	"applypilot/internal/resume"
	"applypilot/internal/store"
)

type ApplicationRequest struct {
	UserID int    `json:"userId"`
	JobURL string `json:"jobUrl"`
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body", "Send JSON: {\"userId\": int, \"jobUrl\": string}", err)
		return
	}
	if req.UserID <= 0 || req.JobURL == "" {
		s.respondError(w, http.StatusBadRequest, "missing_fields", "userId and jobUrl are required", "", nil)
		return
	}

	outcome, err := s.orchestrator.Apply(r.Context(), req.UserID, req.JobURL)
	if err != nil {
		status, code, details := pipelineStatus(err)
		s.respondError(w, status, code, "Application run failed", details, err)
		return
	}

	status := http.StatusCreated
	message := "Application submitted"
	if outcome.Partial {
		status = http.StatusMultiStatus
		message = "Resume tailored, but automated submission failed; apply manually with the tailored file"
	} else if outcome.Automation.Status == automation.StatusUncertain {
		message = "Application submitted (confirmation pending)"
	}

	respondJSON(w, status, map[string]interface{}{
		"application": map[string]interface{}{
			"id":                 outcome.ApplicationID,
			"userId":             req.UserID,
			"jobLink":            req.JobURL,
			"jobTitle":           outcome.Job.Title,
			"company":            outcome.Job.Company,
			"platform":           outcome.Job.Platform,
			"tailoredResumePath": outcome.TailoredResumePath,
			"matchPercentage":    outcome.Analysis.Match.MatchPercentage,
		},
		"applyResult": outcome.Automation,
		"analysis":    outcome.Analysis,
		"message":     message,
	})
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil || userID <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid_user", "userId query parameter is required", "", err)
		return
	}
	limit, offset := parsePagination(r, 20)

	apps, err := s.store.ListApplications(r.Context(), userID, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "store_error", "Failed to fetch applications", "Retry later.", err)
		return
	}
	if apps == nil {
		apps = []store.Application{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  apps,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleLinkedInReport(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body", "Send JSON: {\"userId\": int, \"jobUrl\": string}", err)
		return
	}
	if req.UserID <= 0 || req.JobURL == "" {
		s.respondError(w, http.StatusBadRequest, "missing_fields", "userId and jobUrl are required", "", nil)
		return
	}

	resumeText, errResp := s.loadResumeText(w, r, req.UserID)
	if errResp {
		return
	}

	rep, err := s.reports.Generate(r.Context(), req.JobURL, resumeText)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "report_failed", "Report generation failed", "Check that the URL is a public LinkedIn job posting.", err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

type ValidateRequest struct {
	UserID         int    `json:"userId"`
	JobDescription string `json:"jobDescription"`
}

// handleValidateMatch scores a user against a pasted job description without
// touching any file or browser.
func (s *Server) handleValidateMatch(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body", "Send JSON: {\"userId\": int, \"jobDescription\": string}", err)
		return
	}
	if req.UserID <= 0 || req.JobDescription == "" {
		s.respondError(w, http.StatusBadRequest, "missing_fields", "userId and jobDescription are required", "", nil)
		return
	}

	resumeText, errResp := s.loadResumeText(w, r, req.UserID)
	if errResp {
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), resumeText, req.JobDescription)
	if err != nil {
		status, code, details := tailoringStatus(err)
		s.respondError(w, status, code, "Skill validation failed", details, err)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

// handleAutomationApply drives the application form directly, without
// tailoring. Used when the resume was already tailored in a previous run.
func (s *Server) handleAutomationApply(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body", "Send JSON: {\"userId\": int, \"jobUrl\": string}", err)
		return
	}
	if req.UserID <= 0 || req.JobURL == "" {
		s.respondError(w, http.StatusBadRequest, "missing_fields", "userId and jobUrl are required", "", nil)
		return
	}

	user, err := s.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "user_not_found", "User lookup failed", "Check the userId.", err)
		return
	}

	result := s.applier.Apply(r.Context(), req.JobURL, automation.UserData{
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		ResumePath: user.ResumePath,
	})
	if !result.Submitted() {
		status, code, details := automationStatus(result)
		s.respondError(w, status, code, result.Message, details, nil)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// loadResumeText fetches the user and reads their resume, writing the error
// response itself. The bool reports whether a response was already written.
func (s *Server) loadResumeText(w http.ResponseWriter, r *http.Request, userID int) (string, bool) {
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "user_not_found", "User lookup failed", "Check the userId.", err)
		return "", true
	}
	if user.ResumePath == "" {
		s.respondError(w, http.StatusBadRequest, "resume_unavailable", "User has no resume on file", "Upload a resume for this user first.", nil)
		return "", true
	}
	text, err := resume.ReadContent(user.ResumePath)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "resume_unreadable", "Resume file could not be read", "Re-upload the resume.", err)
		return "", true
	}
	return text, false
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
