package api

import (
	"errors"
	"net/http"
	"strings"

	"applypilot/internal/automation"
	"applypilot/internal/core"
	"applypilot/internal/extractor"
	"applypilot/internal/oracle"
)

// pipelineStatus maps an orchestrator failure to the HTTP layer: status code,
// short error code, and a remediation hint.
func pipelineStatus(err error) (int, string, string) {
	var pe *core.PipelineError
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError, "internal_error", "Retry later; contact support if the problem persists."
	}

	switch pe.Stage {
	case core.StageExtraction:
		return extractionStatus(pe.Err)
	case core.StageTailoring:
		return tailoringStatus(pe.Err)
	case core.StageStore:
		if errors.Is(pe.Err, core.ErrAlreadyApplied) {
			return http.StatusConflict, "already_applied", "This user already has a submitted application for this job."
		}
		if strings.Contains(pe.Err.Error(), "not found") {
			return http.StatusNotFound, "user_not_found", "Check the userId; the user must exist before applying."
		}
		return http.StatusInternalServerError, "store_error", "Database operation failed; retry later."
	case core.StageResume, core.StageDocument:
		return http.StatusBadRequest, "resume_unavailable", "Upload a resume for this user before applying."
	default:
		return http.StatusInternalServerError, "internal_error", "Retry later; contact support if the problem persists."
	}
}

func extractionStatus(err error) (int, string, string) {
	var ee *extractor.Error
	if !errors.As(err, &ee) {
		return http.StatusInternalServerError, "extraction_error", "Retry later."
	}
	switch ee.Kind {
	case extractor.KindUnsupportedPlatform:
		return http.StatusBadRequest, "unsupported_platform", "Only Indeed and Wellfound job URLs can be applied to automatically."
	case extractor.KindInvalidURL:
		return http.StatusBadRequest, "invalid_url", "Provide a full http(s) job posting URL."
	case extractor.KindTimeout:
		return http.StatusGatewayTimeout, "extraction_timeout", "The job page took too long to load; retry later."
	case extractor.KindNetwork:
		return http.StatusServiceUnavailable, "extraction_network", "The job page could not be reached; check the URL and retry."
	case extractor.KindDescriptionNotFound:
		return http.StatusUnprocessableEntity, "description_not_found", "The posting has no readable description; it may have been taken down."
	default:
		return http.StatusInternalServerError, "extraction_error", "Retry later."
	}
}

func tailoringStatus(err error) (int, string, string) {
	kind, _ := oracle.KindOf(err)
	switch kind {
	case oracle.KindNotConfigured, oracle.KindUnsupportedProvider:
		return http.StatusInternalServerError, "oracle_not_configured", "Set an AI provider API key in the server environment."
	case oracle.KindAuth:
		return http.StatusInternalServerError, "oracle_auth", "The configured AI provider rejected the API key."
	case oracle.KindRateLimited:
		return http.StatusTooManyRequests, "oracle_rate_limited", "The AI provider is rate limiting; retry in a minute."
	case oracle.KindTimeout:
		return http.StatusGatewayTimeout, "oracle_timeout", "The AI provider took too long to respond; retry later."
	case oracle.KindNoResponse:
		return http.StatusServiceUnavailable, "oracle_unavailable", "The AI provider returned no usable response; retry later."
	case oracle.KindSchemaParse:
		return http.StatusBadGateway, "oracle_schema", "The AI provider returned malformed output; retry later."
	default:
		return http.StatusInternalServerError, "tailoring_error", "Retry later."
	}
}

// automationStatus maps a standalone automation attempt's failure kind.
func automationStatus(result automation.Result) (int, string, string) {
	switch result.Kind {
	case automation.FailUnsupportedPlatform:
		return http.StatusBadRequest, "unsupported_platform", "Only Indeed and Wellfound support automated applications."
	case automation.FailIncompleteUser:
		return http.StatusBadRequest, "incomplete_profile", "The user profile needs at least a name and email."
	case automation.FailMissingResume:
		return http.StatusBadRequest, "resume_unavailable", "Upload a resume for this user before applying."
	case automation.FailNoApplyButton, automation.FailFormError, automation.FailFormTimeout:
		return http.StatusUnprocessableEntity, "form_not_driveable", "The application form could not be completed; apply manually."
	case automation.FailNavigation:
		return http.StatusGatewayTimeout, "navigation_timeout", "The job page took too long to load; retry later."
	case automation.FailAuthRequired:
		return http.StatusUnauthorized, "login_required", "The site requires a logged-in session; apply manually."
	default:
		return http.StatusInternalServerError, "automation_error", "Retry later."
	}
}
