package automation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"applypilot/internal/browser"
	"applypilot/internal/observability"
	"applypilot/internal/platform"
)

// Status is the terminal state of one apply attempt. Uncertain means the form
// was driven to completion but the board never showed a confirmation; boards
// frequently redirect or A/B-test their thank-you pages, so the attempt is
// reported as likely-submitted rather than failed.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusUncertain Status = "uncertain"
	StatusFailed    Status = "failed"
)

// FailureKind identifies why an apply attempt could not complete.
const (
	FailUnsupportedPlatform = "unsupported_platform"
	FailIncompleteUser      = "incomplete_user"
	FailMissingResume       = "missing_resume"
	FailNavigation          = "navigation"
	FailNoApplyButton       = "no_apply_button"
	FailAuthRequired        = "auth_required"
	FailFormError           = "form_error"
	FailFormTimeout         = "form_timeout"
	FailBrowser             = "browser"
)

// UserData is the applicant identity filled into application forms.
type UserData struct {
	Name       string
	Email      string
	Phone      string
	ResumePath string
}

// Complete reports whether the fields every board requires are present.
func (u UserData) Complete() bool {
	return strings.TrimSpace(u.Name) != "" && strings.TrimSpace(u.Email) != ""
}

// Result describes the outcome of one apply attempt.
type Result struct {
	Status   Status            `json:"status"`
	Platform platform.Platform `json:"platform"`
	Kind     string            `json:"kind,omitempty"`
	Message  string            `json:"message"`
}

// Submitted covers both confirmed and unconfirmed submissions.
func (r Result) Submitted() bool {
	return r.Status == StatusSubmitted || r.Status == StatusUncertain
}

const (
	applyButtonTimeout = 5 * time.Second
	fieldTimeout       = 3 * time.Second
	stepSettle         = time.Second
	maxFormSteps       = 10
)

const errorTextSelector = `.error, .error-message, [role="alert"], .css-mllman`

// Engine drives platform application forms end to end in a browser session.
// The session is visible by default: boards fingerprint headless Chrome on
// their application forms far more aggressively than on job pages.
type Engine struct {
	log  *slog.Logger
	opts browser.Options

	// newSession exists so tests can exercise precondition handling without
	// launching Chrome. Nil means launch a real session.
	newSession func(context.Context, browser.Options) (*browser.Session, error)
}

func NewEngine(log *slog.Logger) *Engine {
	return &Engine{
		log: log,
		opts: browser.Options{
			Headless:        false,
			PageLoadTimeout: 30 * time.Second,
		},
	}
}

// WithHeadless overrides the visible-browser default, for environments
// without a display.
func (e *Engine) WithHeadless(headless bool) *Engine {
	e.opts.Headless = headless
	return e
}

func failure(p platform.Platform, kind, msg string) Result {
	observability.IncError(kind, observability.StageAutomation)
	return Result{Status: StatusFailed, Platform: p, Kind: kind, Message: msg}
}

// Apply opens the job page, clicks through the application flow and fills the
// user's details. It never returns an error for expected board behavior; all
// outcomes are encoded in the Result.
func (e *Engine) Apply(ctx context.Context, jobURL string, user UserData) Result {
	p := platform.Detect(jobURL)
	if !p.SupportsAutoApply() {
		return failure(p, FailUnsupportedPlatform,
			fmt.Sprintf("automated apply is not supported for %s", p.DisplayName()))
	}
	if !user.Complete() {
		return failure(p, FailIncompleteUser, "user profile is missing name or email")
	}
	if strings.TrimSpace(user.ResumePath) == "" {
		return failure(p, FailMissingResume, "resume path is required")
	}
	// File inputs reject relative paths on some boards.
	user.ResumePath = absResumePath(user.ResumePath)
	profile := formProfiles[p]

	observability.IncAutomation(string(p))

	open := e.newSession
	if open == nil {
		open = browser.NewSession
	}
	sess, err := open(ctx, e.opts)
	if err != nil {
		return failure(p, FailBrowser, fmt.Sprintf("browser launch failed: %v", err))
	}
	defer sess.Close()

	if err := sess.Navigate(jobURL); err != nil {
		if browser.IsTimeout(err) {
			return failure(p, FailNavigation, "page load timed out")
		}
		return failure(p, FailNavigation, fmt.Sprintf("navigation failed: %v", err))
	}

	if !clickFirst(sess, profile.Apply, applyButtonTimeout) {
		if waitAny(sess, profile.Login, fieldTimeout) {
			return failure(p, FailAuthRequired, "board is showing a login wall")
		}
		return failure(p, FailNoApplyButton, "no apply button found on the page")
	}

	return e.driveForm(sess, p, profile, user)
}

// driveForm walks a multi-step application form: fill what is visible, submit
// if possible, otherwise continue to the next step. The step count is bounded
// so a looping wizard cannot hold the pipeline forever.
func (e *Engine) driveForm(sess *browser.Session, p platform.Platform, profile formSelectors, user UserData) Result {
	for step := 0; step < maxFormSteps; step++ {
		_ = sess.Sleep(stepSettle)

		e.fillFields(sess, profile, user)

		if clickFirst(sess, profile.Submit, fieldTimeout) {
			return e.afterSubmit(sess, p, profile)
		}
		if clickFirst(sess, profile.Continue, fieldTimeout) {
			e.log.Debug("advancing application form", "platform", p, "step", step+1)
			continue
		}

		if msg, _ := sess.CollectText(errorTextSelector, fieldTimeout); msg != "" {
			return failure(p, FailFormError, "form reported errors: "+msg)
		}
		return failure(p, FailFormTimeout, "form offered neither submit nor continue")
	}
	return failure(p, FailFormTimeout,
		fmt.Sprintf("form did not complete within %d steps", maxFormSteps))
}

func (e *Engine) fillFields(sess *browser.Session, profile formSelectors, user UserData) {
	fillFirst(sess, profile.Name, user.Name)
	fillFirst(sess, profile.Email, user.Email)
	if user.Phone != "" {
		fillFirst(sess, profile.Phone, user.Phone)
	}
	uploadFirst(sess, profile.Resume, user.ResumePath)
}

func absResumePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func (e *Engine) afterSubmit(sess *browser.Session, p platform.Platform, profile formSelectors) Result {
	_ = sess.Sleep(2 * time.Second)

	if waitAny(sess, profile.Success, fieldTimeout) {
		e.log.Info("application submitted", "platform", p)
		return Result{Status: StatusSubmitted, Platform: p, Message: "application submitted"}
	}
	if msg, _ := sess.CollectText(errorTextSelector, fieldTimeout); msg != "" {
		return failure(p, FailFormError, "form reported errors after submit: "+msg)
	}

	e.log.Info("application submitted without confirmation", "platform", p)
	return Result{Status: StatusUncertain, Platform: p, Message: "submission confirmation pending"}
}

func clickFirst(sess *browser.Session, candidates []browser.Lookup, timeout time.Duration) bool {
	for _, l := range candidates {
		if err := sess.Click(l, timeout); err == nil {
			return true
		}
	}
	return false
}

func fillFirst(sess *browser.Session, candidates []browser.Lookup, value string) {
	if value == "" {
		return
	}
	for _, l := range candidates {
		if err := sess.Fill(l, value, fieldTimeout); err == nil {
			return
		}
	}
}

func uploadFirst(sess *browser.Session, candidates []browser.Lookup, path string) {
	for _, l := range candidates {
		if err := sess.Upload(l, path, fieldTimeout); err == nil {
			return
		}
	}
}

func waitAny(sess *browser.Session, candidates []browser.Lookup, timeout time.Duration) bool {
	for _, l := range candidates {
		if err := sess.WaitVisible(l, timeout); err == nil {
			return true
		}
	}
	return false
}
