package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"applypilot/internal/browser"
	"applypilot/internal/platform"
)

func testEngine() *Engine {
	e := NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.newSession = func(context.Context, browser.Options) (*browser.Session, error) {
		return nil, errors.New("session must not be opened")
	}
	return e
}

func TestApplyRejectsUnsupportedPlatforms(t *testing.T) {
	e := testEngine()
	user := UserData{Name: "Ada Lovelace", Email: "ada@example.com", ResumePath: "/tmp/resume.txt"}

	for _, url := range []string{
		"https://www.linkedin.com/jobs/view/123",
		"https://jobs.example.com/opening/42",
	} {
		res := e.Apply(context.Background(), url, user)
		assert.Equal(t, StatusFailed, res.Status, url)
		assert.Equal(t, FailUnsupportedPlatform, res.Kind, url)
		assert.False(t, res.Submitted(), url)
	}
}

func TestApplyRejectsIncompleteUserData(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		user UserData
	}{
		{"missing everything", UserData{}},
		{"missing email", UserData{Name: "Ada Lovelace"}},
		{"missing name", UserData{Email: "ada@example.com"}},
		{"blank name", UserData{Name: "   ", Email: "ada@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Apply(context.Background(), "https://www.indeed.com/viewjob?jk=1", tt.user)
			assert.Equal(t, StatusFailed, res.Status)
			assert.Equal(t, FailIncompleteUser, res.Kind)
			assert.Equal(t, platform.Indeed, res.Platform)
		})
	}
}

func TestApplyRejectsMissingResumePath(t *testing.T) {
	e := testEngine()
	sessionOpened := false
	e.newSession = func(context.Context, browser.Options) (*browser.Session, error) {
		sessionOpened = true
		return nil, errors.New("session must not be opened")
	}

	for _, path := range []string{"", "   "} {
		res := e.Apply(context.Background(), "https://www.indeed.com/viewjob?jk=1", UserData{
			Name: "Ada Lovelace", Email: "ada@example.com", ResumePath: path,
		})
		assert.Equal(t, StatusFailed, res.Status)
		assert.Equal(t, FailMissingResume, res.Kind)
		assert.Equal(t, platform.Indeed, res.Platform)
	}
	assert.False(t, sessionOpened)
}

func TestApplyReportsBrowserLaunchFailure(t *testing.T) {
	e := testEngine()
	res := e.Apply(context.Background(), "https://wellfound.com/jobs/999", UserData{
		Name: "Ada Lovelace", Email: "ada@example.com", ResumePath: "/tmp/resume.txt",
	})

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, FailBrowser, res.Kind)
	assert.Equal(t, platform.Wellfound, res.Platform)
}

func TestNewEngineDefaultsToVisibleBrowser(t *testing.T) {
	e := NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, e.opts.Headless)
	assert.True(t, e.WithHeadless(true).opts.Headless)
}

func TestAbsResumePath(t *testing.T) {
	abs := absResumePath("resumes/ada.docx")
	assert.True(t, filepath.IsAbs(abs))
	assert.Equal(t, "ada.docx", filepath.Base(abs))

	assert.Equal(t, "/srv/resumes/ada.docx", absResumePath("/srv/resumes/ada.docx"))
}

func TestUserDataComplete(t *testing.T) {
	assert.True(t, UserData{Name: "Ada", Email: "a@b.c"}.Complete())
	assert.False(t, UserData{Name: "Ada"}.Complete())
	assert.False(t, UserData{Email: "a@b.c"}.Complete())
}

func TestResultSubmitted(t *testing.T) {
	assert.True(t, Result{Status: StatusSubmitted}.Submitted())
	assert.True(t, Result{Status: StatusUncertain}.Submitted())
	assert.False(t, Result{Status: StatusFailed}.Submitted())
}

func TestEveryAutoApplyPlatformHasAFormProfile(t *testing.T) {
	for _, p := range []platform.Platform{platform.Indeed, platform.Wellfound} {
		profile, ok := formProfiles[p]
		assert.True(t, ok, p)
		assert.NotEmpty(t, profile.Apply, p)
		assert.NotEmpty(t, profile.Submit, p)
		assert.NotEmpty(t, profile.Success, p)
		assert.NotEmpty(t, profile.Login, p)
	}
	_, ok := formProfiles[platform.LinkedIn]
	assert.False(t, ok)
}
