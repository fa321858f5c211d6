package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"applypilot/internal/automation"
	"applypilot/internal/extractor"
	"applypilot/internal/observability"
	"applypilot/internal/resume"
	"applypilot/internal/store"
	"applypilot/internal/tailor"
)

// Pipeline stages, used in PipelineError and error metrics.
const (
	StageStore      = "store"
	StageResume     = "resume"
	StageExtraction = "extraction"
	StageTailoring  = "tailoring"
	StageDocument   = "document"
	StageAutomation = "automation"
)

// PipelineError marks which stage sank an application run, so the API can map
// the underlying cause to a status code.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) *PipelineError {
	observability.IncError("pipeline", stage)
	return &PipelineError{Stage: stage, Err: err}
}

// ErrAlreadyApplied rejects a run for a job the user already has a submitted
// application for. Boards treat duplicate submissions as spam.
var ErrAlreadyApplied = errors.New("an application for this job already exists")

// Collaborator contracts. Each stage owner satisfies its interface directly;
// tests substitute fakes.
type UserStore interface {
	GetUser(ctx context.Context, userID int) (*store.User, error)
	HasApplied(ctx context.Context, userID int, jobLink string) (bool, error)
	SaveApplication(ctx context.Context, app store.Application) (int, error)
}

type JobExtractor interface {
	Extract(ctx context.Context, jobURL string) (*extractor.JobPosting, error)
}

type ResumeTailor interface {
	TailorText(ctx context.Context, resumeText, jobDescription string) (string, tailor.Analysis, error)
}

type FormApplier interface {
	Apply(ctx context.Context, jobURL string, user automation.UserData) automation.Result
}

// Outcome is the full record of one application run. Partial means tailoring
// succeeded and a record was persisted, but the automated submission did not
// go through.
type Outcome struct {
	ApplicationID      int                   `json:"applicationId"`
	Job                *extractor.JobPosting `json:"job"`
	Analysis           tailor.Analysis       `json:"analysis"`
	TailoredResumePath string                `json:"tailoredResumePath"`
	Automation         automation.Result     `json:"automation"`
	Partial            bool                  `json:"partial"`
}

// Orchestrator runs the application pipeline end to end: look up the user,
// extract the posting, tailor the resume, drive the application form, persist
// the record.
type Orchestrator struct {
	store       UserStore
	extractor   JobExtractor
	tailor      ResumeTailor
	applier     FormApplier
	locker      *resume.Locker
	tailoredDir string
	log         *slog.Logger
}

func NewOrchestrator(
	st UserStore,
	ex JobExtractor,
	tl ResumeTailor,
	ap FormApplier,
	locker *resume.Locker,
	tailoredDir string,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:       st,
		extractor:   ex,
		tailor:      tl,
		applier:     ap,
		locker:      locker,
		tailoredDir: tailoredDir,
		log:         log,
	}
}

// Apply executes one run for one user and one posting. Stages run strictly in
// sequence; a failure before tailoring aborts with no record, a failure after
// tailoring persists an error record and reports a partial outcome.
func (o *Orchestrator) Apply(ctx context.Context, userID int, jobURL string) (*Outcome, error) {
	started := time.Now()

	user, err := o.store.GetUser(ctx, userID)
	if err != nil {
		return nil, stageErr(StageStore, err)
	}
	applied, err := o.store.HasApplied(ctx, userID, jobURL)
	if err != nil {
		return nil, stageErr(StageStore, err)
	}
	if applied {
		return nil, stageErr(StageStore, ErrAlreadyApplied)
	}
	if user.ResumePath == "" {
		return nil, stageErr(StageResume, fmt.Errorf("user %d has no resume on file", userID))
	}
	if _, err := os.Stat(user.ResumePath); err != nil {
		return nil, stageErr(StageResume, fmt.Errorf("resume file missing: %w", err))
	}

	// The resume document is mutated below, so the whole window from first
	// read to final write holds the user's lock.
	release, err := o.locker.Acquire(ctx, strconv.Itoa(userID))
	if err != nil {
		return nil, stageErr(StageResume, err)
	}
	defer release()

	job, err := o.extractor.Extract(ctx, jobURL)
	if err != nil {
		return nil, stageErr(StageExtraction, err)
	}

	if _, err := resume.CreateBackup(user.ResumePath); err != nil {
		// The run still makes sense without a backup; the tailored copy is
		// saved separately either way.
		o.log.Warn("resume backup failed", "user", userID, "error", err)
	}

	resumeText, err := resume.ReadContent(user.ResumePath)
	if err != nil {
		return nil, stageErr(StageResume, err)
	}

	tailoredText, analysis, err := o.tailor.TailorText(ctx, resumeText, job.Description)
	if err != nil {
		return nil, stageErr(StageTailoring, err)
	}

	tailoredPath, err := resume.SaveTailored(o.tailoredDir, strconv.Itoa(userID), tailoredText)
	if err != nil {
		return nil, stageErr(StageDocument, err)
	}
	if err := resume.UpdateContent(user.ResumePath, tailoredText); err != nil {
		// Read-only formats keep their original; the tailored copy above is
		// what gets referenced in the record.
		o.log.Warn("resume document not updated in place", "user", userID, "error", err)
	}

	result := o.applier.Apply(ctx, jobURL, automation.UserData{
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		ResumePath: user.ResumePath,
	})

	status := store.StatusApplied
	if !result.Submitted() {
		status = store.StatusError
	}
	appID, err := o.store.SaveApplication(ctx, store.Application{
		UserID:             userID,
		JobLink:            jobURL,
		JobDescription:     job.Description,
		TailoredResumePath: tailoredPath,
		Status:             status,
		StatusDetail:       result.Message,
		MatchPercentage:    analysis.Match.MatchPercentage,
	})
	if err != nil {
		return nil, stageErr(StageStore, err)
	}

	observability.IncApplication()
	observability.ObservePipelineDuration(time.Since(started).Seconds())

	o.log.Info("application run finished",
		"user", userID,
		"job", job.Title,
		"platform", job.Platform,
		"status", status,
		"match", analysis.Match.MatchPercentage,
		"duration", time.Since(started).Round(time.Millisecond),
	)

	return &Outcome{
		ApplicationID:      appID,
		Job:                job,
		Analysis:           analysis,
		TailoredResumePath: tailoredPath,
		Automation:         result,
		Partial:            !result.Submitted(),
	}, nil
}
