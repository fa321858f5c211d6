package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"applypilot/internal/browser"
	"applypilot/internal/observability"
	"applypilot/internal/platform"
)

// JobPosting is the structured result of scraping one job page. Transient:
// held only for the duration of one pipeline run.
type JobPosting struct {
	Platform    platform.Platform `json:"platform"`
	Title       string            `json:"title"`
	Company     string            `json:"company"`
	Location    string            `json:"location,omitempty"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
}

// Extractor scrapes job postings through a real (headless) browser session,
// trying ordered selector fallback chains per semantic field.
type Extractor struct {
	log  *slog.Logger
	opts browser.Options

	// per-candidate wait before falling through to the next lookup
	fieldTimeout time.Duration

	newSession func(ctx context.Context, opts browser.Options) (*browser.Session, error)
}

func New(log *slog.Logger) *Extractor {
	return &Extractor{
		log: log,
		opts: browser.Options{
			Headless:        true,
			PageLoadTimeout: 30 * time.Second,
		},
		fieldTimeout: 5 * time.Second,
		newSession:   browser.NewSession,
	}
}

// Extract opens the job page and pulls title, company, location and
// description. The description is mandatory; other fields degrade to
// placeholders the way adversarial third-party markup demands.
func (e *Extractor) Extract(ctx context.Context, jobURL string) (*JobPosting, error) {
	if err := validateURL(jobURL); err != nil {
		return nil, newError(KindInvalidURL, jobURL, err)
	}

	p := platform.Detect(jobURL)
	profile, ok := selectorProfiles[p]
	if !ok {
		return nil, newError(KindUnsupportedPlatform, jobURL,
			fmt.Errorf("unsupported job platform %q: only Indeed and Wellfound job pages can be extracted", p.DisplayName()))
	}

	observability.IncExtraction(string(p))
	start := time.Now()

	sess, err := e.newSession(ctx, e.opts)
	if err != nil {
		return nil, newError(KindNetwork, jobURL, err)
	}
	defer sess.Close()

	if err := sess.Navigate(jobURL); err != nil {
		return nil, e.classifyNavError(jobURL, err)
	}

	// Gate on the posting content having rendered at all; dynamic pages keep
	// loading well past domcontentloaded.
	if err := e.waitAny(sess, profile.WaitFor); err != nil {
		if browser.IsTimeout(err) {
			return nil, newError(KindTimeout, jobURL, fmt.Errorf("job page did not render within %s", e.opts.PageLoadTimeout))
		}
		return nil, newError(KindNetwork, jobURL, err)
	}

	// Boards embed a schema.org JobPosting for crawlers; it survives markup
	// redesigns that break the selector chains, so it backs every field up.
	var ld *ldPosting
	if scripts, err := sess.ScriptContents("application/ld+json", e.fieldTimeout); err == nil {
		ld = parseJobPostingLD(scripts)
	}

	description := NormalizeText(e.firstText(sess, profile.Description))
	if description == "" && ld != nil {
		description = NormalizeText(ld.Description)
	}
	if description == "" {
		return nil, newError(KindDescriptionNotFound, jobURL,
			fmt.Errorf("could not extract job description from %s page", p.DisplayName()))
	}
	if len(description) < MinDescriptionLength {
		return nil, newError(KindDescriptionNotFound, jobURL,
			fmt.Errorf("extracted description too short (%d chars) to be a job posting", len(description)))
	}

	posting := &JobPosting{
		Platform:    p,
		Title:       fieldOrNA(fallback(e.firstText(sess, profile.Title), ld, func(l *ldPosting) string { return l.Title })),
		Company:     fieldOrNA(fallback(e.firstText(sess, profile.Company), ld, func(l *ldPosting) string { return l.Company })),
		Location:    NormalizeText(fallback(e.firstText(sess, profile.Location), ld, func(l *ldPosting) string { return l.Location })),
		Description: description,
		URL:         jobURL,
	}

	e.log.Info("job posting extracted",
		"platform", p,
		"title", posting.Title,
		"company", posting.Company,
		"description_len", len(posting.Description),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return posting, nil
}

// firstText walks the fallback chain and returns the first non-empty visible
// text, or "" when no candidate resolves.
func (e *Extractor) firstText(sess *browser.Session, candidates []browser.Lookup) string {
	for _, l := range candidates {
		text, err := sess.Text(l, e.fieldTimeout)
		if err != nil {
			continue
		}
		if text != "" {
			return text
		}
	}
	return ""
}

func (e *Extractor) waitAny(sess *browser.Session, candidates []browser.Lookup) error {
	// A profile with no readiness probe gates on nothing.
	if len(candidates) == 0 {
		return nil
	}
	var lastErr error
	for _, l := range candidates {
		if err := sess.WaitVisible(l, e.opts.PageLoadTimeout/time.Duration(len(candidates))); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (e *Extractor) classifyNavError(jobURL string, err error) *Error {
	if browser.IsTimeout(err) {
		return newError(KindTimeout, jobURL, fmt.Errorf("failed to load job page within %s: %w", e.opts.PageLoadTimeout, err))
	}
	return newError(KindNetwork, jobURL, fmt.Errorf("network error while accessing job page: %w", err))
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("empty job url")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("job url has no host")
	}
	return nil
}

func fallback(domText string, ld *ldPosting, pick func(*ldPosting) string) string {
	if domText != "" || ld == nil {
		return domText
	}
	return pick(ld)
}

func fieldOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return NormalizeText(s)
}
