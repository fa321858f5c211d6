package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"applypilot/internal/httpx"
	"applypilot/internal/observability"
	"applypilot/internal/platform"
	"applypilot/internal/tailor"
)

// Generator produces read-only match reports for LinkedIn postings. LinkedIn
// never gets an automated submission; the report is the whole deliverable.
type Generator struct {
	fetcher  *httpx.Fetcher
	pipeline *tailor.Pipeline
	dir      string
	log      *slog.Logger
}

func NewGenerator(fetcher *httpx.Fetcher, pipeline *tailor.Pipeline, dir string, log *slog.Logger) *Generator {
	fetcher.SetHostLimit("linkedin.com", 3*time.Second, 1)
	return &Generator{fetcher: fetcher, pipeline: pipeline, dir: dir, log: log}
}

// Report is what the API returns alongside the artifact path.
type Report struct {
	JobTitle string          `json:"jobTitle"`
	Company  string          `json:"company"`
	Analysis tailor.Analysis `json:"analysis"`
	PDFPath  string          `json:"pdfPath"`
}

// Generate scrapes the posting, scores the resume against it and writes the
// PDF artifact. Only LinkedIn URLs are accepted.
func (g *Generator) Generate(ctx context.Context, jobURL, resumeText string) (*Report, error) {
	if platform.Detect(jobURL) != platform.LinkedIn {
		return nil, fmt.Errorf("reports are only generated for linkedin postings, got %s", jobURL)
	}
	observability.IncReport()

	page, err := scrapeJobPage(ctx, g.fetcher, jobURL)
	if err != nil {
		observability.IncError("scrape", observability.StageReport)
		return nil, err
	}

	analysis, err := g.pipeline.Analyze(ctx, resumeText, page.Description)
	if err != nil {
		observability.IncError("analysis", observability.StageReport)
		return nil, fmt.Errorf("analyzing posting: %w", err)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports dir: %w", err)
	}
	path := filepath.Join(g.dir, fmt.Sprintf("report_%s.pdf", uuid.NewString()))
	if err := renderPDF(path, page, analysis); err != nil {
		observability.IncError("render", observability.StageReport)
		return nil, err
	}

	g.log.Info("report generated",
		"job", page.Title,
		"company", page.Company,
		"match", analysis.Match.MatchPercentage,
		"path", path,
	)
	return &Report{
		JobTitle: page.Title,
		Company:  page.Company,
		Analysis: analysis,
		PDFPath:  path,
	}, nil
}
