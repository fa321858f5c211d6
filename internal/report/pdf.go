package report

import (
	"fmt"
	"strings"

	"github.com/unidoc/unipdf/v3/creator"

	"applypilot/internal/tailor"
)

// renderPDF lays the report out as a single-column document: posting header,
// match score, skill breakdown, recommendation.
func renderPDF(path string, page *jobPage, analysis tailor.Analysis) error {
	c := creator.New()
	c.SetPageMargins(50, 50, 50, 50)

	heading(c, "Job Match Report", 18)
	heading(c, page.Title, 14)
	body(c, fmt.Sprintf("%s — %s", page.Company, orNA(page.Location)))
	body(c, "")

	heading(c, fmt.Sprintf("Match Score: %d%%", analysis.Match.MatchPercentage), 14)
	body(c, fmt.Sprintf("Recommendation (%s): %s",
		analysis.Recommendation.Type, analysis.Recommendation.Message))
	body(c, "")

	heading(c, "Matching Required Skills", 12)
	body(c, orNone(analysis.Match.MatchingRequired))
	heading(c, "Missing Required Skills", 12)
	body(c, orNone(analysis.Match.MissingRequired))
	heading(c, "Matching Preferred Skills", 12)
	body(c, orNone(analysis.Match.MatchingPreferred))
	body(c, "")

	heading(c, "Job Description", 12)
	body(c, truncate(page.Description, 4000))

	if err := c.WriteToFile(path); err != nil {
		return fmt.Errorf("writing report pdf: %w", err)
	}
	return nil
}

func heading(c *creator.Creator, text string, size float64) {
	if text == "" {
		return
	}
	p := c.NewParagraph(text)
	p.SetFontSize(size)
	p.SetMargins(0, 0, 8, 4)
	_ = c.Draw(p)
}

func body(c *creator.Creator, text string) {
	if text == "" {
		return
	}
	p := c.NewParagraph(text)
	p.SetFontSize(10)
	p.SetMargins(0, 0, 0, 4)
	_ = c.Draw(p)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
