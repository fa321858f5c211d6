package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"applypilot/internal/httpx"
)

// jobPage is the static view of a LinkedIn job posting. LinkedIn renders job
// pages server-side for crawlers, so a polite static fetch is enough for the
// read-only report; no browser session and no login are ever involved.
type jobPage struct {
	Title       string
	Company     string
	Location    string
	Description string
}

var (
	titleSelectors = []string{
		"h1.top-card-layout__title",
		"h1.topcard__title",
		"h1",
	}
	companySelectors = []string{
		"a.topcard__org-name-link",
		"span.topcard__flavor",
		".top-card-layout__card a[data-tracking-control-name*='org-name']",
	}
	locationSelectors = []string{
		"span.topcard__flavor--bullet",
		".top-card-layout__second-subline span",
	}
	descriptionSelectors = []string{
		"div.show-more-less-html__markup",
		"div.description__text",
		"section.description",
	}
)

func scrapeJobPage(ctx context.Context, fetcher *httpx.Fetcher, jobURL string) (*jobPage, error) {
	doc, err := fetcher.FetchDocument(ctx, jobURL)
	if err != nil {
		return nil, fmt.Errorf("fetching job page: %w", err)
	}

	page := &jobPage{
		Title:       firstText(doc, titleSelectors),
		Company:     firstText(doc, companySelectors),
		Location:    firstText(doc, locationSelectors),
		Description: firstText(doc, descriptionSelectors),
	}
	if page.Description == "" {
		return nil, fmt.Errorf("no job description found at %s", jobURL)
	}
	return page, nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := collapseWhitespace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return strings.Join(lines, "\n")
}
