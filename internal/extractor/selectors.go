package extractor

import (
	"applypilot/internal/browser"
	"applypilot/internal/platform"
)

// fieldSelectors holds the ordered lookup candidates for each semantic field
// of a job page. Candidates are tried in order and the first visible,
// non-empty match wins. Kept as data so a new platform is a new entry here,
// not new control flow.
type fieldSelectors struct {
	// WaitFor gates on the page having rendered its posting content before
	// individual fields are read.
	WaitFor     []browser.Lookup
	Title       []browser.Lookup
	Company     []browser.Lookup
	Location    []browser.Lookup
	Description []browser.Lookup
}

var selectorProfiles = map[platform.Platform]fieldSelectors{
	platform.Indeed: {
		WaitFor: []browser.Lookup{
			browser.CSS(".jobsearch-jobDescriptionText"),
			browser.CSS("#jobDescriptionText"),
		},
		Title: []browser.Lookup{
			browser.CSS("h1.jobsearch-JobInfoHeader-title"),
			browser.CSS("h2.jobsearch-JobInfoHeader-title"),
			browser.CSS(".jobsearch-JobInfoHeader-title"),
		},
		Company: []browser.Lookup{
			browser.CSS(`[data-company-name="true"]`),
			browser.CSS(".jobsearch-InlineCompanyRating-companyHeader a"),
			browser.CSS(".jobsearch-CompanyInfoContainer a"),
		},
		Location: []browser.Lookup{
			browser.CSS(`[data-testid="job-location"]`),
			browser.CSS(".jobsearch-JobInfoHeader-subtitle div"),
		},
		Description: []browser.Lookup{
			browser.CSS(".jobsearch-jobDescriptionText"),
			browser.CSS("#jobDescriptionText"),
		},
	},
	platform.Wellfound: {
		WaitFor: []browser.Lookup{
			browser.CSS(`[data-test="JobDescription"]`),
			browser.CSS(".job-description"),
			browser.CSS(`[class^="styles_description__"]`),
		},
		Title: []browser.Lookup{
			browser.CSS(`[data-test="JobTitle"]`),
			browser.CSS("h1"),
			browser.CSS(`[class^="styles_title__"]`),
		},
		Company: []browser.Lookup{
			browser.CSS(`[data-test="StartupLink"]`),
			browser.CSS(".company-name"),
			browser.CSS(`[class^="styles_company__"]`),
		},
		Location: []browser.Lookup{
			browser.CSS(`[data-test="JobLocation"]`),
			browser.CSS(".job-location"),
		},
		Description: []browser.Lookup{
			browser.CSS(`[data-test="JobDescription"]`),
			browser.CSS(".job-description"),
			browser.CSS(`[class^="styles_description__"]`),
		},
	},
}
