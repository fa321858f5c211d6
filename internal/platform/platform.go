package platform

import "strings"

// Platform identifies a supported job posting source.
type Platform string

const (
	Indeed    Platform = "indeed"
	Wellfound Platform = "wellfound"
	LinkedIn  Platform = "linkedin"
	Unknown   Platform = ""
)

// Detect classifies a job URL by hostname substring. Returns Unknown for
// anything outside the supported sources.
func Detect(rawURL string) Platform {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "indeed.com"):
		return Indeed
	case strings.Contains(lower, "wellfound.com"), strings.Contains(lower, "angel.co"):
		return Wellfound
	case strings.Contains(lower, "linkedin.com"):
		return LinkedIn
	default:
		return Unknown
	}
}

func (p Platform) Known() bool {
	return p != Unknown
}

// SupportsAutoApply reports whether automated submission is available for the
// platform. LinkedIn is scraped in report-only mode and never auto-applied.
func (p Platform) SupportsAutoApply() bool {
	return p == Indeed || p == Wellfound
}

func (p Platform) DisplayName() string {
	switch p {
	case Indeed:
		return "Indeed"
	case Wellfound:
		return "Wellfound"
	case LinkedIn:
		return "LinkedIn"
	default:
		return "Unknown"
	}
}
