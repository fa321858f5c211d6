package tailor

import (
	"fmt"
	"strings"

	"applypilot/internal/match"
)

// Render flattens a profile into the plain-text resume layout written back
// into the candidate's document. Empty sections are omitted entirely.
func Render(profile match.ResumeProfile) string {
	var b strings.Builder

	if profile.Summary != "" {
		b.WriteString("PROFESSIONAL SUMMARY\n")
		b.WriteString(profile.Summary)
		b.WriteString("\n\n")
	}

	if len(profile.Skills) > 0 {
		b.WriteString("SKILLS\n")
		b.WriteString(strings.Join(profile.Skills, " | "))
		b.WriteString("\n\n")
	}

	if len(profile.Experience) > 0 {
		b.WriteString("WORK EXPERIENCE\n")
		for _, exp := range profile.Experience {
			fmt.Fprintf(&b, "\n%s - %s\n", exp.Title, exp.Company)
			if exp.Duration != "" {
				b.WriteString(exp.Duration + "\n")
			}
			for _, r := range exp.Responsibilities {
				b.WriteString("- " + r + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(profile.Projects) > 0 {
		b.WriteString("PROJECTS\n")
		for _, proj := range profile.Projects {
			fmt.Fprintf(&b, "\n%s\n", proj.Name)
			if proj.Description != "" {
				b.WriteString(proj.Description + "\n")
			}
			if len(proj.Technologies) > 0 {
				b.WriteString("Technologies: " + strings.Join(proj.Technologies, ", ") + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(profile.Education) > 0 {
		b.WriteString("EDUCATION\n")
		for _, edu := range profile.Education {
			fmt.Fprintf(&b, "\n%s - %s\n", edu.Degree, edu.Institution)
			if edu.Year != "" {
				b.WriteString(edu.Year + "\n")
			}
			if edu.Details != "" {
				b.WriteString(edu.Details + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(profile.Certifications) > 0 {
		b.WriteString("CERTIFICATIONS\n")
		for _, cert := range profile.Certifications {
			line := "- " + cert.Name
			if cert.Issuer != "" {
				line += " (" + cert.Issuer
				if cert.Year != "" {
					line += ", " + cert.Year
				}
				line += ")"
			} else if cert.Year != "" {
				line += " (" + cert.Year + ")"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(profile.Achievements) > 0 {
		b.WriteString("ACHIEVEMENTS\n")
		for _, a := range profile.Achievements {
			b.WriteString("- " + a + "\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
