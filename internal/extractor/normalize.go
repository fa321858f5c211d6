package extractor

import "strings"

// MinDescriptionLength is the shortest normalized description accepted as a
// real job posting; anything shorter is treated as a failed extraction.
const MinDescriptionLength = 50

// NormalizeText collapses runs of whitespace within each line and strips
// blank lines, preserving the remaining line structure.
func NormalizeText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed == "" {
			continue
		}
		lines = append(lines, collapsed)
	}
	return strings.Join(lines, "\n")
}
