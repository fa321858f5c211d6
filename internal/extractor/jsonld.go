package extractor

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// ldPosting is the subset of a schema.org JobPosting the extractor can use
// when the visible DOM yields nothing. Job boards embed it for search
// engines, which makes it a stable fallback across markup redesigns.
type ldPosting struct {
	Title       string
	Company     string
	Location    string
	Description string
}

// parseJobPostingLD scans raw JSON-LD script bodies for a JobPosting object,
// including @graph wrappers and top-level arrays.
func parseJobPostingLD(scripts []string) *ldPosting {
	for _, raw := range scripts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}
		if posting := findJobPosting(payload); posting != nil {
			return posting
		}
	}
	return nil
}

func findJobPosting(payload any) *ldPosting {
	switch t := payload.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			return postingFromObject(t)
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				if posting := findJobPosting(item); posting != nil {
					return posting
				}
			}
		}
	case []any:
		for _, item := range t {
			if posting := findJobPosting(item); posting != nil {
				return posting
			}
		}
	}
	return nil
}

func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func postingFromObject(obj map[string]any) *ldPosting {
	p := &ldPosting{
		Title:       stringField(obj["title"]),
		Description: stripHTML(stringField(obj["description"])),
	}
	if org, ok := obj["hiringOrganization"].(map[string]any); ok {
		p.Company = stringField(org["name"])
	}
	if loc, ok := obj["jobLocation"].(map[string]any); ok {
		if addr, ok := loc["address"].(map[string]any); ok {
			p.Location = stringField(addr["addressLocality"])
		}
	}
	return p
}

func stringField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// stripHTML flattens the HTML-formatted description bodies JSON-LD carries
// into plain text.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "p", "br", "li", "div", "ul", "ol", "h1", "h2", "h3", "h4":
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
