package match

import (
	"fmt"
	"math"
	"strings"
)

// skillMatches reports whether two case-folded skill strings match under the
// permissive bidirectional containment rule: either contains the other. This
// tolerates naming variants ("Postgres" vs "PostgreSQL") at the cost of
// precision; abbreviations with no shared substring ("JS" vs "JavaScript")
// still miss.
func skillMatches(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func anyMatches(userSkills []string, jobSkill string) bool {
	for _, us := range userSkills {
		if skillMatches(us, jobSkill) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MatchSkills compares a candidate's skills against job requirements. Pure
// and deterministic: required and preferred lists are matched independently,
// and the percentage covers required skills only (100 when none are
// required).
func MatchSkills(userSkills []string, reqs JobRequirements) SkillMatchResult {
	required := lowerAll(reqs.RequiredSkills)
	preferred := lowerAll(reqs.PreferredSkills)
	user := lowerAll(userSkills)

	res := SkillMatchResult{
		MatchingRequired:  []string{},
		MatchingPreferred: []string{},
		MissingRequired:   []string{},
		MissingPreferred:  []string{},
	}

	for _, skill := range required {
		if anyMatches(user, skill) {
			res.MatchingRequired = append(res.MatchingRequired, skill)
		} else {
			res.MissingRequired = append(res.MissingRequired, skill)
		}
	}
	for _, skill := range preferred {
		if anyMatches(user, skill) {
			res.MatchingPreferred = append(res.MatchingPreferred, skill)
		} else {
			res.MissingPreferred = append(res.MissingPreferred, skill)
		}
	}

	res.TotalRequired = len(required)
	res.MatchedRequired = len(res.MatchingRequired)
	if res.TotalRequired > 0 {
		res.MatchPercentage = int(math.Round(float64(res.MatchedRequired) / float64(res.TotalRequired) * 100))
	} else {
		res.MatchPercentage = 100
	}
	return res
}

// Recommendation is derived advice for the candidate, not part of the match
// result itself.
type Recommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Recommend tiers a match result: >=75 excellent, >=50 good, >=25 moderate,
// any match below that low, otherwise none.
func Recommend(m SkillMatchResult, requiredSkills []string) Recommendation {
	hasAnyMatch := len(m.MatchingRequired) > 0 || len(m.MatchingPreferred) > 0

	switch {
	case m.MatchPercentage >= 75:
		return Recommendation{
			Type: "excellent",
			Message: fmt.Sprintf("Excellent match! You have %d%% of required skills. You're a strong candidate for this position.",
				m.MatchPercentage),
		}
	case m.MatchPercentage >= 50:
		return Recommendation{
			Type: "good",
			Message: fmt.Sprintf("Good match! You have %d%% of required skills. Consider highlighting your relevant experience.",
				m.MatchPercentage),
		}
	case m.MatchPercentage >= 25:
		return Recommendation{
			Type: "moderate",
			Message: fmt.Sprintf("Moderate match. You have %d%% of required skills. You may want to emphasize transferable skills.",
				m.MatchPercentage),
		}
	case hasAnyMatch:
		return Recommendation{
			Type: "low",
			Message: fmt.Sprintf("Low match. You have only %d of %d required skills. Consider if this role aligns with your experience.",
				m.MatchedRequired, m.TotalRequired),
		}
	default:
		suggest := requiredSkills
		if len(suggest) > 3 {
			suggest = suggest[:3]
		}
		return Recommendation{
			Type: "none",
			Message: fmt.Sprintf("No matching skills found. This position requires skills you don't currently have listed. Consider gaining experience in: %s",
				strings.Join(suggest, ", ")),
		}
	}
}
