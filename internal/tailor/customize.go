package tailor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"applypilot/internal/match"
	"applypilot/internal/observability"
	"applypilot/internal/oracle"
)

// Pipeline rewrites a parsed resume toward a specific job. Every sub-step
// degrades to the original section on failure; customization never hard-fails
// a run on its own.
type Pipeline struct {
	oracle oracle.Client
	engine *match.Engine
	log    *slog.Logger
}

func New(client oracle.Client, engine *match.Engine, log *slog.Logger) *Pipeline {
	return &Pipeline{oracle: client, engine: engine, log: log}
}

// Customize produces a job-targeted variant of the profile. Education,
// certifications and achievements carry over unchanged.
func (p *Pipeline) Customize(ctx context.Context, profile match.ResumeProfile, reqs match.JobRequirements) match.ResumeProfile {
	out := profile
	out.Summary = p.rewriteSummary(ctx, profile, reqs)
	out.Experience = p.rewriteExperience(ctx, profile.Experience, reqs)
	out.Skills = OptimizeSkills(profile.Skills, reqs)
	out.Projects = PrioritizeProjects(profile.Projects, reqs)
	return out
}

const summaryPrompt = `You are a professional resume writer. Rewrite the following professional summary to better match the job requirements while staying truthful to the candidate's experience.

Original Summary:
%s

Job Requirements:
- Required Skills: %s
- Key Responsibilities: %s
- Experience Level: %s

Candidate's Experience:
%s

Instructions:
1. Keep the summary concise (3-4 sentences)
2. Emphasize skills that match job requirements
3. Use keywords from the job description
4. Maintain truthfulness - don't add fake experience
5. Make it ATS-friendly with relevant keywords
6. Sound professional and confident

Return ONLY the rewritten summary text, no additional formatting or explanation.`

func (p *Pipeline) rewriteSummary(ctx context.Context, profile match.ResumeProfile, reqs match.JobRequirements) string {
	observability.IncOracleCall("summary_rewrite")

	roles := make([]string, 0, len(profile.Experience))
	for _, exp := range profile.Experience {
		roles = append(roles, fmt.Sprintf("%s at %s", exp.Title, exp.Company))
	}

	rewritten, err := p.oracle.Complete(ctx, oracle.Request{
		Prompt: fmt.Sprintf(summaryPrompt,
			profile.Summary,
			strings.Join(reqs.RequiredSkills, ", "),
			strings.Join(firstN(reqs.Responsibilities, 3), ", "),
			reqs.ExperienceLevel,
			strings.Join(roles, ", "),
		),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		p.log.Warn("summary rewrite failed, keeping original", "error", err)
		return profile.Summary
	}
	return strings.TrimSpace(rewritten)
}

const experiencePrompt = `You are a professional resume writer. Rewrite the following work experience to better match the job requirements while staying truthful.

Original Experience:
Company: %s
Title: %s
Duration: %s
Responsibilities:
%s

Job Requirements:
- Required Skills: %s
- Key Responsibilities: %s

Instructions:
1. Rewrite responsibilities to emphasize relevant skills
2. Use action verbs and quantify achievements where possible
3. Incorporate keywords from job requirements naturally
4. Keep it truthful - don't add fake accomplishments
5. Prioritize most relevant responsibilities first
6. Keep each bullet point concise (1-2 lines)

Return ONLY a JSON object with this format:
{
  "responsibilities": ["string", "string", ...]
}`

// rewriteExperience makes one oracle call per entry; an entry whose rewrite
// fails keeps its original bullets.
func (p *Pipeline) rewriteExperience(ctx context.Context, entries []match.Experience, reqs match.JobRequirements) []match.Experience {
	if len(entries) == 0 {
		return entries
	}
	out := make([]match.Experience, 0, len(entries))
	for _, exp := range entries {
		out = append(out, p.rewriteOneExperience(ctx, exp, reqs))
	}
	return out
}

func (p *Pipeline) rewriteOneExperience(ctx context.Context, exp match.Experience, reqs match.JobRequirements) match.Experience {
	observability.IncOracleCall("experience_rewrite")

	bullets := make([]string, 0, len(exp.Responsibilities))
	for _, r := range exp.Responsibilities {
		bullets = append(bullets, "- "+r)
	}

	raw, err := p.oracle.Complete(ctx, oracle.Request{
		Prompt: fmt.Sprintf(experiencePrompt,
			exp.Company, exp.Title, exp.Duration,
			strings.Join(bullets, "\n"),
			strings.Join(reqs.RequiredSkills, ", "),
			strings.Join(reqs.Responsibilities, ", "),
		),
		Temperature: 0.7,
		MaxTokens:   500,
		JSONOnly:    true,
	})
	if err != nil {
		p.log.Warn("experience rewrite failed, keeping original", "company", exp.Company, "error", err)
		return exp
	}

	var parsed struct {
		Responsibilities []string `json:"responsibilities"`
	}
	if err := json.Unmarshal([]byte(oracle.CleanJSON(raw)), &parsed); err != nil || len(parsed.Responsibilities) == 0 {
		p.log.Warn("experience rewrite returned bad schema, keeping original", "company", exp.Company)
		return exp
	}

	exp.Responsibilities = parsed.Responsibilities
	return exp
}

// genericSkills are soft skills safe to surface when a job explicitly
// requires them, even if the resume never listed them.
var genericSkills = []string{"Communication", "Teamwork", "Problem Solving", "Time Management"}

// OptimizeSkills reorders deterministically: skills matching required terms
// first, then preferred, then the remainder. Generic required skills missing
// from the resume are appended to the required group.
func OptimizeSkills(skills []string, reqs match.JobRequirements) []string {
	required := lowerAll(reqs.RequiredSkills)
	preferred := lowerAll(reqs.PreferredSkills)

	var matchingRequired, matchingPreferred, rest []string
	for _, skill := range skills {
		lower := strings.ToLower(skill)
		switch {
		case anyContains(required, lower):
			matchingRequired = append(matchingRequired, skill)
		case anyContains(preferred, lower):
			matchingPreferred = append(matchingPreferred, skill)
		default:
			rest = append(rest, skill)
		}
	}

	for _, reqSkill := range reqs.RequiredSkills {
		if !isGenericSkill(reqSkill) {
			continue
		}
		already := false
		for _, s := range matchingRequired {
			if strings.Contains(strings.ToLower(s), strings.ToLower(reqSkill)) {
				already = true
				break
			}
		}
		if !already {
			matchingRequired = append(matchingRequired, reqSkill)
		}
	}

	out := make([]string, 0, len(matchingRequired)+len(matchingPreferred)+len(rest))
	out = append(out, matchingRequired...)
	out = append(out, matchingPreferred...)
	out = append(out, rest...)
	return out
}

// PrioritizeProjects scores each project +3 per required-skill term and +1
// per keyword term found in its combined text, then stable-sorts descending.
func PrioritizeProjects(projects []match.Project, reqs match.JobRequirements) []match.Project {
	if len(projects) == 0 {
		return projects
	}

	required := lowerAll(reqs.RequiredSkills)
	keywords := lowerAll(reqs.Keywords)

	type scored struct {
		project match.Project
		score   int
	}
	ranked := make([]scored, 0, len(projects))
	for _, proj := range projects {
		text := strings.ToLower(proj.Name + " " + proj.Description + " " + strings.Join(proj.Technologies, " "))
		score := 0
		for _, skill := range required {
			if strings.Contains(text, skill) {
				score += 3
			}
		}
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		ranked = append(ranked, scored{project: proj, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]match.Project, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.project)
	}
	return out
}

func isGenericSkill(skill string) bool {
	lower := strings.ToLower(skill)
	for _, g := range genericSkills {
		if strings.Contains(lower, strings.ToLower(g)) {
			return true
		}
	}
	return false
}

func anyContains(candidates []string, skill string) bool {
	for _, c := range candidates {
		if strings.Contains(skill, c) || strings.Contains(c, skill) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}

func firstN(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
