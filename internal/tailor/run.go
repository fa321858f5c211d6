package tailor

import (
	"context"
	"fmt"
	"strings"

	"applypilot/internal/match"
	"applypilot/internal/observability"
	"applypilot/internal/oracle"
)

// Analysis bundles everything learned about a resume/job pairing during one
// tailoring run. The orchestrator persists it and the API echoes it back.
type Analysis struct {
	Requirements   match.JobRequirements  `json:"requirements"`
	Match          match.SkillMatchResult `json:"match"`
	Recommendation match.Recommendation   `json:"recommendation"`
}

// Run executes the full tailoring workflow against raw resume text and a job
// description, returning the rendered resume alongside the match analysis.
func (p *Pipeline) Run(ctx context.Context, resumeText, jobDescription string) (string, Analysis, error) {
	profile, err := p.engine.ParseResume(ctx, resumeText)
	if err != nil {
		return "", Analysis{}, fmt.Errorf("parsing resume: %w", err)
	}

	reqs, err := p.engine.AnalyzeJob(ctx, jobDescription)
	if err != nil {
		return "", Analysis{}, fmt.Errorf("analyzing job description: %w", err)
	}

	result := match.MatchSkills(profile.Skills, *reqs)
	analysis := Analysis{
		Requirements:   *reqs,
		Match:          result,
		Recommendation: match.Recommend(result, reqs.RequiredSkills),
	}

	tailored := p.Customize(ctx, *profile, *reqs)
	return Render(tailored), analysis, nil
}

const wholeResumePrompt = `You are a professional resume writer. Rewrite the following resume to target the job description below.

Resume:
%s

Job Description:
%s

Instructions:
1. Keep every claim truthful to the original resume
2. Emphasize experience and skills relevant to the job
3. Use keywords from the job description naturally
4. Keep the original section structure
5. Make it ATS-friendly

Return ONLY the rewritten resume text, no additional commentary.`

// TailorText is the orchestrator entry point: one oracle call rewrites the
// whole resume at once, and the structured section-by-section pipeline serves
// as the fallback when the one-shot output is unusable.
func (p *Pipeline) TailorText(ctx context.Context, resumeText, jobDescription string) (string, Analysis, error) {
	observability.IncOracleCall("resume_tailor")

	rewritten, err := p.oracle.Complete(ctx, oracle.Request{
		Prompt:      fmt.Sprintf(wholeResumePrompt, resumeText, jobDescription),
		Temperature: 0.7,
		MaxTokens:   3000,
	})
	rewritten = strings.TrimSpace(rewritten)
	if err == nil && len(rewritten) >= len(resumeText)/2 {
		analysis, aerr := p.Analyze(ctx, resumeText, jobDescription)
		if aerr != nil {
			return "", Analysis{}, aerr
		}
		return rewritten, analysis, nil
	}
	if err != nil {
		p.log.Warn("one-shot tailoring failed, using section pipeline", "error", err)
	} else {
		p.log.Warn("one-shot tailoring output too short, using section pipeline", "length", len(rewritten))
	}
	return p.Run(ctx, resumeText, jobDescription)
}

// Analyze runs only the analysis half of the workflow: parse, analyze, match.
func (p *Pipeline) Analyze(ctx context.Context, resumeText, jobDescription string) (Analysis, error) {
	profile, err := p.engine.ParseResume(ctx, resumeText)
	if err != nil {
		return Analysis{}, fmt.Errorf("parsing resume: %w", err)
	}
	reqs, err := p.engine.AnalyzeJob(ctx, jobDescription)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyzing job description: %w", err)
	}
	result := match.MatchSkills(profile.Skills, *reqs)
	return Analysis{
		Requirements:   *reqs,
		Match:          result,
		Recommendation: match.Recommend(result, reqs.RequiredSkills),
	}, nil
}
