package tailor

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applypilot/internal/match"
	"applypilot/internal/oracle"
)

type scriptedOracle struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedOracle) Complete(_ context.Context, _ oracle.Request) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", oracle.NewError(oracle.KindNoResponse, "test", nil)
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedOracle) Provider() string { return "test" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOptimizeSkillsOrdersRequiredFirst(t *testing.T) {
	reqs := match.JobRequirements{
		RequiredSkills:  []string{"Python", "Docker"},
		PreferredSkills: []string{"Kubernetes"},
	}
	got := OptimizeSkills([]string{"Photoshop", "Kubernetes", "Docker", "Python"}, reqs)

	assert.Equal(t, []string{"Docker", "Python", "Kubernetes", "Photoshop"}, got)
}

func TestOptimizeSkillsAppendsMissingGenericRequired(t *testing.T) {
	reqs := match.JobRequirements{
		RequiredSkills: []string{"Go", "Communication"},
	}
	got := OptimizeSkills([]string{"Go", "Rust"}, reqs)

	assert.Equal(t, []string{"Go", "Communication", "Rust"}, got)
}

func TestOptimizeSkillsNeverInventsHardSkills(t *testing.T) {
	reqs := match.JobRequirements{
		RequiredSkills: []string{"Kubernetes"},
	}
	got := OptimizeSkills([]string{"Go"}, reqs)

	assert.NotContains(t, got, "Kubernetes")
}

func TestPrioritizeProjectsRanksByRelevance(t *testing.T) {
	projects := []match.Project{
		{Name: "Blog", Description: "personal site", Technologies: []string{"Hugo"}},
		{Name: "Pipeline", Description: "ETL in Python", Technologies: []string{"Python", "Docker"}},
		{Name: "Dashboard", Description: "metrics UI", Technologies: []string{"React"}},
	}
	reqs := match.JobRequirements{
		RequiredSkills: []string{"Python", "Docker"},
		Keywords:       []string{"etl"},
	}

	got := PrioritizeProjects(projects, reqs)

	assert.Equal(t, "Pipeline", got[0].Name)
}

func TestPrioritizeProjectsStableWhenTied(t *testing.T) {
	projects := []match.Project{
		{Name: "First"},
		{Name: "Second"},
	}
	got := PrioritizeProjects(projects, match.JobRequirements{})

	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)
}

func TestCustomizeKeepsOriginalOnOracleFailure(t *testing.T) {
	ora := &scriptedOracle{err: oracle.NewError(oracle.KindRateLimited, "test", nil)}
	p := New(ora, match.NewEngine(ora, discardLogger()), discardLogger())

	profile := match.ResumeProfile{
		Summary: "Seasoned backend engineer.",
		Experience: []match.Experience{
			{Company: "Acme", Title: "Engineer", Responsibilities: []string{"Built services"}},
		},
		Skills: []string{"Go"},
	}

	got := p.Customize(context.Background(), profile, match.JobRequirements{RequiredSkills: []string{"Go"}})

	assert.Equal(t, profile.Summary, got.Summary)
	assert.Equal(t, profile.Experience, got.Experience)
}

func TestCustomizeRewritesSummaryAndExperience(t *testing.T) {
	ora := &scriptedOracle{responses: []string{
		"Go engineer focused on reliable services.",
		`{"responsibilities": ["Shipped Go microservices", "Cut deploy time 40%"]}`,
	}}
	p := New(ora, match.NewEngine(ora, discardLogger()), discardLogger())

	profile := match.ResumeProfile{
		Summary: "Backend engineer.",
		Experience: []match.Experience{
			{Company: "Acme", Title: "Engineer", Responsibilities: []string{"Built services"}},
		},
	}

	got := p.Customize(context.Background(), profile, match.JobRequirements{RequiredSkills: []string{"Go"}})

	assert.Equal(t, "Go engineer focused on reliable services.", got.Summary)
	require.Len(t, got.Experience, 1)
	assert.Equal(t, []string{"Shipped Go microservices", "Cut deploy time 40%"}, got.Experience[0].Responsibilities)
}

func TestCustomizeKeepsExperienceOnBadSchema(t *testing.T) {
	ora := &scriptedOracle{responses: []string{
		"New summary.",
		`{"unexpected": true}`,
	}}
	p := New(ora, match.NewEngine(ora, discardLogger()), discardLogger())

	profile := match.ResumeProfile{
		Experience: []match.Experience{
			{Company: "Acme", Title: "Engineer", Responsibilities: []string{"Built services"}},
		},
	}

	got := p.Customize(context.Background(), profile, match.JobRequirements{})

	assert.Equal(t, []string{"Built services"}, got.Experience[0].Responsibilities)
}

func TestRenderLayout(t *testing.T) {
	text := Render(match.ResumeProfile{
		Summary: "Engineer.",
		Skills:  []string{"Go", "SQL"},
		Experience: []match.Experience{
			{Company: "Acme", Title: "Engineer", Duration: "2020-2024", Responsibilities: []string{"Built services"}},
		},
		Education: []match.Education{
			{Degree: "BSc CS", Institution: "State University", Year: "2019"},
		},
		Certifications: []match.Certification{
			{Name: "CKA", Issuer: "CNCF", Year: "2023"},
		},
		Achievements: []string{"Speaker at GopherCon"},
	})

	for _, section := range []string{
		"PROFESSIONAL SUMMARY", "SKILLS", "WORK EXPERIENCE", "EDUCATION", "CERTIFICATIONS", "ACHIEVEMENTS",
	} {
		assert.Contains(t, text, section)
	}
	assert.Contains(t, text, "Go | SQL")
	assert.Contains(t, text, "Engineer - Acme")
	assert.Contains(t, text, "- CKA (CNCF, 2023)")
	assert.NotContains(t, text, "PROJECTS")
}

func TestRenderOmitsEmptySections(t *testing.T) {
	text := Render(match.ResumeProfile{Summary: "Just a summary."})

	assert.True(t, strings.HasPrefix(text, "PROFESSIONAL SUMMARY\n"))
	assert.NotContains(t, text, "SKILLS")
	assert.NotContains(t, text, "WORK EXPERIENCE")
}

func TestRunProducesResumeAndAnalysis(t *testing.T) {
	ora := &scriptedOracle{responses: []string{
		// ParseResume
		`{"summary":"Backend engineer.","experience":[],"education":[],"skills":["Python","Docker"],"projects":[],"certifications":[],"achievements":[]}`,
		// AnalyzeJob
		`{"requiredSkills":["Python","SQL","Docker"],"preferredSkills":[],"responsibilities":[],"qualifications":[],"keywords":[],"experienceLevel":"mid","jobType":"full-time"}`,
		// summary rewrite
		"Python-focused backend engineer.",
	}}
	p := New(ora, match.NewEngine(ora, discardLogger()), discardLogger())

	text, analysis, err := p.Run(context.Background(), "resume text", "job description")
	require.NoError(t, err)

	assert.Contains(t, text, "Python-focused backend engineer.")
	assert.Equal(t, 67, analysis.Match.MatchPercentage)
	assert.Equal(t, "good", analysis.Recommendation.Type)
}

func TestTailorTextPrefersOneShotRewrite(t *testing.T) {
	resume := "Backend engineer with Python and Docker experience across several teams."
	ora := &scriptedOracle{responses: []string{
		// one-shot rewrite
		"Backend engineer with deep Python and Docker delivery experience, focused on data pipelines.",
		// ParseResume
		`{"summary":"Backend engineer.","experience":[],"education":[],"skills":["Python","Docker"],"projects":[],"certifications":[],"achievements":[]}`,
		// AnalyzeJob
		`{"requiredSkills":["Python","SQL","Docker"],"preferredSkills":[],"responsibilities":[],"qualifications":[],"keywords":[],"experienceLevel":"mid","jobType":"full-time"}`,
	}}
	p := New(ora, match.NewEngine(ora, discardLogger()), discardLogger())

	text, analysis, err := p.TailorText(context.Background(), resume, "job description")
	require.NoError(t, err)

	assert.Contains(t, text, "data pipelines")
	assert.Equal(t, 67, analysis.Match.MatchPercentage)
	assert.Equal(t, 3, ora.calls)
}

func TestTailorTextFallsBackWhenOneShotTooShort(t *testing.T) {
	resume := "Backend engineer with Python and Docker experience across several teams and companies."
	ora := &scriptedOracle{responses: []string{
		// one-shot rewrite, too short to trust
		"ok",
		// ParseResume
		`{"summary":"Backend engineer.","experience":[],"education":[],"skills":["Python"],"projects":[],"certifications":[],"achievements":[]}`,
		// AnalyzeJob
		`{"requiredSkills":["Python"],"preferredSkills":[],"responsibilities":[],"qualifications":[],"keywords":[],"experienceLevel":"mid","jobType":"full-time"}`,
		// summary rewrite inside Customize
		"Python engineer.",
	}}
	p := New(ora, match.NewEngine(ora, discardLogger()), discardLogger())

	text, analysis, err := p.TailorText(context.Background(), resume, "job description")
	require.NoError(t, err)

	assert.Contains(t, text, "PROFESSIONAL SUMMARY")
	assert.Equal(t, 100, analysis.Match.MatchPercentage)
}

func TestRunFailsWhenParseFails(t *testing.T) {
	ora := &scriptedOracle{responses: []string{"not json at all"}}
	p := New(ora, match.NewEngine(ora, discardLogger()), discardLogger())

	_, _, err := p.Run(context.Background(), "resume", "job")
	require.Error(t, err)
	kind, ok := oracle.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, oracle.KindSchemaParse, kind)
}
