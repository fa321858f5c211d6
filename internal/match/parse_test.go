package match

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applypilot/internal/oracle"
)

// scriptedOracle returns canned responses in order.
type scriptedOracle struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedOracle) Provider() string { return "scripted" }

func (s *scriptedOracle) Complete(_ context.Context, _ oracle.Request) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.calls >= len(s.responses) {
		return "", errors.New("no scripted response left")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func TestParseResume(t *testing.T) {
	o := &scriptedOracle{responses: []string{"```json\n" + `{
		"summary": "Backend engineer",
		"experience": [{"company": "Acme", "title": "Engineer", "duration": "2020-2023", "responsibilities": ["Built APIs"]}],
		"education": [],
		"skills": ["Go", "Postgres"],
		"projects": [],
		"certifications": [],
		"achievements": []
	}` + "\n```"}}

	e := NewEngine(o, slog.Default())
	profile, err := e.ParseResume(context.Background(), "resume text")
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer", profile.Summary)
	assert.Equal(t, []string{"Go", "Postgres"}, profile.Skills)
	assert.Len(t, profile.Experience, 1)
}

func TestParseResumeSchemaFailure(t *testing.T) {
	e := NewEngine(&scriptedOracle{responses: []string{"sorry, I can't do that"}}, slog.Default())

	_, err := e.ParseResume(context.Background(), "resume text")
	require.Error(t, err)

	kind, ok := oracle.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, oracle.KindSchemaParse, kind)
}

func TestAnalyzeJob(t *testing.T) {
	e := NewEngine(&scriptedOracle{responses: []string{`{
		"requiredSkills": ["Go", "SQL"],
		"preferredSkills": ["Kubernetes"],
		"responsibilities": ["Ship features"],
		"qualifications": ["BS CS"],
		"keywords": ["backend"],
		"experienceLevel": "3-5 years",
		"jobType": "Full-time"
	}`}}, slog.Default())

	reqs, err := e.AnalyzeJob(context.Background(), "job description")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, reqs.RequiredSkills)
	assert.Equal(t, "3-5 years", reqs.ExperienceLevel)
}

func TestAnalyzeJobPropagatesOracleError(t *testing.T) {
	e := NewEngine(&scriptedOracle{err: oracle.NewError(oracle.KindRateLimited, "scripted", errors.New("429"))}, slog.Default())

	_, err := e.AnalyzeJob(context.Background(), "job description")
	require.Error(t, err)

	kind, ok := oracle.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, oracle.KindRateLimited, kind)
}

func TestExtractSkillsSalvagesQuotedStrings(t *testing.T) {
	e := NewEngine(&scriptedOracle{responses: []string{
		`Here are the skills: "Go", "Docker" and "CI/CD".`,
	}}, slog.Default())

	skills, err := e.ExtractSkills(context.Background(), "job description")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Docker", "CI/CD"}, skills)
}
