package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"applypilot/internal/observability"
	"applypilot/internal/oracle"
)

// Engine turns free text into structured requirement sets by delegating to
// the completion oracle under a strict JSON schema contract.
type Engine struct {
	oracle oracle.Client
	log    *slog.Logger
}

func NewEngine(client oracle.Client, log *slog.Logger) *Engine {
	return &Engine{oracle: client, log: log}
}

const resumeParsePrompt = `You are a resume parser. Analyze the following resume and extract it into structured JSON format.

Resume:
%s

Extract the following sections:
1. summary - Professional summary or objective
2. experience - Array of work experiences with {company, title, duration, responsibilities[]}
3. education - Array of education with {degree, institution, year, details}
4. skills - Array of technical and soft skills
5. projects - Array of projects with {name, description, technologies[]}
6. certifications - Array of certifications with {name, issuer, year}
7. achievements - Array of notable achievements or awards

Return ONLY valid JSON in this exact format:
{
  "summary": "string",
  "experience": [{"company": "string", "title": "string", "duration": "string", "responsibilities": ["string"]}],
  "education": [{"degree": "string", "institution": "string", "year": "string", "details": "string"}],
  "skills": ["string"],
  "projects": [{"name": "string", "description": "string", "technologies": ["string"]}],
  "certifications": [{"name": "string", "issuer": "string", "year": "string"}],
  "achievements": ["string"]
}`

// ParseResume extracts a structured profile from raw resume text. Fails with
// a schema-parse oracle error when the model output cannot be interpreted.
func (e *Engine) ParseResume(ctx context.Context, resumeText string) (*ResumeProfile, error) {
	observability.IncOracleCall("resume_parse")

	raw, err := e.oracle.Complete(ctx, oracle.Request{
		Prompt:      fmt.Sprintf(resumeParsePrompt, resumeText),
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONOnly:    true,
	})
	if err != nil {
		return nil, err
	}

	var profile ResumeProfile
	if err := json.Unmarshal([]byte(oracle.CleanJSON(raw)), &profile); err != nil {
		return nil, oracle.NewError(oracle.KindSchemaParse, e.oracle.Provider(),
			fmt.Errorf("failed to parse resume: %w", err))
	}
	e.log.Info("resume parsed", "skills", len(profile.Skills), "experience_entries", len(profile.Experience))
	return &profile, nil
}

const jobAnalysisPrompt = `You are a job description analyzer. Analyze the following job posting and extract key requirements.

Job Description:
%s

Extract the following information:
1. requiredSkills - Array of must-have technical skills
2. preferredSkills - Array of nice-to-have skills
3. responsibilities - Array of key job responsibilities
4. qualifications - Array of required qualifications (education, experience, etc.)
5. keywords - Array of important keywords for ATS optimization
6. experienceLevel - Required years of experience (e.g., "3-5 years")
7. jobType - Type of role (e.g., "Full-time", "Remote", "Contract")

Return ONLY valid JSON in this exact format:
{
  "requiredSkills": ["string"],
  "preferredSkills": ["string"],
  "responsibilities": ["string"],
  "qualifications": ["string"],
  "keywords": ["string"],
  "experienceLevel": "string",
  "jobType": "string"
}`

// AnalyzeJob extracts structured requirements from a job description.
func (e *Engine) AnalyzeJob(ctx context.Context, jobDescription string) (*JobRequirements, error) {
	observability.IncOracleCall("job_analysis")

	raw, err := e.oracle.Complete(ctx, oracle.Request{
		Prompt:      fmt.Sprintf(jobAnalysisPrompt, jobDescription),
		Temperature: 0.3,
		MaxTokens:   1500,
		JSONOnly:    true,
	})
	if err != nil {
		return nil, err
	}

	var reqs JobRequirements
	if err := json.Unmarshal([]byte(oracle.CleanJSON(raw)), &reqs); err != nil {
		return nil, oracle.NewError(oracle.KindSchemaParse, e.oracle.Provider(),
			fmt.Errorf("failed to analyze job description: %w", err))
	}
	e.log.Info("job description analyzed",
		"required_skills", len(reqs.RequiredSkills),
		"preferred_skills", len(reqs.PreferredSkills))
	return &reqs, nil
}

const skillListPrompt = `Analyze this job description and extract the key skills and requirements:

%s

Please identify:
1. Technical skills (programming languages, tools, frameworks, technologies)
2. Soft skills (communication, leadership, teamwork, etc.)
3. Required qualifications and certifications
4. Experience requirements

Return the skills as a JSON array of strings, with each skill as a separate item. Return ONLY the JSON array, no additional text.

Example format: ["JavaScript", "React", "Node.js", "Team Leadership", "Agile Methodology"]`

var quotedString = regexp.MustCompile(`"([^"]+)"`)

// ExtractSkills returns a flat skill list for a job description. When the
// model wraps or mangles the JSON array, quoted strings are salvaged before
// giving up.
func (e *Engine) ExtractSkills(ctx context.Context, jobDescription string) ([]string, error) {
	observability.IncOracleCall("skill_extraction")

	raw, err := e.oracle.Complete(ctx, oracle.Request{
		System:      "You are an expert at analyzing job descriptions and identifying key skills and requirements. Extract the most important technical and soft skills mentioned in job postings.",
		Prompt:      fmt.Sprintf(skillListPrompt, jobDescription),
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, err
	}

	cleaned := oracle.CleanJSON(raw)
	var skills []string
	if err := json.Unmarshal([]byte(cleaned), &skills); err == nil {
		return skills, nil
	}

	matches := quotedString.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, oracle.NewError(oracle.KindSchemaParse, e.oracle.Provider(),
			fmt.Errorf("skill list response is not a JSON array"))
	}
	salvaged := make([]string, 0, len(matches))
	for _, m := range matches {
		salvaged = append(salvaged, m[1])
	}
	e.log.Warn("skill list salvaged from malformed oracle output", "skills", len(salvaged))
	return salvaged, nil
}
