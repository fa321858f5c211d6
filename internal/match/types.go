package match

// ResumeProfile is the structured form of a free-text resume, re-derived from
// the resume file on every run. The JSON tags are the oracle's output schema
// contract.
type ResumeProfile struct {
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []string        `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Achievements   []string        `json:"achievements"`
}

type Experience struct {
	Company          string   `json:"company"`
	Title            string   `json:"title"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Details     string `json:"details"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   string `json:"year"`
}

// JobRequirements is the structured form of a job description.
type JobRequirements struct {
	RequiredSkills   []string `json:"requiredSkills"`
	PreferredSkills  []string `json:"preferredSkills"`
	Responsibilities []string `json:"responsibilities"`
	Qualifications   []string `json:"qualifications"`
	Keywords         []string `json:"keywords"`
	ExperienceLevel  string   `json:"experienceLevel"`
	JobType          string   `json:"jobType"`
}

// SkillMatchResult quantifies how a candidate's skills cover a job's
// requirements. Skill values are case-folded. MatchPercentage is computed
// against required skills only.
type SkillMatchResult struct {
	MatchingRequired  []string `json:"matchingRequired"`
	MatchingPreferred []string `json:"matchingPreferred"`
	MissingRequired   []string `json:"missingRequired"`
	MissingPreferred  []string `json:"missingPreferred"`
	MatchPercentage   int      `json:"matchPercentage"`
	TotalRequired     int      `json:"totalRequired"`
	MatchedRequired   int      `json:"matchedRequired"`
}
