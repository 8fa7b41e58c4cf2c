package model

// MatchResponse is the AI-matching backend's answer for one project.
// Candidates keep the backend's ranking; index 0 is the top match.
type MatchResponse struct {
	ProjectID     string           `json:"projectId"`
	ProjectType   string           `json:"projectType"`
	Alpha         float64          `json:"alpha"`
	Count         int              `json:"count"`
	TopNRequested int              `json:"topNRequested"`
	Candidates    []MatchCandidate `json:"candidates"`
	Metadata      MatchProjectMeta `json:"projectMetadata"`
	Stats         MatchSearchStats `json:"stats"`
}

type MatchCandidate struct {
	ResumeID       string              `json:"resumeId"`
	FinalScore     float64             `json:"finalScore"`
	Capability     CapabilityBreakdown `json:"capabilityBreakdown"`
	Trust          TrustBreakdown      `json:"trustBreakdown"`
	Scoring        ScoringFormula      `json:"scoring"`
	ProfileSummary MatchProfileSummary `json:"profileSummary"`
}

type CapabilityBreakdown struct {
	Score               float64 `json:"score"`
	SkillsComponent     float64 `json:"skillsComponent"`
	SemanticComponent   float64 `json:"semanticComponent"`
	ExperienceComponent float64 `json:"experienceComponent"`
}

type TrustBreakdown struct {
	Score                float64 `json:"score"`
	ReliabilityComponent float64 `json:"reliabilityComponent"`
	RatingComponent      float64 `json:"ratingComponent"`
	CompletionRatio      float64 `json:"completionRatio"`
}

type ScoringFormula struct {
	Alpha   float64 `json:"alpha"`
	Formula string  `json:"formula,omitempty"`
}

type MatchProfileSummary struct {
	Name         string `json:"name"`
	Year         string `json:"year"`
	Availability string `json:"availability"`
	Email        string `json:"email,omitempty"`
}

type MatchProjectMeta struct {
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	RequiredSkills        []string `json:"requiredSkills"`
	PreferredTechnologies []string `json:"preferredTechnologies"`
	Domains               []string `json:"domains"`
	ProjectType           string   `json:"projectType"`
}

type MatchSearchStats struct {
	TotalResumes   int `json:"totalResumes"`
	WithEmbeddings int `json:"withEmbeddings"`
	PassedFilter   int `json:"passedFilter"`
}
