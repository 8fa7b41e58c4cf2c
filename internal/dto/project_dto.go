package dto

import "strings"

// ProjectForm is the free-text "post opportunity" form.
type ProjectForm struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	IsPublic      bool   `json:"isPublic"`
	Github        string `json:"github"`
	Skills        string `json:"skills"`
	PreferredTech string `json:"preferredTech"`
	Domains       string `json:"domains"`
}

type CreateProjectPayload struct {
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	Visibility      string   `json:"visibility"`
	RequiredSkills  []string `json:"requiredSkills"`
	PreferredSkills []string `json:"preferredSkills"`
	Domains         []string `json:"domains"`
	GithubRepo      string   `json:"githubRepo"`
	Description     string   `json:"description"`
}

func (f ProjectForm) ToPayload() CreateProjectPayload {
	visibility := "PRIVATE"
	if f.IsPublic {
		visibility = "PUBLIC"
	}
	t := strings.ToUpper(strings.TrimSpace(f.Type))
	if t == "" {
		t = "PROJECT"
	}
	return CreateProjectPayload{
		Title:           strings.TrimSpace(f.Title),
		Type:            t,
		Visibility:      visibility,
		RequiredSkills:  SplitCommaSet(f.Skills),
		PreferredSkills: SplitCommaSet(f.PreferredTech),
		Domains:         SplitCommaSet(f.Domains),
		GithubRepo:      strings.TrimSpace(f.Github),
		Description:     strings.TrimSpace(f.Description),
	}
}

// SplitCommaSet turns "a, b,,a" into ["a", "b"]: trimmed, no empties, first
// occurrence wins.
func SplitCommaSet(s string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, part := range strings.Split(s, ",") {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type InviteTeammatePayload struct {
	Email string `json:"email"`
}

type CompleteProjectRequest struct {
	Confirm bool `json:"confirm"`
}

// RateTeammateRequest carries up to eight answers; null or missing ones
// stay at the scale midpoint.
type RateTeammateRequest struct {
	RateeID string     `json:"rateeId"`
	Scores  []*float64 `json:"scores"`
}
