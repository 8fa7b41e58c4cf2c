package model

import "strings"

type Availability string

const (
	Available    Availability = "Available"
	NotAvailable Availability = "NotAvailable"
)

// ParseAvailability accepts the spellings the backends use. Anything that
// does not read as "not available" counts as available.
func ParseAvailability(raw string) Availability {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	switch s {
	case "notavailable", "unavailable", "busy", "false", "no":
		return NotAvailable
	}
	return Available
}

type Profile struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"displayName"`
	Email        string       `json:"email"`
	Institution  string       `json:"institution"`
	Department   string       `json:"department"`
	Year         string       `json:"year"`
	Availability Availability `json:"availability"`
	Skills       []string     `json:"skills"`
	ResumeText   string       `json:"resumeText"`
	ResumePdf    string       `json:"resumePdf,omitempty"`
	Rating       *float64     `json:"rating,omitempty"`
}
