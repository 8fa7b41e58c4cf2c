package model

// RawScores are the eight survey answers, each in [0,5] in 0.5 steps.
type RawScores [8]float64

const (
	RatingScaleMin      = 0.0
	RatingScaleMax      = 5.0
	RatingScaleStep     = 0.5
	RatingScaleMidpoint = 2.5
)

// DefaultRawScores is the survey state before any interaction.
func DefaultRawScores() RawScores {
	var s RawScores
	for i := range s {
		s[i] = RatingScaleMidpoint
	}
	return s
}

type CategoryScores struct {
	Technical     float64 `json:"technical"`
	Reliability   float64 `json:"reliability"`
	Communication float64 `json:"communication"`
	Initiative    float64 `json:"initiative"`
	Overall       float64 `json:"overall"`
}

type RatingSubmission struct {
	RaterID        string         `json:"raterId"`
	RateeID        string         `json:"rateeId"`
	ProjectID      string         `json:"projectId"`
	CategoryScores CategoryScores `json:"categoryScores"`
}
