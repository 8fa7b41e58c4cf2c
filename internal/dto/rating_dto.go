package dto

import (
	"encoding/json"
	"strconv"
)

// WireID is emitted as a JSON number when it is numeric, which is what the
// rating backend expects, and as a string otherwise.
type WireID string

func (id WireID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

type CategoryScoresPayload struct {
	Technical     float64 `json:"technical"`
	Reliability   float64 `json:"reliability"`
	Communication float64 `json:"communication"`
	Initiative    float64 `json:"initiative"`
	Overall       float64 `json:"overall"`
}

type RatingPayload struct {
	RaterID        WireID                `json:"rater_id"`
	RateeID        WireID                `json:"ratee_id"`
	ProjectID      WireID                `json:"project_id"`
	CategoryScores CategoryScoresPayload `json:"category_scores"`
}
