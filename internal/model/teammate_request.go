package model

type RequestType string

const (
	JoinRequest   RequestType = "JOIN_REQUEST"
	RatingRequest RequestType = "RATING_REQUEST"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

type TeammateRequest struct {
	RequestID      string        `json:"requestId"`
	Type           RequestType   `json:"type"`
	ProjectID      string        `json:"projectId,omitempty"`
	ProjectTitle   string        `json:"projectTitle"`
	RequesterEmail string        `json:"requesterEmail,omitempty"`
	Status         RequestStatus `json:"status"`
	CreatedAt      string        `json:"createdAt"`

	// Only set for RATING_REQUEST.
	RateeID    string `json:"rateeId,omitempty"`
	RateeName  string `json:"rateeName,omitempty"`
	RateeEmail string `json:"rateeEmail,omitempty"`
}

func (r TeammateRequest) IsRatingRequest() bool {
	return r.Type == RatingRequest
}
