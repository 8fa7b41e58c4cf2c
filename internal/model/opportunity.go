package model

type OpportunityType string

const (
	TypeProject    OpportunityType = "PROJECT"
	TypeResearch   OpportunityType = "RESEARCH"
	TypeOpenSource OpportunityType = "OPEN_SOURCE"
)

func (t OpportunityType) Valid() bool {
	switch t {
	case TypeProject, TypeResearch, TypeOpenSource:
		return true
	}
	return false
}

type OpportunitySubType string

const (
	SubTypeExternal OpportunitySubType = "EXTERNAL"
	SubTypeCampus   OpportunitySubType = "CAMPUS"
)

type ProjectStatus string

const (
	StatusActive    ProjectStatus = "ACTIVE"
	StatusCompleted ProjectStatus = "COMPLETED"
)

type Opportunity struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Type            OpportunityType    `json:"type"`
	SubType         OpportunitySubType `json:"subType,omitempty"`
	Technologies    []string           `json:"technologies"`
	PostedByDisplay string             `json:"postedBy"`
	OwnerEmail      string             `json:"ownerEmail,omitempty"`
	CreatedDate     string             `json:"date"`
	IsPublic        bool               `json:"isPublic"`
	GithubURL       string             `json:"githubUrl,omitempty"`
	Teammates       []Teammate         `json:"teammates"`
	Status          ProjectStatus      `json:"status"`
}

func (o *Opportunity) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// Teammate returns the member with the given id, if any.
func (o *Opportunity) Teammate(id string) (Teammate, bool) {
	for _, t := range o.Teammates {
		if t.ID == id {
			return t, true
		}
	}
	return Teammate{}, false
}

// TeammateByEmail matches case-insensitively.
func (o *Opportunity) TeammateByEmail(email string) (Teammate, bool) {
	for _, t := range o.Teammates {
		if t.Email != "" && equalFold(t.Email, email) {
			return t, true
		}
	}
	return Teammate{}, false
}

type Teammate struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}
