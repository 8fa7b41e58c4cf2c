package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/pkg/logger"
	"github.com/tidwall/gjson"
)

// Alias lists are tried in order; the first present, non-null, non-empty
// field wins.
var (
	sessionIDAliases    = []string{"id", "userId", "user_id"}
	profileIDAliases    = []string{"id", "userId", "user_id", "resume_id", "resumeId"}
	projectIDAliases    = []string{"id", "projectId", "project_id"}
	teammateIDAliases   = []string{"id", "resumeId", "resume_id", "userId", "user_id", "user.id", "pk", "uuid", "memberId"}
	teammateNameAliases = []string{"fullName", "name", "user.fullName", "user.name"}
	dateAliases         = []string{"createdAt", "created_at", "date"}
)

const (
	fallbackOwner      = "Anonymous"
	fallbackMemberName = "Unknown Member"
	fallbackDate       = "Recently"
	fallbackTitle      = "Untitled Project"
	fallbackDesc       = "No description provided."

	displayDateLayout = "Jan 2, 2006"
)

// displayLocation is the zone dates are rendered in.
var displayLocation = time.Local

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

func parseBody(entity string, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &DataIntegrityError{Entity: entity, Reason: "response is not valid JSON"}
	}
	return gjson.ParseBytes(body), nil
}

func present(r gjson.Result) bool {
	if !r.Exists() || r.Type == gjson.Null {
		return false
	}
	return strings.TrimSpace(r.String()) != ""
}

// firstString resolves the first alias present in r.
func firstString(r gjson.Result, paths ...string) (string, bool) {
	for _, p := range paths {
		if v := r.Get(p); present(v) {
			return strings.TrimSpace(v.String()), true
		}
	}
	return "", false
}

func stringOr(r gjson.Result, fallback string, paths ...string) string {
	if v, ok := firstString(r, paths...); ok {
		return v
	}
	return fallback
}

// StringList flattens either a JSON array or a comma-joined string into
// trimmed, non-empty entries.
func StringList(r gjson.Result) []string {
	out := []string{}
	switch {
	case r.IsArray():
		for _, item := range r.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
	case r.Type == gjson.String:
		for _, part := range strings.Split(r.String(), ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func firstList(r gjson.Result, paths ...string) []string {
	for _, p := range paths {
		v := r.Get(p)
		if v.IsArray() || v.Type == gjson.String {
			return StringList(v)
		}
	}
	return []string{}
}

// ownerDisplay builds "Name (email)", "Name", "email" or "Anonymous".
func ownerDisplay(item gjson.Result) (display, email string) {
	postedBy := item.Get("postedBy")
	email, _ = firstString(item, "ownerEmail")

	switch {
	case postedBy.IsObject():
		name, _ := firstString(postedBy, "fullName", "name")
		if e, ok := firstString(postedBy, "email"); ok {
			email = e
		}
		switch {
		case name != "" && email != "":
			return name + " (" + email + ")", email
		case name != "":
			return name, email
		case email != "":
			return email, email
		}
	case postedBy.Type == gjson.String && strings.TrimSpace(postedBy.String()) != "":
		return strings.TrimSpace(postedBy.String()), email
	}
	return fallbackOwner, email
}

// FormatDisplayDate renders the first aliased date field, or "Recently"
// when it is missing or unparseable.
func FormatDisplayDate(item gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := item.Get(p)
		if !present(v) {
			continue
		}
		t, ok := parseDate(v)
		if !ok {
			logger.Warn().Str("field", p).Str("raw", v.Raw).Msg("invalid date format")
			return fallbackDate
		}
		return t.In(displayLocation).Format(displayDateLayout)
	}
	return fallbackDate
}

func parseDate(v gjson.Result) (time.Time, bool) {
	switch {
	case v.Type == gjson.Number:
		n := v.Int()
		if n <= 0 {
			return time.Time{}, false
		}
		// Values above 1e11 are epoch milliseconds.
		if n > 1e11 {
			return time.UnixMilli(n), true
		}
		return time.Unix(n, 0), true
	case v.IsArray():
		// [year, month, day, ...] as emitted by Jackson without a time module.
		parts := v.Array()
		if len(parts) < 3 {
			return time.Time{}, false
		}
		y, m, d := int(parts[0].Int()), int(parts[1].Int()), int(parts[2].Int())
		if y == 0 || m < 1 || m > 12 || d < 1 || d > 31 {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(m), d, 12, 0, 0, 0, displayLocation), true
	case v.Type == gjson.String:
		s := strings.TrimSpace(v.String())
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, displayLocation); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// NormalizeTeammate resolves the canonical id and display name of a team
// member. A member with none of the id aliases is a data-integrity error.
func NormalizeTeammate(r gjson.Result) (model.Teammate, error) {
	id, ok := firstString(r, teammateIDAliases...)
	if !ok {
		return model.Teammate{}, &DataIntegrityError{
			Entity: "teammate",
			Reason: "no identifier among " + strings.Join(teammateIDAliases, ", "),
		}
	}
	return model.Teammate{
		ID:       id,
		FullName: stringOr(r, fallbackMemberName, teammateNameAliases...),
		Email:    stringOr(r, "", "email", "user.email"),
		Role:     stringOr(r, "", "role"),
	}, nil
}

func NormalizeOpportunity(item gjson.Result) (model.Opportunity, error) {
	id, ok := firstString(item, projectIDAliases...)
	if !ok {
		return model.Opportunity{}, &DataIntegrityError{Entity: "opportunity", Reason: "missing id"}
	}

	postedBy, ownerEmail := ownerDisplay(item)

	opType := model.OpportunityType(strings.ToUpper(stringOr(item, "", "type")))
	if !opType.Valid() {
		opType = model.TypeProject
	}

	var subType model.OpportunitySubType
	switch s := model.OpportunitySubType(strings.ToUpper(stringOr(item, "", "subType"))); s {
	case model.SubTypeExternal, model.SubTypeCampus:
		subType = s
	}

	status := model.StatusActive
	if strings.EqualFold(stringOr(item, "", "status"), string(model.StatusCompleted)) {
		status = model.StatusCompleted
	}

	teammates := []model.Teammate{}
	for _, raw := range item.Get("teammates").Array() {
		tm, err := NormalizeTeammate(raw)
		if err != nil {
			return model.Opportunity{}, &DataIntegrityError{
				Entity: "opportunity " + id,
				Reason: err.Error(),
			}
		}
		teammates = append(teammates, tm)
	}

	return model.Opportunity{
		ID:              id,
		Title:           stringOr(item, fallbackTitle, "title"),
		Description:     stringOr(item, fallbackDesc, "description"),
		Type:            opType,
		SubType:         subType,
		Technologies:    firstList(item, "requiredSkills", "technologies"),
		PostedByDisplay: postedBy,
		OwnerEmail:      ownerEmail,
		CreatedDate:     FormatDisplayDate(item, dateAliases...),
		IsPublic:        strings.EqualFold(item.Get("visibility").String(), "PUBLIC") || item.Get("isPublic").Type == gjson.True,
		GithubURL:       stringOr(item, "", "githubRepo", "githubUrl"),
		Teammates:       teammates,
		Status:          status,
	}, nil
}

func NormalizeOpportunities(list gjson.Result) ([]model.Opportunity, error) {
	if !list.IsArray() {
		return nil, &DataIntegrityError{Entity: "opportunity list", Reason: "expected a JSON array"}
	}
	out := make([]model.Opportunity, 0, len(list.Array()))
	for _, item := range list.Array() {
		o, err := NormalizeOpportunity(item)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// NormalizeProfile never fails; a profile without any identifier comes back
// with an empty ID and the caller decides what that means.
func NormalizeProfile(r gjson.Result) model.Profile {
	p := model.Profile{
		ID:           stringOr(r, "", profileIDAliases...),
		DisplayName:  stringOr(r, "", "fullName", "name", "displayName"),
		Email:        stringOr(r, "", "email"),
		Institution:  stringOr(r, "", "institution"),
		Department:   stringOr(r, "", "department"),
		Year:         stringOr(r, "", "year"),
		Availability: model.ParseAvailability(stringOr(r, "", "availability")),
		Skills:       firstList(r, "skills"),
		ResumeText:   r.Get("resumeText").String(),
		ResumePdf:    r.Get("resumePdf").String(),
	}
	if v := r.Get("rating"); v.Type == gjson.Number {
		rating := v.Float()
		p.Rating = &rating
	} else if v.Type == gjson.String {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64); err == nil {
			p.Rating = &f
		}
	}
	return p
}

func NormalizeTeammateRequest(r gjson.Result) (model.TeammateRequest, error) {
	id, ok := firstString(r, "requestId", "request_id", "id")
	if !ok {
		return model.TeammateRequest{}, &DataIntegrityError{Entity: "teammate request", Reason: "missing requestId"}
	}

	reqType := model.JoinRequest
	if strings.EqualFold(stringOr(r, "", "type"), string(model.RatingRequest)) {
		reqType = model.RatingRequest
	}

	status := model.RequestPending
	switch s := model.RequestStatus(strings.ToUpper(stringOr(r, "", "status"))); s {
	case model.RequestAccepted, model.RequestRejected:
		status = s
	}

	req := model.TeammateRequest{
		RequestID:      id,
		Type:           reqType,
		ProjectID:      stringOr(r, "", "projectId", "project_id", "project.id"),
		ProjectTitle:   stringOr(r, fallbackTitle, "projectTitle", "project.title"),
		RequesterEmail: stringOr(r, "", "requesterEmail", "requester.email"),
		Status:         status,
		CreatedAt:      FormatDisplayDate(r, "createdAt", "created_at"),
	}
	if reqType == model.RatingRequest {
		req.RateeID = stringOr(r, "", "rateeId", "ratee_id", "ratee.id")
		req.RateeName = stringOr(r, "", "rateeName", "ratee.fullName", "ratee.name")
		req.RateeEmail = stringOr(r, "", "rateeEmail", "ratee.email")
	}
	return req, nil
}

// NormalizeMatchResponse keeps candidates in the backend's order.
func NormalizeMatchResponse(r gjson.Result) (*model.MatchResponse, error) {
	resp := &model.MatchResponse{
		ProjectID:     r.Get("project_id").String(),
		ProjectType:   r.Get("project_type").String(),
		Alpha:         r.Get("alpha").Float(),
		TopNRequested: int(r.Get("top_n_requested").Int()),
		Candidates:    []model.MatchCandidate{},
		Metadata: model.MatchProjectMeta{
			Title:                 r.Get("project_metadata.title").String(),
			Description:           r.Get("project_metadata.description").String(),
			RequiredSkills:        StringList(r.Get("project_metadata.required_skills")),
			PreferredTechnologies: StringList(r.Get("project_metadata.preferred_technologies")),
			Domains:               StringList(r.Get("project_metadata.domains")),
			ProjectType:           r.Get("project_metadata.project_type").String(),
		},
		Stats: model.MatchSearchStats{
			TotalResumes:   int(r.Get("stats.total_resumes").Int()),
			WithEmbeddings: int(r.Get("stats.with_embeddings").Int()),
			PassedFilter:   int(r.Get("stats.passed_filter").Int()),
		},
	}

	for i, m := range r.Get("matches").Array() {
		id, ok := firstString(m, "resume_id", "resumeId")
		if !ok {
			return nil, &DataIntegrityError{
				Entity: "match candidate " + strconv.Itoa(i),
				Reason: "missing resume_id",
			}
		}
		resp.Candidates = append(resp.Candidates, model.MatchCandidate{
			ResumeID:   id,
			FinalScore: m.Get("final_score").Float(),
			Capability: model.CapabilityBreakdown{
				Score:               m.Get("layer1_capability.capability_score").Float(),
				SkillsComponent:     m.Get("layer1_capability.s_skills").Float(),
				SemanticComponent:   m.Get("layer1_capability.s_semantic").Float(),
				ExperienceComponent: m.Get("layer1_capability.s_experience").Float(),
			},
			Trust: model.TrustBreakdown{
				Score:                m.Get("layer2_trust.trust_score").Float(),
				ReliabilityComponent: m.Get("layer2_trust.s_reliability").Float(),
				RatingComponent:      m.Get("layer2_trust.s_rating").Float(),
				CompletionRatio:      m.Get("layer2_trust.completion_ratio").Float(),
			},
			Scoring: model.ScoringFormula{
				Alpha:   m.Get("scoring_formula.alpha").Float(),
				Formula: m.Get("scoring_formula.formula").String(),
			},
			ProfileSummary: model.MatchProfileSummary{
				Name:         m.Get("profile.name").String(),
				Year:         m.Get("profile.year").String(),
				Availability: m.Get("profile.availability").String(),
				Email:        m.Get("profile.email").String(),
			},
		})
	}

	resp.Count = len(resp.Candidates)
	if c := r.Get("count"); c.Type == gjson.Number {
		resp.Count = int(c.Int())
	}
	return resp, nil
}
