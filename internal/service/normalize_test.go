package service

import (
	"testing"

	"github.com/fadilmartias/converge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestStringList_ArrayOrCommaString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `{"v":[" Go ","React",""]}`, []string{"Go", "React"}},
		{"comma string", `{"v":" Go, React ,,SQL "}`, []string{"Go", "React", "SQL"}},
		{"empty string", `{"v":""}`, []string{}},
		{"missing", `{}`, []string{}},
		{"number", `{"v":5}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StringList(gjson.Get(tt.raw, "v")))
		})
	}
}

func TestNormalizeTeammate_IDAliasPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"direct id", `{"id":1,"resumeId":"r","userId":"u"}`, "1"},
		{"resumeId before userId", `{"resumeId":"r9","userId":"u1"}`, "r9"},
		{"resume_id before user_id", `{"resume_id":"r2","user_id":"u2"}`, "r2"},
		{"userId before nested", `{"userId":"u3","user":{"id":"n3"}}`, "u3"},
		{"nested user id", `{"user":{"id":77},"pk":"p"}`, "77"},
		{"pk before uuid", `{"pk":"p1","uuid":"x"}`, "p1"},
		{"uuid", `{"uuid":"abc-def","memberId":"m"}`, "abc-def"},
		{"memberId last", `{"memberId":"m5"}`, "m5"},
		{"null id skipped", `{"id":null,"memberId":"m6"}`, "m6"},
		{"blank id skipped", `{"id":"  ","pk":"p7"}`, "p7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, err := NormalizeTeammate(gjson.Parse(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tm.ID)
		})
	}
}

func TestNormalizeTeammate_MissingIDIsDataIntegrityError(t *testing.T) {
	_, err := NormalizeTeammate(gjson.Parse(`{"fullName":"Ghost","email":"g@x.edu"}`))
	var di *DataIntegrityError
	require.ErrorAs(t, err, &di)
	assert.Equal(t, "teammate", di.Entity)
}

func TestNormalizeTeammate_NameFallbacks(t *testing.T) {
	tm, err := NormalizeTeammate(gjson.Parse(`{"id":1,"user":{"name":"Nested Name"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Nested Name", tm.FullName)

	tm, err = NormalizeTeammate(gjson.Parse(`{"id":2,"name":"Plain","fullName":"Full"}`))
	require.NoError(t, err)
	assert.Equal(t, "Full", tm.FullName)

	tm, err = NormalizeTeammate(gjson.Parse(`{"id":3}`))
	require.NoError(t, err)
	assert.Equal(t, "Unknown Member", tm.FullName)
}

func TestNormalizeOpportunity(t *testing.T) {
	raw := `{
		"id": 12,
		"title": "Campus Rideshare",
		"type": "research",
		"visibility": "PUBLIC",
		"requiredSkills": "Go, Postgres , ",
		"postedBy": {"fullName": "Ada", "email": "ada@uni.edu"},
		"createdAt": "2024-03-05T10:00:00Z",
		"githubUrl": "https://github.com/x/y",
		"status": "completed",
		"teammates": [{"userId": 4, "name": "Bob"}]
	}`
	o, err := NormalizeOpportunity(gjson.Parse(raw))
	require.NoError(t, err)

	assert.Equal(t, "12", o.ID)
	assert.Equal(t, model.TypeResearch, o.Type)
	assert.True(t, o.IsPublic)
	assert.Equal(t, []string{"Go", "Postgres"}, o.Technologies)
	assert.Equal(t, "Ada (ada@uni.edu)", o.PostedByDisplay)
	assert.Equal(t, "ada@uni.edu", o.OwnerEmail)
	assert.Equal(t, "Mar 5, 2024", o.CreatedDate)
	assert.Equal(t, "https://github.com/x/y", o.GithubURL)
	assert.Equal(t, model.StatusCompleted, o.Status)
	require.Len(t, o.Teammates, 1)
	assert.Equal(t, "4", o.Teammates[0].ID)
	assert.Equal(t, "No description provided.", o.Description)
}

func TestNormalizeOpportunity_Defaults(t *testing.T) {
	o, err := NormalizeOpportunity(gjson.Parse(`{"projectId":"p1","isPublic":true,"technologies":["A"]}`))
	require.NoError(t, err)
	assert.Equal(t, "p1", o.ID)
	assert.Equal(t, "Untitled Project", o.Title)
	assert.Equal(t, model.TypeProject, o.Type)
	assert.Equal(t, model.StatusActive, o.Status)
	assert.True(t, o.IsPublic)
	assert.Equal(t, []string{"A"}, o.Technologies)
	assert.Equal(t, "Anonymous", o.PostedByDisplay)
	assert.Equal(t, "Recently", o.CreatedDate)
	assert.Empty(t, o.Teammates)
}

func TestNormalizeOpportunity_BadTeammateFailsWholeItem(t *testing.T) {
	_, err := NormalizeOpportunity(gjson.Parse(`{"id":1,"teammates":[{"id":2},{"name":"nobody"}]}`))
	var di *DataIntegrityError
	require.ErrorAs(t, err, &di)
	assert.Equal(t, "opportunity 1", di.Entity)
}

func TestNormalizeOpportunity_MissingID(t *testing.T) {
	_, err := NormalizeOpportunity(gjson.Parse(`{"title":"x"}`))
	var di *DataIntegrityError
	assert.ErrorAs(t, err, &di)
}

func TestOwnerDisplay(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"postedBy":{"name":"Ada","email":"a@u.edu"}}`, "Ada (a@u.edu)"},
		{`{"postedBy":{"fullName":"Ada"}}`, "Ada"},
		{`{"postedBy":{"email":"a@u.edu"}}`, "a@u.edu"},
		{`{"postedBy":{}}`, "Anonymous"},
		{`{"postedBy":"Grace Hopper"}`, "Grace Hopper"},
		{`{"postedBy":"  "}`, "Anonymous"},
		{`{}`, "Anonymous"},
	}
	for _, tt := range tests {
		got, _ := ownerDisplay(gjson.Parse(tt.raw))
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestFormatDisplayDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"rfc3339", `{"createdAt":"2023-12-25T08:30:00Z"}`, "Dec 25, 2023"},
		{"local date time", `{"created_at":"2024-01-09T13:45:10.123456"}`, "Jan 9, 2024"},
		{"date only alias", `{"date":"2022-07-04"}`, "Jul 4, 2022"},
		{"epoch millis", `{"createdAt":1700000000000}`, "Nov 14, 2023"},
		{"epoch seconds", `{"createdAt":1700000000}`, "Nov 14, 2023"},
		{"array", `{"createdAt":[2024,2,29,10,0]}`, "Feb 29, 2024"},
		{"garbage", `{"createdAt":"yesterday-ish"}`, "Recently"},
		{"missing", `{}`, "Recently"},
		{"first alias wins", `{"createdAt":"2020-01-01","date":"2021-01-01"}`, "Jan 1, 2020"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDisplayDate(gjson.Parse(tt.raw), dateAliases...))
		})
	}
}

func TestNormalizeOpportunities(t *testing.T) {
	list, err := NormalizeOpportunities(gjson.Parse(`[{"id":1},{"id":2}]`))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = NormalizeOpportunities(gjson.Parse(`{"id":1}`))
	var di *DataIntegrityError
	assert.ErrorAs(t, err, &di)
}

func TestNormalizeProfile(t *testing.T) {
	p := NormalizeProfile(gjson.Parse(`{"user_id":9,"fullName":"Ada","email":"a@u.edu","availability":"available","skills":"Go,ML","rating":"4.5"}`))
	assert.Equal(t, "9", p.ID)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, []string{"Go", "ML"}, p.Skills)
	require.NotNil(t, p.Rating)
	assert.InDelta(t, 4.5, *p.Rating, 1e-9)

	p = NormalizeProfile(gjson.Parse(`{"email":"a@b.edu"}`))
	assert.Empty(t, p.ID)
	assert.Nil(t, p.Rating)
}

func TestNormalizeTeammateRequest(t *testing.T) {
	r, err := NormalizeTeammateRequest(gjson.Parse(`{"requestId":5,"type":"rating_request","projectId":3,"projectTitle":"P","rateeEmail":"b@u.edu","status":"PENDING"}`))
	require.NoError(t, err)
	assert.Equal(t, "5", r.RequestID)
	assert.True(t, r.IsRatingRequest())
	assert.Equal(t, "b@u.edu", r.RateeEmail)
	assert.Equal(t, model.RequestPending, r.Status)

	r, err = NormalizeTeammateRequest(gjson.Parse(`{"id":"x","status":"weird"}`))
	require.NoError(t, err)
	assert.Equal(t, model.JoinRequest, r.Type)
	assert.Equal(t, model.RequestPending, r.Status)
	assert.Empty(t, r.RateeEmail)

	_, err = NormalizeTeammateRequest(gjson.Parse(`{"projectTitle":"P"}`))
	var di *DataIntegrityError
	assert.ErrorAs(t, err, &di)
}

func TestNormalizeMatchResponse_PreservesOrder(t *testing.T) {
	raw := `{
		"project_id": "p1",
		"alpha": 0.7,
		"matches": [
			{"resume_id": "r3", "final_score": 0.41, "layer1_capability": {"capability_score": 0.5}},
			{"resume_id": "r1", "final_score": 0.93, "profile": {"name": "Zed"}},
			{"resume_id": 2, "final_score": 0.60}
		]
	}`
	resp, err := NormalizeMatchResponse(gjson.Parse(raw))
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Count)
	assert.InDelta(t, 0.7, resp.Alpha, 1e-9)
	ids := []string{}
	for _, c := range resp.Candidates {
		ids = append(ids, c.ResumeID)
	}
	assert.Equal(t, []string{"r3", "r1", "2"}, ids)
	assert.InDelta(t, 0.5, resp.Candidates[0].Capability.Score, 1e-9)
	assert.Equal(t, "Zed", resp.Candidates[1].ProfileSummary.Name)
}

func TestNormalizeMatchResponse_ExplicitCountAndMissingID(t *testing.T) {
	resp, err := NormalizeMatchResponse(gjson.Parse(`{"count":10,"matches":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Count)
	assert.Empty(t, resp.Candidates)

	_, err = NormalizeMatchResponse(gjson.Parse(`{"matches":[{"final_score":1}]}`))
	var di *DataIntegrityError
	assert.ErrorAs(t, err, &di)
}
