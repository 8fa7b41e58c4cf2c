package usecase

import (
	"context"
	"testing"

	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCategoryScores(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawScores
		want model.CategoryScores
	}{
		{"all fives", model.RawScores{5, 5, 5, 5, 5, 5, 5, 5}, model.CategoryScores{Technical: 5, Reliability: 5, Communication: 5, Initiative: 5, Overall: 5}},
		{"all zeros", model.RawScores{}, model.CategoryScores{}},
		{"mixed", model.RawScores{1, 3, 2, 4, 0, 5, 2.5, 4}, model.CategoryScores{Technical: 2, Reliability: 3, Communication: 2.5, Initiative: 2.5, Overall: 4}},
		{"defaults", model.DefaultRawScores(), model.CategoryScores{Technical: 2.5, Reliability: 2.5, Communication: 2.5, Initiative: 2.5, Overall: 2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeCategoryScores(tt.raw))
		})
	}
}

func answers(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = &vs[i]
	}
	return out
}

func TestRawScoresFromAnswers(t *testing.T) {
	raw, err := RawScoresFromAnswers(answers(1, 3, 2, 4, 0, 5, 2.5, 4))
	require.NoError(t, err)
	assert.Equal(t, model.RawScores{1, 3, 2, 4, 0, 5, 2.5, 4}, raw)

	raw, err = RawScoresFromAnswers(nil)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRawScores(), raw)

	raw, err = RawScoresFromAnswers(answers(1, 2))
	require.NoError(t, err)
	assert.Equal(t, model.RawScores{1, 2, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5}, raw)

	partial := answers(5, 0, 4)
	partial[1] = nil
	raw, err = RawScoresFromAnswers(partial)
	require.NoError(t, err)
	assert.Equal(t, model.RawScores{5, 2.5, 4, 2.5, 2.5, 2.5, 2.5, 2.5}, raw)

	_, err = RawScoresFromAnswers(answers(1, 1, 1, 1, 1, 1, 1, 1, 1))
	assert.True(t, service.IsValidation(err))

	_, err = RawScoresFromAnswers(answers(1, 1, 1, 1, 1, 1, 1, 5.5))
	assert.True(t, service.IsValidation(err))

	_, err = RawScoresFromAnswers(answers(1, 1, 1, 1, 1, 1, 1.25, 1))
	assert.True(t, service.IsValidation(err))

	_, err = RawScoresFromAnswers(answers(-0.5))
	assert.True(t, service.IsValidation(err))
}

func TestRatingUsecase_Submit(t *testing.T) {
	ratings := &fakeRatings{}
	uc := NewRatingUsecase(ratings)

	sub, err := uc.Submit(context.Background(), "p1", "u1", "u2", model.RawScores{1, 3, 2, 4, 0, 5, 2.5, 4})
	require.NoError(t, err)
	assert.Equal(t, "u1", sub.RaterID)
	assert.Equal(t, "u2", sub.RateeID)
	assert.Equal(t, 2.5, sub.CategoryScores.Communication)
	assert.Equal(t, 1, ratings.count())
}

func TestRatingUsecase_SubmitRejectsUnresolvedIDs(t *testing.T) {
	ratings := &fakeRatings{}
	uc := NewRatingUsecase(ratings)
	ctx := context.Background()
	raw := model.DefaultRawScores()

	for _, tc := range []struct{ project, rater, ratee string }{
		{"p1", "", "u2"},
		{"p1", "u1", " "},
		{"", "u1", "u2"},
		{"p1", "u1", "u1"},
	} {
		_, err := uc.Submit(ctx, tc.project, tc.rater, tc.ratee, raw)
		assert.True(t, service.IsValidation(err), "%+v", tc)
	}
	assert.Zero(t, ratings.count())
}

func TestRatingUsecase_SubmitPropagatesBackendError(t *testing.T) {
	ratings := &fakeRatings{err: &service.RatingSubmitError{RemoteError: service.RemoteError{Op: "submit rating", Status: 500, Message: "boom"}}}
	uc := NewRatingUsecase(ratings)

	_, err := uc.Submit(context.Background(), "p1", "u1", "u2", model.DefaultRawScores())
	var rse *service.RatingSubmitError
	require.ErrorAs(t, err, &rse)
	assert.Equal(t, "boom", rse.Message)
}
