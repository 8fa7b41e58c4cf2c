package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/internal/service"
)

// EncodeCategoryScores folds the eight survey answers into the five
// categories the rating backend stores.
func EncodeCategoryScores(raw model.RawScores) model.CategoryScores {
	return model.CategoryScores{
		Technical:     (raw[0] + raw[1]) / 2,
		Reliability:   (raw[2] + raw[3]) / 2,
		Communication: (raw[4] + raw[5]) / 2,
		Initiative:    raw[6],
		Overall:       raw[7],
	}
}

// RawScoresFromAnswers overlays the supplied answers on the midpoint
// defaults. Missing or null answers keep the midpoint.
func RawScoresFromAnswers(in []*float64) (model.RawScores, error) {
	raw := model.DefaultRawScores()
	if len(in) > len(raw) {
		return raw, service.NewValidationError("scores", fmt.Sprintf("expected at most %d scores, got %d", len(raw), len(in)))
	}
	for i, v := range in {
		if v != nil {
			raw[i] = *v
		}
	}
	return raw, ValidateRawScores(raw)
}

func ValidateRawScores(raw model.RawScores) error {
	for i, v := range raw {
		if v < model.RatingScaleMin || v > model.RatingScaleMax || math.IsNaN(v) {
			return service.NewValidationError("scores", fmt.Sprintf("q%d must be between %.0f and %.0f", i+1, model.RatingScaleMin, model.RatingScaleMax))
		}
		if steps := v / model.RatingScaleStep; steps != math.Trunc(steps) {
			return service.NewValidationError("scores", fmt.Sprintf("q%d must be a multiple of %.1f", i+1, model.RatingScaleStep))
		}
	}
	return nil
}

type RatingUsecase struct {
	ratings service.RatingServiceInterface
}

func NewRatingUsecase(ratings service.RatingServiceInterface) *RatingUsecase {
	return &RatingUsecase{ratings: ratings}
}

// Submit validates identifiers and scores, then posts the encoded rating.
// Nothing is sent when any identifier is unresolved.
func (uc *RatingUsecase) Submit(ctx context.Context, projectID, raterID, rateeID string, raw model.RawScores) (model.RatingSubmission, error) {
	raterID, rateeID, projectID = strings.TrimSpace(raterID), strings.TrimSpace(rateeID), strings.TrimSpace(projectID)
	switch {
	case raterID == "":
		return model.RatingSubmission{}, service.NewValidationError("raterId", "could not resolve your user id, please log in again")
	case rateeID == "":
		return model.RatingSubmission{}, service.NewValidationError("rateeId", "could not resolve the teammate to rate")
	case projectID == "":
		return model.RatingSubmission{}, service.NewValidationError("projectId", "project id is required")
	case raterID == rateeID:
		return model.RatingSubmission{}, ErrSelfRating
	}
	if err := ValidateRawScores(raw); err != nil {
		return model.RatingSubmission{}, err
	}

	sub := model.RatingSubmission{
		RaterID:        raterID,
		RateeID:        rateeID,
		ProjectID:      projectID,
		CategoryScores: EncodeCategoryScores(raw),
	}
	if err := uc.ratings.SubmitRating(ctx, sub); err != nil {
		return model.RatingSubmission{}, err
	}
	return sub, nil
}
