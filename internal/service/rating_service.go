package service

import (
	"context"
	"net/http"

	"github.com/fadilmartias/converge/internal/config"
	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/pkg/logger"
)

type RatingServiceInterface interface {
	SubmitRating(ctx context.Context, sub model.RatingSubmission) error
}

// RatingService posts ratings to the rating backend, which sits behind a
// tunnel that needs a bypass header on every request.
type RatingService struct {
	client *backendClient
}

func NewRatingService(cfg *config.BackendConfig, m *metrics.Metrics) *RatingService {
	c := newBackendClient(backendRating, cfg.RatingURL, cfg.Timeout, m)
	if cfg.RatingBypassHeader != "" {
		c.rc.SetHeader(cfg.RatingBypassHeader, "true")
	}
	return &RatingService{client: c}
}

func (s *RatingService) SubmitRating(ctx context.Context, sub model.RatingSubmission) error {
	const op = "submit rating"
	payload := dto.RatingPayload{
		RaterID:   dto.WireID(sub.RaterID),
		RateeID:   dto.WireID(sub.RateeID),
		ProjectID: dto.WireID(sub.ProjectID),
		CategoryScores: dto.CategoryScoresPayload{
			Technical:     sub.CategoryScores.Technical,
			Reliability:   sub.CategoryScores.Reliability,
			Communication: sub.CategoryScores.Communication,
			Initiative:    sub.CategoryScores.Initiative,
			Overall:       sub.CategoryScores.Overall,
		},
	}

	resp, err := s.client.execute(op, http.MethodPost, "/api/ratings/submit/", s.client.request(ctx).SetBody(payload))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &RatingSubmitError{remote(op, resp.StatusCode(), bodyText(resp), "Failed to submit rating")}
	}

	logger.Info().
		Str("project_id", sub.ProjectID).
		Str("ratee_id", sub.RateeID).
		Msg("rating submitted")
	return nil
}
