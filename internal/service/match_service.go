package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fadilmartias/converge/internal/config"
	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/pkg/logger"
)

type MatchServiceInterface interface {
	RequestTeammateMatches(ctx context.Context, projectID string) (*model.MatchResponse, error)
}

// MatchService calls the AI-matching backend. The backend exposes the
// recommendation query as a POST; that is kept for compatibility.
type MatchService struct {
	client *backendClient
	topN   int
}

func NewMatchService(cfg *config.BackendConfig, m *metrics.Metrics) *MatchService {
	topN := cfg.MatchTopN
	if topN <= 0 {
		topN = 5
	}
	return &MatchService{
		client: newBackendClient(backendMatch, cfg.MatchURL, cfg.Timeout, m),
		topN:   topN,
	}
}

func (s *MatchService) RequestTeammateMatches(ctx context.Context, projectID string) (*model.MatchResponse, error) {
	const op = "request teammate matches"
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, NewValidationError("projectId", "project id is required to fetch matches")
	}

	logger.Info().Str("project_id", projectID).Int("top", s.topN).Msg("requesting teammate matches")
	req := s.client.request(ctx).
		SetPathParam("projectId", projectID).
		SetQueryParam("top", strconv.Itoa(s.topN))

	resp, err := s.client.execute(op, http.MethodPost, "/api/project/match/{projectId}/", req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &FetchError{remote(op, resp.StatusCode(), bodyText(resp), fmt.Sprintf("ML API Error: %d", resp.StatusCode()))}
	}

	body, err := parseBody("match response", resp.Body())
	if err != nil {
		return nil, err
	}
	out, err := NormalizeMatchResponse(body)
	if err != nil {
		return nil, err
	}
	if out.ProjectID == "" {
		out.ProjectID = projectID
	}
	logger.Info().Str("project_id", projectID).Int("count", out.Count).Msg("teammate matches received")
	return out, nil
}
