package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/pkg/logger"
)

// RatingTarget is the teammate a RATING_REQUEST asks the user to rate.
type RatingTarget struct {
	RequestID    string `json:"requestId"`
	ProjectID    string `json:"projectId"`
	ProjectTitle string `json:"projectTitle"`
	RateeID      string `json:"rateeId"`
	RateeName    string `json:"rateeName,omitempty"`
	RateeEmail   string `json:"rateeEmail,omitempty"`
}

// InboxUsecase holds the pending teammate requests. The list is always
// re-derived from the gateway, never merged.
type InboxUsecase struct {
	backend   service.BackendServiceInterface
	identity  Identity
	directory *ProjectDirectory
	registry  *LifecycleRegistry

	mu       sync.Mutex
	requests []model.TeammateRequest
}

func NewInboxUsecase(backend service.BackendServiceInterface, identity Identity, directory *ProjectDirectory, registry *LifecycleRegistry) *InboxUsecase {
	return &InboxUsecase{backend: backend, identity: identity, directory: directory, registry: registry}
}

func (uc *InboxUsecase) Load(ctx context.Context) ([]model.TeammateRequest, error) {
	reqs, err := uc.backend.GetTeammateRequests(ctx)
	if err != nil {
		return nil, err
	}
	uc.mu.Lock()
	uc.requests = reqs
	uc.mu.Unlock()
	return slices.Clone(reqs), nil
}

func (uc *InboxUsecase) find(ctx context.Context, requestID string) (model.TeammateRequest, error) {
	uc.mu.Lock()
	loaded := uc.requests != nil
	uc.mu.Unlock()
	if !loaded {
		if _, err := uc.Load(ctx); err != nil {
			return model.TeammateRequest{}, err
		}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	for _, r := range uc.requests {
		if r.RequestID == requestID {
			return r, nil
		}
	}
	return model.TeammateRequest{}, ErrUnknownRequest
}

// Accept accepts a join request, drops it from the inbox and refreshes the
// user's project list.
func (uc *InboxUsecase) Accept(ctx context.Context, requestID string) error {
	requestID = strings.TrimSpace(requestID)
	if err := uc.backend.AcceptTeammateRequest(ctx, requestID); err != nil {
		return err
	}

	uc.mu.Lock()
	uc.requests = slices.DeleteFunc(uc.requests, func(r model.TeammateRequest) bool {
		return r.RequestID == requestID
	})
	uc.mu.Unlock()

	logger.Info().Str("request_id", requestID).Msg("teammate request accepted")
	uc.directory.refreshQuietly(ctx)
	return nil
}

// OpenRatingRequest resolves who is to be rated: directly by rateeId, or by
// loading the project and matching a teammate on rateeEmail.
func (uc *InboxUsecase) OpenRatingRequest(ctx context.Context, requestID string) (RatingTarget, error) {
	req, err := uc.find(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return RatingTarget{}, err
	}
	if !req.IsRatingRequest() {
		return RatingTarget{}, ErrNotRatingRequest
	}
	if req.ProjectID == "" {
		return RatingTarget{}, service.NewValidationError("projectId", "rating request has no project")
	}

	target := RatingTarget{
		RequestID:    req.RequestID,
		ProjectID:    req.ProjectID,
		ProjectTitle: req.ProjectTitle,
		RateeID:      req.RateeID,
		RateeName:    req.RateeName,
		RateeEmail:   req.RateeEmail,
	}
	if target.RateeID != "" {
		return target, nil
	}
	if req.RateeEmail == "" {
		return RatingTarget{}, service.NewValidationError("rateeEmail", "rating request names no teammate")
	}

	project, err := uc.backend.GetProject(ctx, req.ProjectID)
	if err != nil {
		return RatingTarget{}, err
	}
	tm, ok := project.TeammateByEmail(req.RateeEmail)
	if !ok {
		return RatingTarget{}, &service.DataIntegrityError{
			Entity: "rating request " + req.RequestID,
			Reason: "no teammate with email " + req.RateeEmail + " in project " + req.ProjectID,
		}
	}
	target.RateeID = tm.ID
	if target.RateeName == "" {
		target.RateeName = tm.FullName
	}
	return target, nil
}

// SubmitRating answers a rating request and reloads the inbox. The rating
// goes through the project's lifecycle, so a pair already rated from the
// project view is not rated again here, and the reverse.
func (uc *InboxUsecase) SubmitRating(ctx context.Context, requestID string, raw model.RawScores) (model.RatingSubmission, error) {
	target, err := uc.OpenRatingRequest(ctx, requestID)
	if err != nil {
		return model.RatingSubmission{}, err
	}
	l, err := uc.registry.Open(ctx, target.ProjectID)
	if err != nil {
		return model.RatingSubmission{}, err
	}
	raterID := strings.TrimSpace(uc.identity.UserID())
	sub, err := l.submitRating(ctx, target.ProjectID, raterID, target.RateeID, raw)
	if err != nil {
		return model.RatingSubmission{}, err
	}
	if _, err := uc.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to reload inbox after rating")
	}
	return sub, nil
}
