package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/converge/internal/config"
	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/pkg/logger"
	"github.com/go-resty/resty/v2"
)

type BackendServiceInterface interface {
	Login(ctx context.Context, email, password string) (model.Session, error)
	Register(ctx context.Context, req dto.RegisterRequest) (model.Session, error)
	Logout(ctx context.Context) error
	GetOwnProfile(ctx context.Context) (model.Profile, error)
	GetProfileByID(ctx context.Context, id string) (model.Profile, error)
	CreateProject(ctx context.Context, form dto.ProjectForm) (model.Opportunity, error)
	ListMyProjects(ctx context.Context) ([]model.Opportunity, error)
	ExploreProjects(ctx context.Context) ([]model.Opportunity, error)
	GetProject(ctx context.Context, id string) (model.Opportunity, error)
	InviteTeammate(ctx context.Context, projectID, candidateID string) (InviteResult, error)
	GetTeammateRequests(ctx context.Context) ([]model.TeammateRequest, error)
	AcceptTeammateRequest(ctx context.Context, requestID string) error
	CompleteProject(ctx context.Context, projectID string) error
	DownloadOwnResume(ctx context.Context, dir string) (string, error)
	DownloadResumeOf(ctx context.Context, userID, dir string) (string, error)
	UploadResume(ctx context.Context, resumeBase64 string) error
}

// InviteResult tells whether an invitation was actually sent. Sent is false
// when the candidate's profile has no email; no request is issued then.
type InviteResult struct {
	Sent  bool
	Email string
}

// BackendService talks to the primary application backend.
type BackendService struct {
	client  *backendClient
	session *SessionService
}

func NewBackendService(cfg *config.BackendConfig, session *SessionService, m *metrics.Metrics) *BackendService {
	return &BackendService{
		client:  newBackendClient(backendPrimary, cfg.PrimaryURL, cfg.Timeout, m),
		session: session,
	}
}

// authed builds a request carrying the bearer token, or fails before any
// network activity when there is no session.
func (s *BackendService) authed(ctx context.Context) (*resty.Request, error) {
	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}
	return s.client.request(ctx).SetAuthToken(token), nil
}

// checkExpired turns a 401 into a SessionExpiredError, clearing the session.
func (s *BackendService) checkExpired(ctx context.Context, op string, resp *resty.Response) error {
	if resp.StatusCode() == http.StatusUnauthorized {
		return s.session.expireSession(ctx, op)
	}
	return nil
}

func (s *BackendService) fetchFailure(ctx context.Context, op string, resp *resty.Response, fallback string) error {
	if err := s.checkExpired(ctx, op, resp); err != nil {
		return err
	}
	return &FetchError{remote(op, resp.StatusCode(), bodyText(resp), fmt.Sprintf("%s: status %d", fallback, resp.StatusCode()))}
}

func (s *BackendService) Login(ctx context.Context, email, password string) (model.Session, error) {
	const op = "login"
	logger.Info().Str("email", email).Msg("attempting login")

	resp, err := s.client.execute(op, http.MethodPost, "/auth/login",
		s.client.request(ctx).SetBody(dto.LoginRequest{Email: email, Password: password}))
	if err != nil {
		return model.Session{}, err
	}
	if !resp.IsSuccess() {
		return model.Session{}, &AuthError{remote(op, resp.StatusCode(), bodyText(resp), "Invalid credentials")}
	}

	sess, err := s.establishFrom(ctx, op, resp)
	if err != nil {
		var di *DataIntegrityError
		if errors.As(err, &di) {
			return model.Session{}, &AuthError{remote(op, resp.StatusCode(), "", "no token in login response")}
		}
		return model.Session{}, err
	}
	logger.Info().Str("email", email).Bool("has_user_id", sess.UserID != "").Msg("authentication successful")
	return sess, nil
}

func (s *BackendService) Register(ctx context.Context, req dto.RegisterRequest) (model.Session, error) {
	const op = "register"
	logger.Info().Str("email", req.Email).Msg("registering user")

	resp, err := s.client.execute(op, http.MethodPost, "/auth/register", s.client.request(ctx).SetBody(req))
	if err != nil {
		return model.Session{}, err
	}
	if !resp.IsSuccess() {
		return model.Session{}, &RegistrationError{remote(op, resp.StatusCode(), bodyText(resp), "Registration failed")}
	}

	sess, err := s.establishFrom(ctx, op, resp)
	if err != nil {
		var di *DataIntegrityError
		if errors.As(err, &di) {
			return model.Session{}, &RegistrationError{remote(op, resp.StatusCode(), "", "no token in registration response")}
		}
		return model.Session{}, err
	}
	return sess, nil
}

// establishFrom reads {token, id|userId|user_id} and hands it to the
// session service.
func (s *BackendService) establishFrom(ctx context.Context, op string, resp *resty.Response) (model.Session, error) {
	body, err := parseBody(op, resp.Body())
	if err != nil {
		return model.Session{}, err
	}
	token, ok := firstString(body, "token", "accessToken")
	if !ok {
		return model.Session{}, &DataIntegrityError{Entity: op, Reason: "missing token"}
	}
	userID, _ := firstString(body, sessionIDAliases...)
	if err := s.session.Establish(ctx, token, userID); err != nil {
		return model.Session{}, err
	}
	return s.session.Current(), nil
}

func (s *BackendService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

func (s *BackendService) GetOwnProfile(ctx context.Context) (model.Profile, error) {
	const op = "get own profile"
	req, err := s.authed(ctx)
	if err != nil {
		return model.Profile{}, err
	}

	resp, err := s.client.execute(op, http.MethodGet, "/api/profile", req)
	if err != nil {
		return model.Profile{}, err
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return model.Profile{}, s.session.expireSession(ctx, op)
	case resp.StatusCode() == http.StatusForbidden:
		return model.Profile{}, &AccessDeniedError{remote(op, resp.StatusCode(), "", "Access Denied (403). Backend rejected the request.")}
	case !resp.IsSuccess():
		return model.Profile{}, &FetchError{remote(op, resp.StatusCode(), bodyText(resp), fmt.Sprintf("Failed to fetch profile. Status: %d", resp.StatusCode()))}
	}

	body, err := parseBody("profile", resp.Body())
	if err != nil {
		return model.Profile{}, err
	}
	p := NormalizeProfile(body)
	if p.ID == "" {
		logger.Warn().Msg("profile fetched but no id field found in response")
		return p, nil
	}
	if _, err := s.session.HealUserID(ctx, p.ID); err != nil {
		logger.Error().Err(err).Msg("failed to persist recovered user id")
	}
	return p, nil
}

func (s *BackendService) GetProfileByID(ctx context.Context, id string) (model.Profile, error) {
	const op = "get profile by id"
	if strings.TrimSpace(id) == "" {
		return model.Profile{}, NewValidationError("id", "user id is required")
	}
	req, err := s.authed(ctx)
	if err != nil {
		return model.Profile{}, err
	}

	resp, err := s.client.execute(op, http.MethodGet, "/api/profile/{id}", req.SetPathParam("id", id))
	if err != nil {
		return model.Profile{}, err
	}
	if !resp.IsSuccess() {
		return model.Profile{}, s.fetchFailure(ctx, op, resp, "Failed to fetch user profile")
	}

	body, err := parseBody("profile", resp.Body())
	if err != nil {
		return model.Profile{}, err
	}
	p := NormalizeProfile(body)
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

func (s *BackendService) CreateProject(ctx context.Context, form dto.ProjectForm) (model.Opportunity, error) {
	const op = "create project"
	req, err := s.authed(ctx)
	if err != nil {
		return model.Opportunity{}, err
	}

	payload := form.ToPayload()
	logger.Info().Str("title", payload.Title).Str("type", payload.Type).Msg("creating project")

	resp, err := s.client.execute(op, http.MethodPost, "/api/projects", req.SetBody(payload))
	if err != nil {
		return model.Opportunity{}, err
	}
	if !resp.IsSuccess() {
		return model.Opportunity{}, s.fetchFailure(ctx, op, resp, "Failed to create project")
	}

	body, err := parseBody("project", resp.Body())
	if err != nil {
		return model.Opportunity{}, err
	}
	return NormalizeOpportunity(body)
}

func (s *BackendService) listProjects(ctx context.Context, op, path, fallback string) ([]model.Opportunity, error) {
	req, err := s.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.execute(op, http.MethodGet, path, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, s.fetchFailure(ctx, op, resp, fallback)
	}
	body, err := parseBody("project list", resp.Body())
	if err != nil {
		return nil, err
	}
	return NormalizeOpportunities(body)
}

func (s *BackendService) ListMyProjects(ctx context.Context) ([]model.Opportunity, error) {
	return s.listProjects(ctx, "list my projects", "/api/projects", "Failed to fetch my projects")
}

func (s *BackendService) ExploreProjects(ctx context.Context) ([]model.Opportunity, error) {
	return s.listProjects(ctx, "explore projects", "/api/projects/explore", "Failed to fetch explore feed")
}

func (s *BackendService) GetProject(ctx context.Context, id string) (model.Opportunity, error) {
	const op = "get project"
	if strings.TrimSpace(id) == "" {
		return model.Opportunity{}, NewValidationError("projectId", "project id is required")
	}
	req, err := s.authed(ctx)
	if err != nil {
		return model.Opportunity{}, err
	}
	resp, err := s.client.execute(op, http.MethodGet, "/api/projects/{id}", req.SetPathParam("id", id))
	if err != nil {
		return model.Opportunity{}, err
	}
	if !resp.IsSuccess() {
		return model.Opportunity{}, s.fetchFailure(ctx, op, resp, "Failed to fetch project details")
	}
	body, err := parseBody("project", resp.Body())
	if err != nil {
		return model.Opportunity{}, err
	}
	return NormalizeOpportunity(body)
}

// InviteTeammate resolves the candidate's profile for an email, then sends
// the invitation keyed by that email.
func (s *BackendService) InviteTeammate(ctx context.Context, projectID, candidateID string) (InviteResult, error) {
	const op = "invite teammate"
	if strings.TrimSpace(projectID) == "" {
		return InviteResult{}, NewValidationError("projectId", "project id is required")
	}

	profile, err := s.GetProfileByID(ctx, candidateID)
	if err != nil {
		return InviteResult{}, err
	}
	if profile.Email == "" {
		logger.Warn().Str("candidate_id", candidateID).Msg("candidate profile has no email, invitation not sent")
		return InviteResult{}, nil
	}

	req, err := s.authed(ctx)
	if err != nil {
		return InviteResult{}, err
	}
	resp, err := s.client.execute(op, http.MethodPost, "/api/projects/{id}/teammates",
		req.SetPathParam("id", projectID).SetBody(dto.InviteTeammatePayload{Email: profile.Email}))
	if err != nil {
		return InviteResult{}, err
	}
	if !resp.IsSuccess() {
		return InviteResult{}, s.fetchFailure(ctx, op, resp, "Failed to send request")
	}

	logger.Info().Str("project_id", projectID).Str("email", profile.Email).Msg("teammate request sent")
	return InviteResult{Sent: true, Email: profile.Email}, nil
}

// GetTeammateRequests degrades every remote failure to an empty inbox. Only
// the missing-session precondition is reported.
func (s *BackendService) GetTeammateRequests(ctx context.Context) ([]model.TeammateRequest, error) {
	const op = "get teammate requests"
	req, err := s.authed(ctx)
	if err != nil {
		return nil, err
	}

	empty := []model.TeammateRequest{}
	resp, err := s.client.execute(op, http.MethodGet, "/api/projects/teammates/requests", req)
	if err != nil {
		logger.Error().Err(err).Msg("get teammate requests failed")
		return empty, nil
	}
	if !resp.IsSuccess() {
		if err := s.checkExpired(ctx, op, resp); err != nil {
			logger.Warn().Err(err).Msg("session expired while loading inbox")
		}
		logger.Error().Int("status", resp.StatusCode()).Msg("get teammate requests failed")
		return empty, nil
	}

	body, err := parseBody("teammate requests", resp.Body())
	if err != nil || !body.IsArray() {
		logger.Error().Err(err).Msg("teammate requests payload unreadable")
		return empty, nil
	}

	out := make([]model.TeammateRequest, 0, len(body.Array()))
	for _, raw := range body.Array() {
		r, err := NormalizeTeammateRequest(raw)
		if err != nil {
			logger.Warn().Err(err).Msg("skipping teammate request")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *BackendService) AcceptTeammateRequest(ctx context.Context, requestID string) error {
	const op = "accept teammate request"
	if strings.TrimSpace(requestID) == "" {
		return NewValidationError("requestId", "request id is required")
	}
	req, err := s.authed(ctx)
	if err != nil {
		return err
	}
	resp, err := s.client.execute(op, http.MethodPost, "/api/projects/teammates/requests/{id}/accept",
		req.SetPathParam("id", requestID))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return s.fetchFailure(ctx, op, resp, "Failed to accept request")
	}
	return nil
}

func (s *BackendService) CompleteProject(ctx context.Context, projectID string) error {
	const op = "complete project"
	if strings.TrimSpace(projectID) == "" {
		return NewValidationError("projectId", "project id is required")
	}
	req, err := s.authed(ctx)
	if err != nil {
		return err
	}
	resp, err := s.client.execute(op, http.MethodPost, "/api/projects/{id}/complete", req.SetPathParam("id", projectID))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return s.fetchFailure(ctx, op, resp, "Failed to complete project")
	}
	return nil
}

func (s *BackendService) DownloadOwnResume(ctx context.Context, dir string) (string, error) {
	return s.download(ctx, "download own resume", "/api/resume/download", nil, filepath.Join(dir, "my_resume.pdf"))
}

func (s *BackendService) DownloadResumeOf(ctx context.Context, userID, dir string) (string, error) {
	safe := safeFileComponent(userID)
	if safe == "" {
		return "", NewValidationError("id", "user id is required")
	}
	return s.download(ctx, "download resume", "/api/resume/download/{id}",
		map[string]string{"id": userID}, filepath.Join(dir, "resume_"+safe+".pdf"))
}

// download fetches the blob and saves it locally, returning the saved path.
func (s *BackendService) download(ctx context.Context, op, path string, params map[string]string, dest string) (string, error) {
	req, err := s.authed(ctx)
	if err != nil {
		return "", err
	}
	req.SetHeader("Accept", "application/pdf, application/octet-stream").SetPathParams(params)

	resp, err := s.client.execute(op, http.MethodGet, path, req)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		if err := s.checkExpired(ctx, op, resp); err != nil {
			return "", err
		}
		return "", &DownloadError{remote(op, resp.StatusCode(), bodyText(resp), "Failed to download resume.")}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("prepare download dir: %w", err)
	}
	if err := os.WriteFile(dest, resp.Body(), 0o644); err != nil {
		return "", fmt.Errorf("save resume: %w", err)
	}
	logger.Info().Str("path", dest).Int("bytes", len(resp.Body())).Msg("resume saved")
	return dest, nil
}

func (s *BackendService) UploadResume(ctx context.Context, resumeBase64 string) error {
	const op = "upload resume"
	if resumeBase64 == "" {
		return NewValidationError("resumePdf", "resume document is required")
	}
	req, err := s.authed(ctx)
	if err != nil {
		return err
	}
	resp, err := s.client.execute(op, http.MethodPost, "/api/resume/upload",
		req.SetBody(dto.UploadResumePayload{ResumePdf: resumeBase64}))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		if err := s.checkExpired(ctx, op, resp); err != nil {
			return err
		}
		return &UploadError{remote(op, resp.StatusCode(), bodyText(resp), "Failed to upload resume.")}
	}
	logger.Info().Msg("resume uploaded")
	return nil
}

func safeFileComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, strings.TrimSpace(s))
}
