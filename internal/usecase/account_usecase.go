package usecase

import (
	"context"
	"net/mail"
	"strings"

	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/pkg/logger"
)

type AccountUsecase struct {
	backend  service.BackendServiceInterface
	pipeline *ResumePipeline
	registry *LifecycleRegistry
}

func NewAccountUsecase(backend service.BackendServiceInterface, pipeline *ResumePipeline, registry *LifecycleRegistry) *AccountUsecase {
	return &AccountUsecase{backend: backend, pipeline: pipeline, registry: registry}
}

func (uc *AccountUsecase) Login(ctx context.Context, req dto.LoginRequest) (model.Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.Session{}, service.NewValidationError("email", "email and password are required")
	}
	return uc.backend.Login(ctx, email, req.Password)
}

func validateRegisterForm(f dto.RegisterForm) error {
	switch {
	case strings.TrimSpace(f.FullName) == "":
		return service.NewValidationError("fullName", "full name is required")
	case strings.TrimSpace(f.Email) == "":
		return service.NewValidationError("email", "email is required")
	case f.Password == "":
		return service.NewValidationError("password", "password is required")
	case f.Password != f.ConfirmPassword:
		return ErrPasswordMismatch
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
		return service.NewValidationError("email", "email is not valid")
	}
	return nil
}

// Register validates the form, processes the resume and only then calls the
// backend, so the request carries both the text and the base64 document.
func (uc *AccountUsecase) Register(ctx context.Context, form dto.RegisterForm, document []byte) (model.Session, error) {
	if err := validateRegisterForm(form); err != nil {
		return model.Session{}, err
	}
	doc, err := uc.pipeline.Run(ctx, document)
	if err != nil {
		return model.Session{}, err
	}

	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	form.Availability = string(model.ParseAvailability(form.Availability))

	sess, err := uc.backend.Register(ctx, form.ToRequest(doc.Text, doc.Base64))
	if err != nil {
		return model.Session{}, err
	}
	logger.Info().Str("email", form.Email).Int("resume_chars", len(doc.Text)).Msg("registration complete")
	return sess, nil
}

// Logout clears the session and forgets per-project view state.
func (uc *AccountUsecase) Logout(ctx context.Context) error {
	if err := uc.backend.Logout(ctx); err != nil {
		return err
	}
	if uc.registry != nil {
		uc.registry.Reset()
	}
	return nil
}

func (uc *AccountUsecase) OwnProfile(ctx context.Context) (model.Profile, error) {
	return uc.backend.GetOwnProfile(ctx)
}

func (uc *AccountUsecase) Profile(ctx context.Context, id string) (model.Profile, error) {
	return uc.backend.GetProfileByID(ctx, id)
}
