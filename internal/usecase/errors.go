package usecase

import "github.com/fadilmartias/converge/internal/service"

// Lifecycle preconditions. All of them are validation errors: the request
// is rejected before any network call.
var (
	ErrNoProject        = service.NewValidationError("project", "project has not been created yet")
	ErrProjectExists    = service.NewValidationError("project", "project already created")
	ErrProjectCompleted = service.NewValidationError("project", "project is already completed")
	ErrMatchInFlight    = service.NewValidationError("matches", "a match search is already running for this project")
	ErrMatchesNotLoaded = service.NewValidationError("matches", "no match candidates loaded")
	ErrUnknownCandidate = service.NewValidationError("candidateId", "candidate is not among the loaded matches")
	ErrNotConfirmed     = service.NewValidationError("confirm", "completing a project must be confirmed")
	ErrProjectNotDone   = service.NewValidationError("project", "ratings open once the project is completed")
	ErrAlreadyRated     = service.NewValidationError("rateeId", "teammate already rated for this project")
	ErrSelfRating       = service.NewValidationError("rateeId", "you cannot rate yourself")
	ErrNotTeammate      = service.NewValidationError("rateeId", "ratee is not a member of this project")
	ErrCandidateNoEmail = service.NewValidationError("candidateId", "candidate profile has no email, invitation not sent")
	ErrNotRatingRequest = service.NewValidationError("requestId", "request is not a rating request")
	ErrUnknownRequest   = service.NewValidationError("requestId", "request not found in inbox")
	ErrDocumentRequired = service.NewValidationError("resume", "a resume document is required")
	ErrPasswordMismatch = service.NewValidationError("confirmPassword", "passwords do not match")
)
