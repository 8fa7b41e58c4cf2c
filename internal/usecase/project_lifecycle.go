package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/pkg/logger"
)

type Phase string

const (
	PhaseDrafting  Phase = "DRAFTING"
	PhaseCreated   Phase = "CREATED"
	PhaseActive    Phase = "ACTIVE"
	PhaseCompleted Phase = "COMPLETED"
)

type MatchState string

const (
	MatchIdle    MatchState = "IDLE"
	MatchLoading MatchState = "LOADING"
	MatchLoaded  MatchState = "LOADED"
)

// Identity exposes the signed-in user's id.
type Identity interface {
	UserID() string
}

// LifecycleSnapshot is a consistent copy of one project's view state.
type LifecycleSnapshot struct {
	Phase      Phase                `json:"phase"`
	Project    *model.Opportunity   `json:"project,omitempty"`
	Match      MatchState           `json:"match"`
	Matches    *model.MatchResponse `json:"matches,omitempty"`
	TopMatchID string               `json:"topMatchId,omitempty"`
	MatchError string               `json:"matchError,omitempty"`
	Invited    []string             `json:"invited"`
	Rated      []string             `json:"rated"`
}

type ratedPair struct {
	rater string
	ratee string
}

// ProjectLifecycle drives one project from draft to completion and rating.
// Network calls run without the lock held; state is re-checked after them.
type ProjectLifecycle struct {
	backend  service.BackendServiceInterface
	matcher  service.MatchServiceInterface
	ratings  *RatingUsecase
	identity Identity
	onDone   func(ctx context.Context)

	mu         sync.Mutex
	phase      Phase
	project    *model.Opportunity
	match      MatchState
	matches    *model.MatchResponse
	matchErr   string
	invited    map[string]bool
	inviting   map[string]bool
	rated      map[ratedPair]bool
	rating     map[ratedPair]bool
	completing bool
}

func NewProjectLifecycle(backend service.BackendServiceInterface, matcher service.MatchServiceInterface, ratings *RatingUsecase, identity Identity) *ProjectLifecycle {
	return &ProjectLifecycle{
		backend:  backend,
		matcher:  matcher,
		ratings:  ratings,
		identity: identity,
		phase:    PhaseDrafting,
		match:    MatchIdle,
		invited:  map[string]bool{},
		inviting: map[string]bool{},
		rated:    map[ratedPair]bool{},
		rating:   map[ratedPair]bool{},
	}
}

// OnCompleted registers a hook run after the project is marked complete.
func (l *ProjectLifecycle) OnCompleted(fn func(ctx context.Context)) {
	l.mu.Lock()
	l.onDone = fn
	l.mu.Unlock()
}

func (l *ProjectLifecycle) Snapshot() LifecycleSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *ProjectLifecycle) snapshotLocked() LifecycleSnapshot {
	s := LifecycleSnapshot{
		Phase:      l.phase,
		Match:      l.match,
		MatchError: l.matchErr,
		Invited:    []string{},
		Rated:      []string{},
	}
	if l.project != nil {
		p := *l.project
		s.Project = &p
	}
	if l.matches != nil {
		s.Matches = l.matches
		if len(l.matches.Candidates) > 0 {
			s.TopMatchID = l.matches.Candidates[0].ResumeID
		}
	}
	for id := range l.invited {
		s.Invited = append(s.Invited, id)
	}
	me := l.identity.UserID()
	for pair := range l.rated {
		if pair.rater == me {
			s.Rated = append(s.Rated, pair.ratee)
		}
	}
	slices.Sort(s.Invited)
	slices.Sort(s.Rated)
	return s
}

// ProjectID is empty while drafting.
func (l *ProjectLifecycle) ProjectID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.project == nil {
		return ""
	}
	return l.project.ID
}

func validateProjectForm(form dto.ProjectForm) error {
	if strings.TrimSpace(form.Title) == "" {
		return service.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(form.Description) == "" {
		return service.NewValidationError("description", "description is required")
	}
	if t := strings.TrimSpace(form.Type); t != "" && !model.OpportunityType(strings.ToUpper(t)).Valid() {
		return service.NewValidationError("type", "type must be PROJECT, RESEARCH or OPEN_SOURCE")
	}
	return nil
}

// Submit creates the project from a draft form. Drafting -> Created.
func (l *ProjectLifecycle) Submit(ctx context.Context, form dto.ProjectForm) (LifecycleSnapshot, error) {
	if err := validateProjectForm(form); err != nil {
		return LifecycleSnapshot{}, err
	}
	l.mu.Lock()
	if l.phase != PhaseDrafting {
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrProjectExists
	}
	l.mu.Unlock()

	created, err := l.backend.CreateProject(ctx, form)
	if err != nil {
		return LifecycleSnapshot{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase != PhaseDrafting {
		return LifecycleSnapshot{}, ErrProjectExists
	}
	l.project = &created
	l.phase = PhaseCreated
	logger.Info().Str("project_id", created.ID).Msg("project created")
	return l.snapshotLocked(), nil
}

// Open enters the lifecycle for an existing project: Completed when the
// backend says so, Active otherwise.
func (l *ProjectLifecycle) Open(ctx context.Context, projectID string) (LifecycleSnapshot, error) {
	l.mu.Lock()
	if l.phase != PhaseDrafting {
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrProjectExists
	}
	l.mu.Unlock()

	p, err := l.backend.GetProject(ctx, projectID)
	if err != nil {
		return LifecycleSnapshot{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase != PhaseDrafting {
		return LifecycleSnapshot{}, ErrProjectExists
	}
	l.project = &p
	l.phase = PhaseActive
	if p.IsCompleted() {
		l.phase = PhaseCompleted
	}
	return l.snapshotLocked(), nil
}

// RequestMatches asks the matching backend for candidates. Only one search
// per project may be in flight; a failure returns to Idle and keeps the
// project phase.
func (l *ProjectLifecycle) RequestMatches(ctx context.Context) (LifecycleSnapshot, error) {
	l.mu.Lock()
	switch {
	case l.phase == PhaseDrafting:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrNoProject
	case l.phase == PhaseCompleted || l.completing:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrProjectCompleted
	case l.match == MatchLoading:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrMatchInFlight
	}
	prev := l.match
	l.match = MatchLoading
	l.matchErr = ""
	projectID := l.project.ID
	l.mu.Unlock()

	resp, err := l.matcher.RequestTeammateMatches(ctx, projectID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.match = MatchIdle
		if prev == MatchLoaded && l.matches != nil {
			l.match = MatchLoaded
		}
		l.matchErr = err.Error()
		logger.Warn().Err(err).Str("project_id", projectID).Msg("match search failed")
		return l.snapshotLocked(), err
	}
	if l.phase == PhaseCompleted || l.completing {
		l.match = MatchIdle
		return l.snapshotLocked(), ErrProjectCompleted
	}
	l.matches = resp
	l.match = MatchLoaded
	return l.snapshotLocked(), nil
}

func (l *ProjectLifecycle) hasCandidateLocked(id string) bool {
	if l.matches == nil {
		return false
	}
	for _, c := range l.matches.Candidates {
		if c.ResumeID == id {
			return true
		}
	}
	return false
}

// Invite sends a join invitation to a loaded candidate. Inviting a
// candidate that is already invited, or whose invite is in flight, is a
// no-op. A project being completed accepts no invitations.
func (l *ProjectLifecycle) Invite(ctx context.Context, candidateID string) (LifecycleSnapshot, error) {
	candidateID = strings.TrimSpace(candidateID)

	l.mu.Lock()
	switch {
	case l.phase == PhaseDrafting:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrNoProject
	case l.phase == PhaseCompleted || l.completing:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrProjectCompleted
	case l.match != MatchLoaded:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrMatchesNotLoaded
	case !l.hasCandidateLocked(candidateID):
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrUnknownCandidate
	case l.invited[candidateID] || l.inviting[candidateID]:
		defer l.mu.Unlock()
		return l.snapshotLocked(), nil
	}
	l.inviting[candidateID] = true
	projectID := l.project.ID
	l.mu.Unlock()

	res, err := l.backend.InviteTeammate(ctx, projectID, candidateID)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inviting, candidateID)
	if err != nil {
		return l.snapshotLocked(), err
	}
	if !res.Sent {
		return l.snapshotLocked(), ErrCandidateNoEmail
	}
	if l.phase == PhaseCompleted || l.completing {
		logger.Warn().Str("project_id", projectID).Str("candidate_id", candidateID).Msg("project completed while invite was in flight")
		return l.snapshotLocked(), ErrProjectCompleted
	}
	l.invited[candidateID] = true
	return l.snapshotLocked(), nil
}

// Complete marks the project done. It needs explicit confirmation and is
// irreversible. The project is re-fetched afterwards; if that fails the
// local copy is marked completed instead.
func (l *ProjectLifecycle) Complete(ctx context.Context, confirmed bool) (LifecycleSnapshot, error) {
	if !confirmed {
		return LifecycleSnapshot{}, ErrNotConfirmed
	}
	l.mu.Lock()
	switch {
	case l.phase == PhaseDrafting:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrNoProject
	case l.phase == PhaseCompleted || l.completing:
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrProjectCompleted
	}
	l.completing = true
	projectID := l.project.ID
	l.mu.Unlock()

	if err := l.backend.CompleteProject(ctx, projectID); err != nil {
		l.mu.Lock()
		l.completing = false
		l.mu.Unlock()
		return LifecycleSnapshot{}, err
	}

	refreshed, refreshErr := l.backend.GetProject(ctx, projectID)

	l.mu.Lock()
	l.completing = false
	l.phase = PhaseCompleted
	l.match = MatchIdle
	if refreshErr == nil {
		l.project = &refreshed
	} else {
		logger.Warn().Err(refreshErr).Str("project_id", projectID).Msg("failed to refresh completed project")
	}
	l.project.Status = model.StatusCompleted
	onDone := l.onDone
	snap := l.snapshotLocked()
	l.mu.Unlock()

	logger.Info().Str("project_id", projectID).Msg("project completed")
	if onDone != nil {
		onDone(ctx)
	}
	return snap, nil
}

// Rate submits the signed-in user's rating of a teammate. The ratee must be
// a member of the completed project and not the rater; each pair is rated
// once.
func (l *ProjectLifecycle) Rate(ctx context.Context, rateeID string, raw model.RawScores) (LifecycleSnapshot, error) {
	rateeID = strings.TrimSpace(rateeID)
	raterID := strings.TrimSpace(l.identity.UserID())

	l.mu.Lock()
	if l.phase != PhaseCompleted {
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrProjectNotDone
	}
	if _, ok := l.project.Teammate(rateeID); !ok {
		l.mu.Unlock()
		return LifecycleSnapshot{}, ErrNotTeammate
	}
	projectID := l.project.ID
	l.mu.Unlock()

	if _, err := l.submitRating(ctx, projectID, raterID, rateeID, raw); err != nil {
		return LifecycleSnapshot{}, err
	}
	return l.Snapshot(), nil
}

// submitRating is the single path for rating a pair in this project, shared
// with the inbox. The pair is reserved while the request is in flight and
// marked rated only when the rating backend accepts it.
func (l *ProjectLifecycle) submitRating(ctx context.Context, projectID, raterID, rateeID string, raw model.RawScores) (model.RatingSubmission, error) {
	pair := ratedPair{rater: raterID, ratee: rateeID}

	l.mu.Lock()
	if l.rated[pair] || l.rating[pair] {
		l.mu.Unlock()
		return model.RatingSubmission{}, ErrAlreadyRated
	}
	l.rating[pair] = true
	l.mu.Unlock()

	sub, err := l.ratings.Submit(ctx, projectID, raterID, rateeID, raw)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rating, pair)
	if err != nil {
		return model.RatingSubmission{}, err
	}
	l.rated[pair] = true
	return sub, nil
}
