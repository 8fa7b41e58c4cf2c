package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/service"
)

// LifecycleRegistry keeps one ProjectLifecycle per project so that match
// searches for the same project are serialized while different projects
// proceed independently.
type LifecycleRegistry struct {
	backend   service.BackendServiceInterface
	matcher   service.MatchServiceInterface
	ratings   *RatingUsecase
	identity  Identity
	directory *ProjectDirectory

	mu        sync.Mutex
	byProject map[string]*ProjectLifecycle
}

func NewLifecycleRegistry(backend service.BackendServiceInterface, matcher service.MatchServiceInterface, ratings *RatingUsecase, identity Identity, directory *ProjectDirectory) *LifecycleRegistry {
	return &LifecycleRegistry{
		backend:   backend,
		matcher:   matcher,
		ratings:   ratings,
		identity:  identity,
		directory: directory,
		byProject: map[string]*ProjectLifecycle{},
	}
}

func (r *LifecycleRegistry) newLifecycle() *ProjectLifecycle {
	l := NewProjectLifecycle(r.backend, r.matcher, r.ratings, r.identity)
	l.OnCompleted(r.directory.refreshQuietly)
	return l
}

// Create submits a draft and registers the resulting project.
func (r *LifecycleRegistry) Create(ctx context.Context, form dto.ProjectForm) (*ProjectLifecycle, LifecycleSnapshot, error) {
	l := r.newLifecycle()
	snap, err := l.Submit(ctx, form)
	if err != nil {
		return nil, LifecycleSnapshot{}, err
	}

	r.mu.Lock()
	r.byProject[snap.Project.ID] = l
	r.mu.Unlock()

	r.directory.refreshQuietly(ctx)
	return l, snap, nil
}

// Open returns the project's lifecycle, loading it from the backend the
// first time.
func (r *LifecycleRegistry) Open(ctx context.Context, projectID string) (*ProjectLifecycle, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, service.NewValidationError("projectId", "project id is required")
	}
	if l, ok := r.Get(projectID); ok {
		return l, nil
	}

	l := r.newLifecycle()
	if _, err := l.Open(ctx, projectID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byProject[projectID]; ok {
		return existing, nil
	}
	r.byProject[projectID] = l
	return l, nil
}

func (r *LifecycleRegistry) Get(projectID string) (*ProjectLifecycle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byProject[projectID]
	return l, ok
}

// Reset drops every lifecycle, e.g. on logout.
func (r *LifecycleRegistry) Reset() {
	r.mu.Lock()
	r.byProject = map[string]*ProjectLifecycle{}
	r.mu.Unlock()
}
