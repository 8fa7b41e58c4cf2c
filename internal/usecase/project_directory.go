package usecase

import (
	"context"
	"slices"
	"sync"

	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/pkg/logger"
)

// ProjectDirectory owns the "my projects" list. Every refresh replaces the
// list with a fresh gateway read.
type ProjectDirectory struct {
	backend service.BackendServiceInterface

	mu     sync.RWMutex
	mine   []model.Opportunity
	loaded bool
}

func NewProjectDirectory(backend service.BackendServiceInterface) *ProjectDirectory {
	return &ProjectDirectory{backend: backend}
}

func (d *ProjectDirectory) Refresh(ctx context.Context) ([]model.Opportunity, error) {
	list, err := d.backend.ListMyProjects(ctx)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.mine = list
	d.loaded = true
	d.mu.Unlock()
	logger.Debug().Int("count", len(list)).Msg("my projects refreshed")
	return slices.Clone(list), nil
}

// Mine returns the cached list, loading it on first use.
func (d *ProjectDirectory) Mine(ctx context.Context) ([]model.Opportunity, error) {
	d.mu.RLock()
	if d.loaded {
		out := slices.Clone(d.mine)
		d.mu.RUnlock()
		return out, nil
	}
	d.mu.RUnlock()
	return d.Refresh(ctx)
}

func (d *ProjectDirectory) Explore(ctx context.Context) ([]model.Opportunity, error) {
	return d.backend.ExploreProjects(ctx)
}

// refreshQuietly is used after mutations elsewhere; a failed refresh only
// leaves the previous list in place.
func (d *ProjectDirectory) refreshQuietly(ctx context.Context) {
	if d == nil {
		return
	}
	if _, err := d.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to refresh my projects")
	}
}
