package memory

import (
	"context"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/pkg/types"
)

type frameworkRepo struct {
	store
	versions map[string]*framework.Version
}

// NewFrameworkRepository creates an in-memory framework version repository
func NewFrameworkRepository() framework.Repository {
	return &frameworkRepo{versions: make(map[string]*framework.Version)}
}

func (r *frameworkRepo) Create(_ context.Context, version *framework.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *version
	r.versions[version.ID] = &clone
	return nil
}

func (r *frameworkRepo) GetByID(_ context.Context, id string) (*framework.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.versions[id]
	if !ok {
		return nil, nil
	}
	clone := *v
	return &clone, nil
}

func (r *frameworkRepo) Update(_ context.Context, version *framework.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *version
	r.versions[version.ID] = &clone
	return nil
}

func (r *frameworkRepo) ListByFramework(_ context.Context, frameworkID string) ([]*framework.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*framework.Version, 0)
	for _, v := range r.versions {
		if v.FrameworkID == frameworkID {
			clone := *v
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out, nil
}

func (r *frameworkRepo) ListByStatus(_ context.Context, frameworkID string, status types.VersionStatus) ([]*framework.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*framework.Version, 0)
	for _, v := range r.versions {
		if v.FrameworkID == frameworkID && v.Status == status {
			clone := *v
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *frameworkRepo) ListFrameworks(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, v := range r.versions {
		seen[v.FrameworkID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
