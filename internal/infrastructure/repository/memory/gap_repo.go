package memory

import (
	"context"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/gap"
)

type gapRepo struct {
	store
	gaps map[string]*gap.CustomGap
}

// NewGapRepository creates an in-memory custom gap repository
func NewGapRepository() gap.Repository {
	return &gapRepo{gaps: make(map[string]*gap.CustomGap)}
}

func (r *gapRepo) GetByID(_ context.Context, id string) (*gap.CustomGap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gaps[id]
	if !ok {
		return nil, nil
	}
	clone := *g
	return &clone, nil
}

func (r *gapRepo) ListAll(_ context.Context) ([]*gap.CustomGap, error) {
	return r.filter(func(*gap.CustomGap) bool { return true }), nil
}

func (r *gapRepo) ListOpen(_ context.Context) ([]*gap.CustomGap, error) {
	return r.filter(func(g *gap.CustomGap) bool { return g.Status.Open() }), nil
}

func (r *gapRepo) Update(_ context.Context, g *gap.CustomGap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *g
	r.gaps[g.ID] = &clone
	return nil
}

func (r *gapRepo) ReplaceForVersion(_ context.Context, frameworkVersionID string, gaps []*gap.CustomGap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, g := range r.gaps {
		if g.FrameworkVersionID == frameworkVersionID {
			delete(r.gaps, id)
		}
	}
	for _, g := range gaps {
		clone := *g
		r.gaps[g.ID] = &clone
	}
	return nil
}

func (r *gapRepo) filter(keep func(*gap.CustomGap) bool) []*gap.CustomGap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*gap.CustomGap, 0)
	for _, g := range r.gaps {
		if keep(g) {
			clone := *g
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FrameworkVersionID != out[j].FrameworkVersionID {
			return out[i].FrameworkVersionID < out[j].FrameworkVersionID
		}
		return out[i].RequirementCode < out[j].RequirementCode
	})
	return out
}
