package memory

import (
	"context"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/requirement"
)

type requirementRepo struct {
	store
	requirements map[string]*requirement.MasterRequirement
}

// NewRequirementRepository creates an in-memory master requirement repository
func NewRequirementRepository() requirement.Repository {
	return &requirementRepo{requirements: make(map[string]*requirement.MasterRequirement)}
}

func (r *requirementRepo) Create(_ context.Context, req *requirement.MasterRequirement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *req
	r.requirements[req.ID] = &clone
	return nil
}

func (r *requirementRepo) GetByID(_ context.Context, id string) (*requirement.MasterRequirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requirements[id]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

func (r *requirementRepo) GetByCode(_ context.Context, frameworkVersionID, requirementCode string) (*requirement.MasterRequirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requirements {
		if req.FrameworkVersionID == frameworkVersionID && req.RequirementCode == requirementCode {
			clone := *req
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *requirementRepo) ListByVersion(_ context.Context, frameworkVersionID string) ([]*requirement.MasterRequirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*requirement.MasterRequirement, 0)
	for _, req := range r.requirements {
		if req.FrameworkVersionID == frameworkVersionID {
			clone := *req
			out = append(out, &clone)
		}
	}
	sortRequirements(out)
	return out, nil
}

func (r *requirementRepo) ListAll(_ context.Context) ([]*requirement.MasterRequirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*requirement.MasterRequirement, 0, len(r.requirements))
	for _, req := range r.requirements {
		clone := *req
		out = append(out, &clone)
	}
	sortRequirements(out)
	return out, nil
}

func sortRequirements(reqs []*requirement.MasterRequirement) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].FrameworkVersionID != reqs[j].FrameworkVersionID {
			return reqs[i].FrameworkVersionID < reqs[j].FrameworkVersionID
		}
		return reqs[i].RequirementCode < reqs[j].RequirementCode
	})
}
