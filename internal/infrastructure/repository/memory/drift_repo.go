package memory

import (
	"context"
	"sort"

	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/pkg/types"
)

type driftRepo struct {
	store
	drifts map[string]*drift.ComplianceDrift
}

// NewDriftRepository creates an in-memory drift finding repository
func NewDriftRepository() drift.Repository {
	return &driftRepo{drifts: make(map[string]*drift.ComplianceDrift)}
}

func (r *driftRepo) Create(_ context.Context, d *drift.ComplianceDrift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *d
	r.drifts[d.ID] = &clone
	return nil
}

func (r *driftRepo) GetByID(_ context.Context, id string) (*drift.ComplianceDrift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drifts[id]
	if !ok {
		return nil, nil
	}
	clone := *d
	return &clone, nil
}

func (r *driftRepo) Update(_ context.Context, d *drift.ComplianceDrift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *d
	r.drifts[d.ID] = &clone
	return nil
}

func (r *driftRepo) SaveScan(_ context.Context, findings []*drift.ComplianceDrift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range findings {
		clone := *d
		r.drifts[d.ID] = &clone
	}
	return nil
}

func (r *driftRepo) FindDetected(_ context.Context, controlID, requirementID, oldVersionID, newVersionID string) (*drift.ComplianceDrift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.drifts {
		if d.Status != types.DriftRecordDetected {
			continue
		}
		if d.ControlID == controlID && d.RequirementID == requirementID &&
			d.OldFrameworkVersionID == oldVersionID && d.NewFrameworkVersionID == newVersionID {
			clone := *d
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *driftRepo) ListOpen(_ context.Context) ([]*drift.ComplianceDrift, error) {
	return r.filter(func(d *drift.ComplianceDrift) bool { return d.Open() }), nil
}

func (r *driftRepo) ListAll(_ context.Context) ([]*drift.ComplianceDrift, error) {
	return r.filter(func(*drift.ComplianceDrift) bool { return true }), nil
}

func (r *driftRepo) filter(keep func(*drift.ComplianceDrift) bool) []*drift.ComplianceDrift {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*drift.ComplianceDrift, 0)
	for _, d := range r.drifts {
		if keep(d) {
			clone := *d
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ComplianceDeadline.Equal(out[j].ComplianceDeadline) {
			return out[i].ComplianceDeadline.Before(out[j].ComplianceDeadline)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
