package drift

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

type stubDriftRepo struct {
	records map[string]*ComplianceDrift
	created int
	saveErr error
}

func newStubDriftRepo() *stubDriftRepo {
	return &stubDriftRepo{records: make(map[string]*ComplianceDrift)}
}

func (r *stubDriftRepo) Create(_ context.Context, d *ComplianceDrift) error {
	r.records[d.ID] = d
	r.created++
	return nil
}

func (r *stubDriftRepo) GetByID(_ context.Context, id string) (*ComplianceDrift, error) {
	return r.records[id], nil
}

func (r *stubDriftRepo) Update(_ context.Context, d *ComplianceDrift) error {
	r.records[d.ID] = d
	return nil
}

func (r *stubDriftRepo) SaveScan(_ context.Context, findings []*ComplianceDrift) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, d := range findings {
		if _, ok := r.records[d.ID]; !ok {
			r.created++
		}
		r.records[d.ID] = d
	}
	return nil
}

func (r *stubDriftRepo) FindDetected(_ context.Context, controlID, requirementID, oldVersionID, newVersionID string) (*ComplianceDrift, error) {
	for _, d := range r.records {
		if d.Status == types.DriftRecordDetected &&
			d.ControlID == controlID && d.RequirementID == requirementID &&
			d.OldFrameworkVersionID == oldVersionID && d.NewFrameworkVersionID == newVersionID {
			return d, nil
		}
	}
	return nil, nil
}

func (r *stubDriftRepo) ListOpen(_ context.Context) ([]*ComplianceDrift, error) {
	open := make([]*ComplianceDrift, 0)
	for _, d := range r.records {
		if d.Open() {
			open = append(open, d)
		}
	}
	return open, nil
}

func (r *stubDriftRepo) ListAll(_ context.Context) ([]*ComplianceDrift, error) {
	all := make([]*ComplianceDrift, 0, len(r.records))
	for _, d := range r.records {
		all = append(all, d)
	}
	return all, nil
}

type stubMappingRepo struct {
	mappings map[string]*crosswalk.Mapping
}

func newStubMappingRepo(mappings ...*crosswalk.Mapping) *stubMappingRepo {
	r := &stubMappingRepo{mappings: make(map[string]*crosswalk.Mapping)}
	for _, m := range mappings {
		r.mappings[m.ID] = m
	}
	return r
}

func (r *stubMappingRepo) Create(_ context.Context, m *crosswalk.Mapping) error {
	r.mappings[m.ID] = m
	return nil
}

func (r *stubMappingRepo) GetByID(_ context.Context, id string) (*crosswalk.Mapping, error) {
	return r.mappings[id], nil
}

func (r *stubMappingRepo) Update(_ context.Context, m *crosswalk.Mapping) error {
	r.mappings[m.ID] = m
	return nil
}

func (r *stubMappingRepo) UpdateAll(_ context.Context, mappings []*crosswalk.Mapping) error {
	for _, m := range mappings {
		r.mappings[m.ID] = m
	}
	return nil
}

func (r *stubMappingRepo) Delete(_ context.Context, id string) error {
	delete(r.mappings, id)
	return nil
}

func (r *stubMappingRepo) ListByVersion(_ context.Context, versionID string) ([]*crosswalk.Mapping, error) {
	out := make([]*crosswalk.Mapping, 0)
	for _, m := range r.mappings {
		if m.FrameworkVersionID == versionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMappingRepo) ListByRequirement(_ context.Context, requirementID string) ([]*crosswalk.Mapping, error) {
	out := make([]*crosswalk.Mapping, 0)
	for _, m := range r.mappings {
		if m.RequirementID == requirementID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMappingRepo) ListByControl(_ context.Context, controlID string) ([]*crosswalk.Mapping, error) {
	out := make([]*crosswalk.Mapping, 0)
	for _, m := range r.mappings {
		if m.ControlID == controlID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMappingRepo) ListAll(_ context.Context) ([]*crosswalk.Mapping, error) {
	out := make([]*crosswalk.Mapping, 0, len(r.mappings))
	for _, m := range r.mappings {
		out = append(out, m)
	}
	return out, nil
}

type stubLibrary struct {
	byVersion map[string]map[string]*requirement.MasterRequirement
}

func (l *stubLibrary) RequirementsForVersion(_ context.Context, versionID string) (map[string]*requirement.MasterRequirement, error) {
	return l.byVersion[versionID], nil
}

func (l *stubLibrary) Search(_ context.Context, _, _ string) ([]*requirement.MasterRequirement, error) {
	return nil, nil
}

func (l *stubLibrary) Get(_ context.Context, id string) (*requirement.MasterRequirement, error) {
	for _, reqs := range l.byVersion {
		for _, r := range reqs {
			if r.ID == id {
				return r, nil
			}
		}
	}
	return nil, nil
}

type stubVersionRepo struct {
	versions map[string]*framework.Version
}

func (r *stubVersionRepo) Create(_ context.Context, v *framework.Version) error {
	r.versions[v.ID] = v
	return nil
}

func (r *stubVersionRepo) GetByID(_ context.Context, id string) (*framework.Version, error) {
	return r.versions[id], nil
}

func (r *stubVersionRepo) Update(_ context.Context, v *framework.Version) error {
	r.versions[v.ID] = v
	return nil
}

func (r *stubVersionRepo) ListByFramework(_ context.Context, frameworkID string) ([]*framework.Version, error) {
	out := make([]*framework.Version, 0)
	for _, v := range r.versions {
		if v.FrameworkID == frameworkID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *stubVersionRepo) ListByStatus(_ context.Context, frameworkID string, status types.VersionStatus) ([]*framework.Version, error) {
	out := make([]*framework.Version, 0)
	for _, v := range r.versions {
		if v.FrameworkID == frameworkID && v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *stubVersionRepo) ListFrameworks(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, v := range r.versions {
		if !seen[v.FrameworkID] {
			seen[v.FrameworkID] = true
			out = append(out, v.FrameworkID)
		}
	}
	return out, nil
}

type fixture struct {
	engine   Engine
	drifts   *stubDriftRepo
	mappings *stubMappingRepo
}

func newFixture(t *testing.T, library *stubLibrary, mappings *stubMappingRepo) fixture {
	t.Helper()
	deadline := time.Now().UTC().AddDate(0, 6, 0)
	versions := &stubVersionRepo{versions: map[string]*framework.Version{
		"v1": {ID: "v1", FrameworkID: "soc2", Status: types.VersionStatusActive,
			EffectiveDate: time.Now().UTC().AddDate(-1, 0, 0)},
		"v2": {ID: "v2", FrameworkID: "soc2", Status: types.VersionStatusPublished,
			EffectiveDate: time.Now().UTC(), TransitionDeadline: &deadline},
	}}
	drifts := newStubDriftRepo()
	engine := NewEngine(drifts, mappings, library, versions,
		crosswalk.NewMatcher(crosswalk.MatcherConfig{}), EngineConfig{}, logging.NewNop())
	return fixture{engine: engine, drifts: drifts, mappings: mappings}
}

func TestDetectDrift(t *testing.T) {
	ctx := context.Background()

	t.Run("evidence change on a mapped requirement", func(t *testing.T) {
		oldReq := baseRequirement("CC6.1")
		newReq := clone(oldReq)
		newReq.ID = "req-CC6.1-v2"
		newReq.FrameworkVersionID = "v2"
		newReq.RequiredEvidenceTypes = append(newReq.RequiredEvidenceTypes, "audit_log")

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"CC6.1": oldReq},
			"v2": {"CC6.1": newReq},
		}}
		mapping := &crosswalk.Mapping{
			ID: "m-1", ControlID: "C-1", RequirementID: oldReq.ID, RequirementCode: "CC6.1",
			FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent,
		}
		f := newFixture(t, library, newStubMappingRepo(mapping))

		answers := control.AnswerMap{"C-1": {ControlID: "C-1", Value: types.AnswerYes}}
		findings, err := f.engine.DetectDrift(ctx, "v1", "v2", nil, answers)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		got := findings[0]
		assert.Equal(t, types.DriftEvidenceTypeChanged, got.DriftType)
		assert.Equal(t, types.SeverityMedium, got.Severity)
		assert.True(t, got.AnswerStillValid)
		assert.Equal(t, types.AnswerYes, got.PreviousAnswer)
		assert.Equal(t, types.DriftStatusAtRisk, f.mappings.mappings["m-1"].DriftStatus)
	})

	t.Run("invalidating change flips the mapping to drifted", func(t *testing.T) {
		oldReq := baseRequirement("CC6.2")
		oldReq.ImplementationLevel = types.ImplementationOptional
		newReq := clone(oldReq)
		newReq.ID = "req-CC6.2-v2"
		newReq.ImplementationLevel = types.ImplementationMandatory

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"CC6.2": oldReq},
			"v2": {"CC6.2": newReq},
		}}
		mapping := &crosswalk.Mapping{
			ID: "m-1", ControlID: "C-1", RequirementID: oldReq.ID, RequirementCode: "CC6.2",
			FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent,
		}
		f := newFixture(t, library, newStubMappingRepo(mapping))

		answers := control.AnswerMap{"C-1": {ControlID: "C-1", Value: types.AnswerNotApplicable}}
		findings, err := f.engine.DetectDrift(ctx, "v1", "v2", nil, answers)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.False(t, findings[0].AnswerStillValid)
		assert.Equal(t, types.SeverityCritical, findings[0].Severity)
		assert.Equal(t, types.DriftStatusDrifted, f.mappings.mappings["m-1"].DriftStatus)
	})

	t.Run("new requirement matches controls by keyword overlap", func(t *testing.T) {
		newReq := baseRequirement("CC9.9")
		newReq.ID = "req-CC9.9-v2"
		newReq.FrameworkVersionID = "v2"
		newReq.Title = "Encryption key rotation"
		newReq.Keywords = []string{"encryption", "key", "rotation"}
		newReq.ImplementationLevel = types.ImplementationMandatory
		newReq.RiskWeight = 9

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {},
			"v2": {"CC9.9": newReq},
		}}
		f := newFixture(t, library, newStubMappingRepo())

		controls := []*control.Control{
			{ID: "C-1", Title: "Key management", Keywords: []string{"encryption", "key", "rotation"}},
			{ID: "C-2", Title: "Visitor badges", Keywords: []string{"physical", "badge"}},
		}
		findings, err := f.engine.DetectDrift(ctx, "v1", "v2", controls, control.AnswerMap{})
		require.NoError(t, err)
		require.Len(t, findings, 1)

		got := findings[0]
		assert.Equal(t, "C-1", got.ControlID)
		assert.Equal(t, types.DriftNewRequirement, got.DriftType)
		assert.Equal(t, types.SeverityCritical, got.Severity)
		assert.False(t, got.AnswerStillValid)
		assert.Empty(t, got.MappingID)
		require.Len(t, got.ResolutionPath, 2)
		assert.Equal(t, "update_existing_control", got.ResolutionPath[0].Type)
		assert.Equal(t, "create_new_control", got.ResolutionPath[1].Type)
	})

	t.Run("repeat scans update in place instead of duplicating", func(t *testing.T) {
		oldReq := baseRequirement("CC6.1")
		newReq := clone(oldReq)
		newReq.ID = "req-CC6.1-v2"
		newReq.RequiredEvidenceTypes = append(newReq.RequiredEvidenceTypes, "audit_log")

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"CC6.1": oldReq},
			"v2": {"CC6.1": newReq},
		}}
		mapping := &crosswalk.Mapping{
			ID: "m-1", ControlID: "C-1", RequirementID: oldReq.ID, RequirementCode: "CC6.1",
			FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent,
		}
		f := newFixture(t, library, newStubMappingRepo(mapping))
		answers := control.AnswerMap{"C-1": {ControlID: "C-1", Value: types.AnswerYes}}

		first, err := f.engine.DetectDrift(ctx, "v1", "v2", nil, answers)
		require.NoError(t, err)
		second, err := f.engine.DetectDrift(ctx, "v1", "v2", nil, answers)
		require.NoError(t, err)

		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID, second[0].ID)
		assert.Equal(t, first[0].DriftType, second[0].DriftType)
		assert.Equal(t, first[0].Severity, second[0].Severity)
		assert.Equal(t, 1, f.drifts.created)
	})

	t.Run("failed scan persists nothing", func(t *testing.T) {
		oldA := baseRequirement("CC6.1")
		newA := clone(oldA)
		newA.ID = "req-CC6.1-v2"
		newA.RequiredEvidenceTypes = append(newA.RequiredEvidenceTypes, "audit_log")
		oldB := baseRequirement("CC6.2")
		newB := clone(oldB)
		newB.ID = "req-CC6.2-v2"
		newB.RequiredEvidenceTypes = append(newB.RequiredEvidenceTypes, "pen_test_report")

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"CC6.1": oldA, "CC6.2": oldB},
			"v2": {"CC6.1": newA, "CC6.2": newB},
		}}
		m1 := &crosswalk.Mapping{
			ID: "m-1", ControlID: "C-1", RequirementID: oldA.ID, RequirementCode: "CC6.1",
			FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent,
		}
		m2 := &crosswalk.Mapping{
			ID: "m-2", ControlID: "C-2", RequirementID: oldB.ID, RequirementCode: "CC6.2",
			FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent,
		}
		f := newFixture(t, library, newStubMappingRepo(m1, m2))
		f.drifts.saveErr = fmt.Errorf("connection reset by peer")

		answers := control.AnswerMap{
			"C-1": {ControlID: "C-1", Value: types.AnswerYes},
			"C-2": {ControlID: "C-2", Value: types.AnswerYes},
		}
		_, err := f.engine.DetectDrift(ctx, "v1", "v2", nil, answers)
		require.Error(t, err)
		assert.Zero(t, f.drifts.created)
		assert.Empty(t, f.drifts.records)
		assert.Equal(t, types.DriftStatusCurrent, f.mappings.mappings["m-1"].DriftStatus)
		assert.Equal(t, types.DriftStatusCurrent, f.mappings.mappings["m-2"].DriftStatus)
	})

	t.Run("unknown new version is a not-found error", func(t *testing.T) {
		f := newFixture(t, &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{}},
			newStubMappingRepo())
		_, err := f.engine.DetectDrift(ctx, "v1", "missing", nil, control.AnswerMap{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})
}

func TestDriftLifecycle(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (fixture, *ComplianceDrift) {
		oldReq := baseRequirement("CC6.1")
		newReq := clone(oldReq)
		newReq.ID = "req-CC6.1-v2"
		newReq.RequiredEvidenceTypes = append(newReq.RequiredEvidenceTypes, "audit_log")

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"CC6.1": oldReq},
			"v2": {"CC6.1": newReq},
		}}
		mapping := &crosswalk.Mapping{
			ID: "m-1", ControlID: "C-1", RequirementID: oldReq.ID, RequirementCode: "CC6.1",
			FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent,
		}
		f := newFixture(t, library, newStubMappingRepo(mapping))

		findings, err := f.engine.DetectDrift(ctx, "v1", "v2", nil,
			control.AnswerMap{"C-1": {ControlID: "C-1", Value: types.AnswerYes}})
		require.NoError(t, err)
		require.Len(t, findings, 1)
		return f, findings[0]
	}

	t.Run("acknowledge transitions the status only", func(t *testing.T) {
		f, finding := setup(t)
		got, err := f.engine.Acknowledge(ctx, finding.ID)
		require.NoError(t, err)
		assert.Equal(t, types.DriftRecordAcknowledged, got.Status)
		assert.Nil(t, got.ResolvedAt)
	})

	t.Run("resolve stamps the record and resets the mapping", func(t *testing.T) {
		f, finding := setup(t)
		assert.Equal(t, types.DriftStatusAtRisk, f.mappings.mappings["m-1"].DriftStatus)

		got, err := f.engine.Resolve(ctx, finding.ID, Resolution{
			Type: "update_control", Notes: "evidence collector extended", ResolvedBy: "auditor-1",
		})
		require.NoError(t, err)
		assert.Equal(t, types.DriftRecordResolved, got.Status)
		require.NotNil(t, got.ResolvedAt)
		assert.Equal(t, "auditor-1", got.ResolvedBy)
		assert.Equal(t, types.DriftStatusCurrent, f.mappings.mappings["m-1"].DriftStatus)
	})

	t.Run("resolving twice fails with invalid state", func(t *testing.T) {
		f, finding := setup(t)
		_, err := f.engine.Resolve(ctx, finding.ID, Resolution{Type: "update_control"})
		require.NoError(t, err)
		_, err = f.engine.Resolve(ctx, finding.ID, Resolution{Type: "update_control"})
		require.Error(t, err)
	})

	t.Run("unknown id is a not-found error", func(t *testing.T) {
		f, _ := setup(t)
		_, err := f.engine.Acknowledge(ctx, "missing")
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
		_, err = f.engine.Resolve(ctx, "missing", Resolution{})
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})

	t.Run("open findings sort by ascending days remaining", func(t *testing.T) {
		f, _ := setup(t)
		later := f.drifts.records
		for _, d := range later {
			d.ComplianceDeadline = time.Now().UTC().AddDate(0, 0, 90)
		}
		urgent := newDrift("C-9", "", "req-x", "CC9.1", "v1", "v2", time.Now().UTC().AddDate(0, 0, 5))
		urgent.DriftType = types.DriftNewRequirement
		urgent.Severity = types.SeverityHigh
		require.NoError(t, f.drifts.Create(ctx, urgent))

		open, err := f.engine.ListOpen(ctx)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, urgent.ID, open[0].ID)
	})
}
