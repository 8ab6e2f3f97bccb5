package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

func TestWordDiff(t *testing.T) {
	t.Run("identical texts are all unchanged", func(t *testing.T) {
		segments := WordDiff("access is restricted", "access is restricted")
		require.Len(t, segments, 3)
		for _, s := range segments {
			assert.Equal(t, DiffUnchanged, s.Kind)
		}
	})

	t.Run("differing word at a position is changed", func(t *testing.T) {
		segments := WordDiff("access is restricted", "access is mandatory")
		require.Len(t, segments, 3)
		assert.Equal(t, DiffUnchanged, segments[0].Kind)
		assert.Equal(t, DiffChanged, segments[2].Kind)
		assert.Equal(t, "restricted", segments[2].OldWord)
		assert.Equal(t, "mandatory", segments[2].NewWord)
	})

	t.Run("longer new side yields added tail", func(t *testing.T) {
		segments := WordDiff("access restricted", "access restricted and logged")
		require.Len(t, segments, 4)
		assert.Equal(t, DiffAdded, segments[2].Kind)
		assert.Equal(t, "and", segments[2].NewWord)
		assert.Equal(t, DiffAdded, segments[3].Kind)
	})

	t.Run("longer old side yields removed tail", func(t *testing.T) {
		segments := WordDiff("access restricted and logged", "access restricted")
		require.Len(t, segments, 4)
		assert.Equal(t, DiffRemoved, segments[2].Kind)
		assert.Equal(t, DiffRemoved, segments[3].Kind)
	})

	t.Run("shifted words report changed pairs not inserts", func(t *testing.T) {
		// Positional walk: an insertion at the front misaligns every
		// later position instead of producing one added segment.
		segments := WordDiff("restrict access", "always restrict access")
		require.Len(t, segments, 3)
		assert.Equal(t, DiffChanged, segments[0].Kind)
		assert.Equal(t, DiffChanged, segments[1].Kind)
		assert.Equal(t, DiffAdded, segments[2].Kind)
	})

	t.Run("empty old side is all added", func(t *testing.T) {
		segments := WordDiff("", "entirely new text")
		require.Len(t, segments, 3)
		for _, s := range segments {
			assert.Equal(t, DiffAdded, s.Kind)
		}
	})
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

type stubMappings struct {
	mappings []*crosswalk.Mapping
}

func (r *stubMappings) Create(_ context.Context, m *crosswalk.Mapping) error { return nil }
func (r *stubMappings) GetByID(_ context.Context, _ string) (*crosswalk.Mapping, error) {
	return nil, nil
}
func (r *stubMappings) Update(_ context.Context, _ *crosswalk.Mapping) error      { return nil }
func (r *stubMappings) UpdateAll(_ context.Context, _ []*crosswalk.Mapping) error { return nil }
func (r *stubMappings) Delete(_ context.Context, _ string) error                  { return nil }
func (r *stubMappings) ListByVersion(_ context.Context, _ string) ([]*crosswalk.Mapping, error) {
	return r.mappings, nil
}
func (r *stubMappings) ListByRequirement(_ context.Context, requirementID string) ([]*crosswalk.Mapping, error) {
	out := make([]*crosswalk.Mapping, 0)
	for _, m := range r.mappings {
		if m.RequirementID == requirementID {
			out = append(out, m)
		}
	}
	return out, nil
}
func (r *stubMappings) ListByControl(_ context.Context, _ string) ([]*crosswalk.Mapping, error) {
	return nil, nil
}
func (r *stubMappings) ListAll(_ context.Context) ([]*crosswalk.Mapping, error) {
	return r.mappings, nil
}

func makeReq(id, code, text string) *requirement.MasterRequirement {
	return &requirement.MasterRequirement{
		ID:                  id,
		RequirementCode:     code,
		Title:               "Requirement " + code,
		OfficialText:        text,
		ImplementationLevel: types.ImplementationMandatory,
		RiskWeight:          5,
	}
}

func TestComparatorCompare(t *testing.T) {
	ctx := context.Background()

	t.Run("added requirement needs review", func(t *testing.T) {
		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {},
			"v2": {"A.1": makeReq("r2", "A.1", "New obligation text")},
		}}
		comparator := NewComparator(library, &stubMappings{}, control.AnswerMap{})

		got, err := comparator.Compare(ctx, "A.1", "v1", "v2")
		require.NoError(t, err)
		assert.Equal(t, ChangeAdded, got.ChangeType)
		assert.Equal(t, types.SeverityHigh, got.ChangeSeverity)
		assert.Equal(t, StatusUnknown, got.CurrentComplianceStatus)
		assert.Equal(t, StatusNeedsReview, got.ProjectedComplianceStatus)
		assert.Empty(t, got.OldText)
	})

	t.Run("unknown code in the new version is not found", func(t *testing.T) {
		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {}, "v2": {},
		}}
		comparator := NewComparator(library, &stubMappings{}, control.AnswerMap{})

		_, err := comparator.Compare(ctx, "A.9", "v1", "v2")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})

	t.Run("modified requirement with compliant controls stays compliant", func(t *testing.T) {
		oldReq := makeReq("r1", "A.1", "The entity restricts access.")
		newReq := makeReq("r2", "A.1", "The entity restricts and reviews access.")
		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"A.1": oldReq},
			"v2": {"A.1": newReq},
		}}
		mappings := &stubMappings{mappings: []*crosswalk.Mapping{
			{ID: "m1", ControlID: "C-1", RequirementID: "r1", RequirementCode: "A.1",
				FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent},
		}}
		answers := control.AnswerMap{"C-1": {ControlID: "C-1", Value: types.AnswerYes}}
		comparator := NewComparator(library, mappings, answers)

		got, err := comparator.Compare(ctx, "A.1", "v1", "v2")
		require.NoError(t, err)
		assert.Equal(t, ChangeModified, got.ChangeType)
		assert.Equal(t, []string{"C-1"}, got.AffectedControls)
		assert.Equal(t, StatusCompliant, got.CurrentComplianceStatus)
		assert.Equal(t, StatusCompliant, got.ProjectedComplianceStatus)
	})

	t.Run("invalidating change projects non compliant", func(t *testing.T) {
		oldReq := makeReq("r1", "A.2", "Review access rights.")
		oldReq.ImplementationLevel = types.ImplementationOptional
		newReq := makeReq("r2", "A.2", "Review access rights.")
		newReq.ImplementationLevel = types.ImplementationMandatory

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"A.2": oldReq},
			"v2": {"A.2": newReq},
		}}
		mappings := &stubMappings{mappings: []*crosswalk.Mapping{
			{ID: "m1", ControlID: "C-1", RequirementID: "r1", RequirementCode: "A.2",
				FrameworkVersionID: "v1", CoveragePercentage: 90, DriftStatus: types.DriftStatusCurrent},
		}}
		answers := control.AnswerMap{"C-1": {ControlID: "C-1", Value: types.AnswerNo}}
		comparator := NewComparator(library, mappings, answers)

		got, err := comparator.Compare(ctx, "A.2", "v1", "v2")
		require.NoError(t, err)
		assert.Equal(t, ChangeModified, got.ChangeType)
		assert.Equal(t, types.SeverityCritical, got.ChangeSeverity)
		assert.Equal(t, StatusNonCompliant, got.CurrentComplianceStatus)
		assert.Equal(t, StatusNonCompliant, got.ProjectedComplianceStatus)
	})

	t.Run("mixed answers project at risk", func(t *testing.T) {
		oldReq := makeReq("r1", "A.3", "Encrypt data at rest.")
		newReq := makeReq("r2", "A.3", "Encrypt all data at rest.")

		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"A.3": oldReq},
			"v2": {"A.3": newReq},
		}}
		mappings := &stubMappings{mappings: []*crosswalk.Mapping{
			{ID: "m1", ControlID: "C-1", RequirementID: "r1", RequirementCode: "A.3",
				FrameworkVersionID: "v1", CoveragePercentage: 60, DriftStatus: types.DriftStatusCurrent},
			{ID: "m2", ControlID: "C-2", RequirementID: "r1", RequirementCode: "A.3",
				FrameworkVersionID: "v1", CoveragePercentage: 40, DriftStatus: types.DriftStatusCurrent},
		}}
		answers := control.AnswerMap{
			"C-1": {ControlID: "C-1", Value: types.AnswerYes},
			"C-2": {ControlID: "C-2", Value: types.AnswerPartial},
		}
		comparator := NewComparator(library, mappings, answers)

		got, err := comparator.Compare(ctx, "A.3", "v1", "v2")
		require.NoError(t, err)
		assert.Equal(t, types.SeverityHigh, got.ChangeSeverity)
		assert.Equal(t, StatusPartial, got.CurrentComplianceStatus)
		assert.Equal(t, StatusAtRisk, got.ProjectedComplianceStatus)
	})

	t.Run("unchanged requirement", func(t *testing.T) {
		oldReq := makeReq("r1", "A.4", "Maintain an asset inventory.")
		newReq := makeReq("r2", "A.4", "Maintain an asset inventory.")
		library := &stubLibrary{byVersion: map[string]map[string]*requirement.MasterRequirement{
			"v1": {"A.4": oldReq},
			"v2": {"A.4": newReq},
		}}
		comparator := NewComparator(library, &stubMappings{}, control.AnswerMap{})

		got, err := comparator.Compare(ctx, "A.4", "v1", "v2")
		require.NoError(t, err)
		assert.Equal(t, ChangeUnchanged, got.ChangeType)
		assert.Equal(t, StatusUnknown, got.CurrentComplianceStatus)
		assert.Equal(t, StatusNeedsReview, got.ProjectedComplianceStatus)
	})
}
