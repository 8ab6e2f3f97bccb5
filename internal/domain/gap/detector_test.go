package gap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/types"
)

type stubGapRepo struct {
	gaps []*CustomGap
}

func (r *stubGapRepo) GetByID(_ context.Context, id string) (*CustomGap, error) {
	for _, g := range r.gaps {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, nil
}

func (r *stubGapRepo) ListAll(_ context.Context) ([]*CustomGap, error) { return r.gaps, nil }

func (r *stubGapRepo) ListOpen(_ context.Context) ([]*CustomGap, error) {
	open := make([]*CustomGap, 0)
	for _, g := range r.gaps {
		if g.Status.Open() {
			open = append(open, g)
		}
	}
	return open, nil
}

func (r *stubGapRepo) Update(_ context.Context, gap *CustomGap) error { return nil }

func (r *stubGapRepo) ReplaceForVersion(_ context.Context, frameworkVersionID string, gaps []*CustomGap) error {
	kept := make([]*CustomGap, 0, len(r.gaps))
	for _, g := range r.gaps {
		if g.FrameworkVersionID != frameworkVersionID {
			kept = append(kept, g)
		}
	}
	r.gaps = append(kept, gaps...)
	return nil
}

func req(id, code, title string) *requirement.MasterRequirement {
	return &requirement.MasterRequirement{
		ID:                 id,
		FrameworkVersionID: "v1",
		RequirementCode:    code,
		Title:              title,
		RiskWeight:         5,
	}
}

func currentMapping(reqID string, coverage int) *crosswalk.Mapping {
	return &crosswalk.Mapping{
		ID:                 "m-" + reqID,
		ControlID:          "C-1",
		RequirementID:      reqID,
		RequirementCode:    reqID,
		FrameworkVersionID: "v1",
		CoveragePercentage: coverage,
		DriftStatus:        types.DriftStatusCurrent,
	}
}

func TestDetectorRecalculate(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies unmapped and undercovered requirements", func(t *testing.T) {
		repo := &stubGapRepo{}
		detector := NewDetector(repo, DetectorConfig{}, logging.NewNop())

		requirements := []*requirement.MasterRequirement{
			req("r-1", "A.5.1", "Encryption of data at rest"),
			req("r-2", "A.5.2", "Security awareness training"),
			req("r-3", "A.5.3", "Asset inventory"),
			req("r-4", "A.5.4", "Incident response"),
		}
		mappings := []*crosswalk.Mapping{
			currentMapping("r-3", 40),
			currentMapping("r-4", 90),
		}

		gaps, err := detector.Recalculate(ctx, "v1", requirements, mappings)
		require.NoError(t, err)
		require.Len(t, gaps, 3)

		byCode := make(map[string]*CustomGap)
		for _, g := range gaps {
			byCode[g.RequirementCode] = g
		}

		assert.Equal(t, types.GapNoControlMapped, byCode["A.5.1"].GapType)
		assert.Equal(t, types.SeverityCritical, byCode["A.5.1"].Severity)

		assert.Equal(t, types.GapNoControlMapped, byCode["A.5.2"].GapType)
		assert.Equal(t, types.SeverityMedium, byCode["A.5.2"].Severity)

		assert.Equal(t, types.GapInsufficientCoverage, byCode["A.5.3"].GapType)
		assert.Equal(t, types.SeverityHigh, byCode["A.5.3"].Severity)
		assert.Equal(t, 40, byCode["A.5.3"].Coverage)

		assert.NotContains(t, byCode, "A.5.4")
	})

	t.Run("insufficient coverage at or above 50 is medium", func(t *testing.T) {
		repo := &stubGapRepo{}
		detector := NewDetector(repo, DetectorConfig{}, logging.NewNop())

		gaps, err := detector.Recalculate(ctx, "v1",
			[]*requirement.MasterRequirement{req("r-1", "A.1", "Asset register")},
			[]*crosswalk.Mapping{currentMapping("r-1", 60)})
		require.NoError(t, err)
		require.Len(t, gaps, 1)
		assert.Equal(t, types.SeverityMedium, gaps[0].Severity)
	})

	t.Run("preserves id status and notes across passes", func(t *testing.T) {
		repo := &stubGapRepo{}
		detector := NewDetector(repo, DetectorConfig{}, logging.NewNop())

		requirements := []*requirement.MasterRequirement{
			req("r-1", "A.1", "Asset register"),
			req("r-2", "A.2", "Logging standard"),
		}

		first, err := detector.Recalculate(ctx, "v1", requirements, nil)
		require.NoError(t, err)
		require.Len(t, first, 2)

		acknowledged := first[0]
		acknowledged.Status = types.GapStatusAcknowledged
		acknowledged.Notes = "tracked in Q3 plan"

		second, err := detector.Recalculate(ctx, "v1", requirements, nil)
		require.NoError(t, err)
		require.Len(t, second, 2)

		assert.Equal(t, acknowledged.ID, second[0].ID)
		assert.Equal(t, types.GapStatusAcknowledged, second[0].Status)
		assert.Equal(t, "tracked in Q3 plan", second[0].Notes)
		assert.Equal(t, types.GapStatusIdentified, second[1].Status)
	})

	t.Run("superseded mappings do not count as coverage", func(t *testing.T) {
		repo := &stubGapRepo{}
		detector := NewDetector(repo, DetectorConfig{}, logging.NewNop())

		m := currentMapping("r-1", 95)
		m.Supersede("v2")

		gaps, err := detector.Recalculate(ctx, "v1",
			[]*requirement.MasterRequirement{req("r-1", "A.1", "Asset register")},
			[]*crosswalk.Mapping{m})
		require.NoError(t, err)
		require.Len(t, gaps, 1)
		assert.Equal(t, types.GapNoControlMapped, gaps[0].GapType)
	})

	t.Run("pass over one framework leaves other frameworks' gaps alone", func(t *testing.T) {
		repo := &stubGapRepo{}
		detector := NewDetector(repo, DetectorConfig{}, logging.NewNop())

		hipaa, err := detector.Recalculate(ctx, "v1",
			[]*requirement.MasterRequirement{req("ra-1", "164.312", "Access control")}, nil)
		require.NoError(t, err)
		require.Len(t, hipaa, 1)
		hipaa[0].Status = types.GapStatusAcceptedRisk
		hipaa[0].Notes = "accepted until Q4"

		soc2Req := req("rb-1", "CC1.1", "Control environment")
		soc2Req.FrameworkVersionID = "v2"
		soc2, err := detector.Recalculate(ctx, "v2",
			[]*requirement.MasterRequirement{soc2Req}, nil)
		require.NoError(t, err)
		require.Len(t, soc2, 1)

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)

		byReq := make(map[string]*CustomGap)
		for _, g := range all {
			byReq[g.RequirementID] = g
		}
		require.Contains(t, byReq, "ra-1")
		require.Contains(t, byReq, "rb-1")
		assert.Equal(t, types.GapStatusAcceptedRisk, byReq["ra-1"].Status)
		assert.Equal(t, "accepted until Q4", byReq["ra-1"].Notes)
	})

	t.Run("resolution templates keep their order", func(t *testing.T) {
		options := resolutionTemplates()
		want := []string{"create_control", "upload_evidence", "create_policy", "compensating_control", "accept_risk"}
		require.Len(t, options, len(want))
		for i, opt := range options {
			assert.Equal(t, want[i], opt.Type)
			assert.NotEmpty(t, opt.EffortEstimate)
		}
	})
}

func TestUnmappedSeverity(t *testing.T) {
	cases := []struct {
		name string
		req  *requirement.MasterRequirement
		want types.Severity
	}{
		{"authentication text", req("r", "A.9", "Multi-factor authentication"), types.SeverityCritical},
		{"technical safeguard code", req("r", "CC6.7", "Boundary protection"), types.SeverityCritical},
		{"audit text", req("r", "A.12", "Audit log review"), types.SeverityHigh},
		{"policy text", req("r", "A.5", "Information security policy"), types.SeverityMedium},
		{"no keyword", req("r", "A.18", "Supplier relationships"), types.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, unmappedSeverity(tc.req))
		})
	}
}
