package requirement

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

type stubVersionRepo struct {
	versions map[string]*framework.Version
}

func newStubVersionRepo() *stubVersionRepo {
	return &stubVersionRepo{versions: make(map[string]*framework.Version)}
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
	return nil, nil
}

type stubRequirementRepo struct {
	requirements []*MasterRequirement
}

func (r *stubRequirementRepo) Create(_ context.Context, req *MasterRequirement) error {
	r.requirements = append(r.requirements, req)
	return nil
}

func (r *stubRequirementRepo) GetByID(_ context.Context, id string) (*MasterRequirement, error) {
	for _, req := range r.requirements {
		if req.ID == id {
			return req, nil
		}
	}
	return nil, nil
}

func (r *stubRequirementRepo) ListByVersion(_ context.Context, versionID string) ([]*MasterRequirement, error) {
	out := make([]*MasterRequirement, 0)
	for _, req := range r.requirements {
		if req.FrameworkVersionID == versionID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *stubRequirementRepo) GetByCode(_ context.Context, versionID, code string) (*MasterRequirement, error) {
	for _, req := range r.requirements {
		if req.FrameworkVersionID == versionID && req.RequirementCode == code {
			return req, nil
		}
	}
	return nil, nil
}

func (r *stubRequirementRepo) ListAll(_ context.Context) ([]*MasterRequirement, error) {
	return r.requirements, nil
}

const soc2Catalog = `
framework_id: soc2
version_code: "2017"
name: SOC 2 Trust Services Criteria
published: 2017-03-01T00:00:00Z
effective: 2017-12-15T00:00:00Z
requirements:
  - code: CC6.1
    title: Logical access controls
    text: The entity implements logical access security measures.
    level: mandatory
    evidence_types: [policy_document, configuration]
    frequency: annual
    risk_weight: 8
    keywords: [access, logical, security]
  - code: CC6.2
    title: User registration
    text: New users are registered and authorized before credentials are issued.
    level: mandatory
    frequency: quarterly
    risk_weight: 7
`

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("loads a catalog into a published version", func(t *testing.T) {
		versions := newStubVersionRepo()
		requirements := &stubRequirementRepo{}
		loader := NewLoader(versions, requirements)

		version, err := loader.Load(ctx, strings.NewReader(soc2Catalog))
		require.NoError(t, err)
		assert.Equal(t, "soc2", version.FrameworkID)
		assert.Equal(t, "2017", version.VersionCode)
		assert.Equal(t, types.VersionStatusPublished, version.Status)
		assert.Empty(t, version.PreviousVersionID)

		reqs, err := requirements.ListByVersion(ctx, version.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, "CC6.1", reqs[0].RequirementCode)
		assert.Equal(t, types.ImplementationMandatory, reqs[0].ImplementationLevel)
		assert.Equal(t, types.FrequencyAnnual, reqs[0].VerificationFrequency)
		assert.Equal(t, []string{"policy_document", "configuration"}, reqs[0].RequiredEvidenceTypes)

		// Requirements without their own effective date inherit the version's
		assert.Equal(t, version.EffectiveDate, reqs[1].EffectiveDate)
	})

	t.Run("links the newest prior version", func(t *testing.T) {
		versions := newStubVersionRepo()
		loader := NewLoader(versions, &stubRequirementRepo{})

		v1, err := loader.Load(ctx, strings.NewReader(soc2Catalog))
		require.NoError(t, err)

		next := strings.Replace(soc2Catalog, `version_code: "2017"`, `version_code: "2022"`, 1)
		next = strings.Replace(next, "effective: 2017-12-15T00:00:00Z", "effective: 2022-06-01T00:00:00Z", 1)
		v2, err := loader.Load(ctx, strings.NewReader(next))
		require.NoError(t, err)
		assert.Equal(t, v1.ID, v2.PreviousVersionID)
	})

	t.Run("rejects a catalog without identity fields", func(t *testing.T) {
		loader := NewLoader(newStubVersionRepo(), &stubRequirementRepo{})
		_, err := loader.Load(ctx, strings.NewReader("name: anonymous catalog\n"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		loader := NewLoader(newStubVersionRepo(), &stubRequirementRepo{})
		_, err := loader.Load(ctx, strings.NewReader("framework_id: [unterminated"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCatalogParseFailed.Code))
	})

	t.Run("rejects an out-of-range risk weight", func(t *testing.T) {
		bad := strings.Replace(soc2Catalog, "risk_weight: 8", "risk_weight: 42", 1)
		loader := NewLoader(newStubVersionRepo(), &stubRequirementRepo{})
		_, err := loader.Load(ctx, strings.NewReader(bad))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrRiskWeightOutOfRange.Code))
	})
}
