package framework

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

type stubVersionRepo struct {
	versions map[string]*Version
}

func newStubVersionRepo(versions ...*Version) *stubVersionRepo {
	r := &stubVersionRepo{versions: make(map[string]*Version)}
	for _, v := range versions {
		r.versions[v.ID] = v
	}
	return r
}

func (r *stubVersionRepo) Create(_ context.Context, v *Version) error {
	r.versions[v.ID] = v
	return nil
}

func (r *stubVersionRepo) GetByID(_ context.Context, id string) (*Version, error) {
	return r.versions[id], nil
}

func (r *stubVersionRepo) Update(_ context.Context, v *Version) error {
	r.versions[v.ID] = v
	return nil
}

func (r *stubVersionRepo) ListByFramework(_ context.Context, frameworkID string) ([]*Version, error) {
	out := make([]*Version, 0)
	for _, v := range r.versions {
		if v.FrameworkID == frameworkID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *stubVersionRepo) ListByStatus(_ context.Context, frameworkID string, status types.VersionStatus) ([]*Version, error) {
	out := make([]*Version, 0)
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

func testVersion(id, frameworkID string, status types.VersionStatus, effective time.Time) *Version {
	return &Version{
		ID:            id,
		FrameworkID:   frameworkID,
		VersionCode:   id,
		Status:        status,
		EffectiveDate: effective,
	}
}

func TestActivate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("activation supersedes the prior active version", func(t *testing.T) {
		repo := newStubVersionRepo(
			testVersion("v1", "iso27001", types.VersionStatusActive, now.AddDate(-2, 0, 0)),
			testVersion("v2", "iso27001", types.VersionStatusPublished, now),
		)
		svc := NewService(repo, logging.NewNop())

		got, err := svc.Activate(ctx, "v2")
		require.NoError(t, err)
		assert.Equal(t, types.VersionStatusActive, got.Status)
		assert.Equal(t, types.VersionStatusSuperseded, repo.versions["v1"].Status)

		active, err := repo.ListByStatus(ctx, "iso27001", types.VersionStatusActive)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("activating the active version is a no-op", func(t *testing.T) {
		repo := newStubVersionRepo(
			testVersion("v1", "iso27001", types.VersionStatusActive, now))
		svc := NewService(repo, logging.NewNop())

		got, err := svc.Activate(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, types.VersionStatusActive, got.Status)
	})

	t.Run("other frameworks are untouched", func(t *testing.T) {
		repo := newStubVersionRepo(
			testVersion("iso-v1", "iso27001", types.VersionStatusActive, now.AddDate(-1, 0, 0)),
			testVersion("soc-v1", "soc2", types.VersionStatusActive, now.AddDate(-1, 0, 0)),
			testVersion("iso-v2", "iso27001", types.VersionStatusPublished, now),
		)
		svc := NewService(repo, logging.NewNop())

		_, err := svc.Activate(ctx, "iso-v2")
		require.NoError(t, err)
		assert.Equal(t, types.VersionStatusActive, repo.versions["soc-v1"].Status)
	})

	t.Run("retired versions cannot be activated", func(t *testing.T) {
		repo := newStubVersionRepo(
			testVersion("v1", "iso27001", types.VersionStatusRetired, now))
		svc := NewService(repo, logging.NewNop())

		_, err := svc.Activate(ctx, "v1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrVersionNotActivatable.Code))
	})

	t.Run("unknown version is a not-found error", func(t *testing.T) {
		svc := NewService(newStubVersionRepo(), logging.NewNop())
		_, err := svc.Activate(ctx, "missing")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})
}

func TestGetActive(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("returns the single active version", func(t *testing.T) {
		repo := newStubVersionRepo(
			testVersion("v1", "iso27001", types.VersionStatusSuperseded, now.AddDate(-2, 0, 0)),
			testVersion("v2", "iso27001", types.VersionStatusActive, now))
		svc := NewService(repo, logging.NewNop())

		got, err := svc.GetActive(ctx, "iso27001")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.ID)
	})

	t.Run("no active version is a not-found error", func(t *testing.T) {
		repo := newStubVersionRepo(
			testVersion("v1", "iso27001", types.VersionStatusPublished, now))
		svc := NewService(repo, logging.NewNop())

		_, err := svc.GetActive(ctx, "iso27001")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNoActiveVersion.Code))
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})
}

func TestGetLatest(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	repo := newStubVersionRepo(
		testVersion("v1", "iso27001", types.VersionStatusActive, now.AddDate(-2, 0, 0)),
		testVersion("v2", "iso27001", types.VersionStatusPublished, now))
	svc := NewService(repo, logging.NewNop())

	got, err := svc.GetLatest(ctx, "iso27001")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.ID)

	_, err = svc.GetLatest(ctx, "unknown")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestComplianceDeadline(t *testing.T) {
	now := time.Now().UTC()
	deadline := now.AddDate(1, 0, 0)

	v := testVersion("v1", "iso27001", types.VersionStatusPublished, now)
	assert.Equal(t, now.AddDate(0, 0, 180), v.ComplianceDeadline(180))

	v.TransitionDeadline = &deadline
	assert.Equal(t, deadline, v.ComplianceDeadline(180))
}
