package crosswalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/requirement"
)

func TestMatch(t *testing.T) {
	req := &requirement.MasterRequirement{
		Title:    "Encryption key rotation",
		Keywords: []string{"encryption", "key", "rotation", "kms"},
	}

	t.Run("ranks controls by descending overlap", func(t *testing.T) {
		matcher := NewMatcher(MatcherConfig{})
		controls := []*control.Control{
			{ID: "C-1", Title: "Key management", Keywords: []string{"encryption", "key"}},
			{ID: "C-2", Title: "KMS key rotation", Keywords: []string{"encryption", "key", "rotation", "kms"}},
			{ID: "C-3", Title: "Visitor badges", Keywords: []string{"physical", "badge"}},
		}

		got := matcher.Match(req, controls)
		require.Len(t, got, 2)
		assert.Equal(t, "C-2", got[0].Control.ID)
		assert.Equal(t, 1.0, got[0].Overlap)
		assert.Equal(t, "C-1", got[1].Control.ID)
	})

	t.Run("drops controls below the threshold", func(t *testing.T) {
		matcher := NewMatcher(MatcherConfig{OverlapThreshold: 0.75})
		controls := []*control.Control{
			{ID: "C-1", Keywords: []string{"encryption", "key"}},
			{ID: "C-2", Keywords: []string{"encryption", "key", "rotation", "kms"}},
		}

		got := matcher.Match(req, controls)
		require.Len(t, got, 1)
		assert.Equal(t, "C-2", got[0].Control.ID)
	})

	t.Run("caps the candidate list at top-k", func(t *testing.T) {
		matcher := NewMatcher(MatcherConfig{TopK: 2})
		controls := []*control.Control{
			{ID: "C-1", Keywords: []string{"encryption", "key"}},
			{ID: "C-2", Keywords: []string{"encryption", "key", "rotation"}},
			{ID: "C-3", Keywords: []string{"encryption", "key", "rotation", "kms"}},
		}

		got := matcher.Match(req, controls)
		require.Len(t, got, 2)
		assert.Equal(t, "C-3", got[0].Control.ID)
		assert.Equal(t, "C-2", got[1].Control.ID)
	})

	t.Run("ties break on control id", func(t *testing.T) {
		matcher := NewMatcher(MatcherConfig{})
		controls := []*control.Control{
			{ID: "C-2", Keywords: []string{"encryption", "key"}},
			{ID: "C-1", Keywords: []string{"rotation", "kms"}},
		}

		got := matcher.Match(req, controls)
		require.Len(t, got, 2)
		assert.Equal(t, "C-1", got[0].Control.ID)
		assert.Equal(t, "C-2", got[1].Control.ID)
	})

	t.Run("stop words and case do not affect overlap", func(t *testing.T) {
		matcher := NewMatcher(MatcherConfig{})
		spelled := &requirement.MasterRequirement{
			Title: "Rotation of the encryption KEY in a KMS",
		}
		controls := []*control.Control{
			{ID: "C-1", Title: "Encryption key rotation (KMS)"},
		}

		got := matcher.Match(spelled, controls)
		require.Len(t, got, 1)
		assert.Equal(t, 1.0, got[0].Overlap)
	})

	t.Run("requirement without usable tokens matches nothing", func(t *testing.T) {
		matcher := NewMatcher(MatcherConfig{})
		empty := &requirement.MasterRequirement{Title: "of the a"}
		got := matcher.Match(empty, []*control.Control{{ID: "C-1", Title: "Anything"}})
		assert.Nil(t, got)
	})
}
