package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/pkg/types"
)

func baseRequirement(code string) *requirement.MasterRequirement {
	return &requirement.MasterRequirement{
		ID:                    "req-" + code,
		FrameworkVersionID:    "v1",
		RequirementCode:       code,
		Title:                 "Logical access controls",
		OfficialText:          "The entity restricts logical access to systems.",
		ImplementationLevel:   types.ImplementationMandatory,
		RequiredEvidenceTypes: []string{"policy_document"},
		VerificationFrequency: types.FrequencyAnnual,
		RiskWeight:            5,
	}
}

func clone(r *requirement.MasterRequirement) *requirement.MasterRequirement {
	c := *r
	c.RequiredEvidenceTypes = append([]string(nil), r.RequiredEvidenceTypes...)
	return &c
}

func TestAnalyzeChange(t *testing.T) {
	t.Run("unchanged requirement produces no drift", func(t *testing.T) {
		old := baseRequirement("CC6.1")
		got := AnalyzeChange(old, clone(old), types.AnswerYes, true)
		assert.False(t, got.HasDrift)
		assert.True(t, got.AnswerStillValid)
	})

	t.Run("new evidence type is medium and keeps the answer valid", func(t *testing.T) {
		old := baseRequirement("CC6.1")
		next := clone(old)
		next.RequiredEvidenceTypes = append(next.RequiredEvidenceTypes, "audit_log")

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.True(t, got.HasDrift)
		assert.Equal(t, types.DriftEvidenceTypeChanged, got.DriftType)
		assert.Equal(t, types.SeverityMedium, got.Severity)
		assert.True(t, got.AnswerStillValid)
	})

	t.Run("optional to mandatory with na answer invalidates it", func(t *testing.T) {
		old := baseRequirement("CC6.2")
		old.ImplementationLevel = types.ImplementationOptional
		next := clone(old)
		next.ImplementationLevel = types.ImplementationMandatory

		got := AnalyzeChange(old, next, types.AnswerNotApplicable, true)
		assert.True(t, got.HasDrift)
		assert.Equal(t, types.DriftRequirementStrengthened, got.DriftType)
		assert.Equal(t, types.SeverityCritical, got.Severity)
		assert.False(t, got.AnswerStillValid)
	})

	t.Run("optional to mandatory with yes answer stays valid", func(t *testing.T) {
		old := baseRequirement("CC6.2")
		old.ImplementationLevel = types.ImplementationRecommended
		next := clone(old)
		next.ImplementationLevel = types.ImplementationMandatory

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.Equal(t, types.SeverityCritical, got.Severity)
		assert.True(t, got.AnswerStillValid)
	})

	t.Run("strengthening keyword in new text", func(t *testing.T) {
		old := baseRequirement("CC6.3")
		next := clone(old)
		next.OfficialText = "The entity must restrict logical access to systems."

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.True(t, got.HasDrift)
		assert.Equal(t, types.DriftRequirementStrengthened, got.DriftType)
		assert.Equal(t, types.SeverityHigh, got.Severity)
	})

	t.Run("text change without new keyword is not drift by itself", func(t *testing.T) {
		old := baseRequirement("CC6.3")
		next := clone(old)
		next.OfficialText = "The entity restricts logical access to its systems."

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.False(t, got.HasDrift)
	})

	t.Run("keyword already present in old text does not count", func(t *testing.T) {
		old := baseRequirement("CC6.3")
		old.OfficialText = "Access must be restricted."
		next := clone(old)
		next.OfficialText = "Access must be restricted and reviewed."

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.False(t, got.HasDrift)
	})

	t.Run("stricter verification frequency", func(t *testing.T) {
		old := baseRequirement("CC6.4")
		next := clone(old)
		next.VerificationFrequency = types.FrequencyQuarterly

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.True(t, got.HasDrift)
		assert.Equal(t, types.DriftVerificationFrequencyChanged, got.DriftType)
		assert.Equal(t, types.SeverityMedium, got.Severity)
	})

	t.Run("relaxed frequency is not drift", func(t *testing.T) {
		old := baseRequirement("CC6.4")
		old.VerificationFrequency = types.FrequencyMonthly
		next := clone(old)
		next.VerificationFrequency = types.FrequencyAnnual

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.False(t, got.HasDrift)
	})

	t.Run("risk weight jump alone is not drift", func(t *testing.T) {
		old := baseRequirement("CC6.5")
		next := clone(old)
		next.RiskWeight = 9

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.False(t, got.HasDrift)
	})

	t.Run("risk weight jump escalates an existing finding", func(t *testing.T) {
		old := baseRequirement("CC6.5")
		next := clone(old)
		next.RequiredEvidenceTypes = append(next.RequiredEvidenceTypes, "scan_report")
		next.RiskWeight = 9

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.Equal(t, types.DriftEvidenceTypeChanged, got.DriftType)
		assert.Equal(t, types.SeverityHigh, got.Severity)
	})

	t.Run("new emerging tech category wins the type and forces review", func(t *testing.T) {
		old := baseRequirement("CC6.6")
		next := clone(old)
		next.RequiredEvidenceTypes = append(next.RequiredEvidenceTypes, "model_card")
		next.EmergingTechCategory = "ai_governance"

		got := AnalyzeChange(old, next, types.AnswerYes, true)
		assert.Equal(t, types.DriftTechnologySpecific, got.DriftType)
		assert.Equal(t, types.SeverityHigh, got.Severity)
		assert.False(t, got.AnswerStillValid)
	})

	t.Run("critical severity survives later medium rules", func(t *testing.T) {
		old := baseRequirement("CC6.7")
		old.ImplementationLevel = types.ImplementationOptional
		next := clone(old)
		next.ImplementationLevel = types.ImplementationMandatory
		next.RequiredEvidenceTypes = append(next.RequiredEvidenceTypes, "audit_log")

		got := AnalyzeChange(old, next, types.AnswerNo, true)
		assert.Equal(t, types.DriftEvidenceTypeChanged, got.DriftType)
		assert.Equal(t, types.SeverityCritical, got.Severity)
		assert.False(t, got.AnswerStillValid)
	})
}

func TestNewRequirementSeverity(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*requirement.MasterRequirement)
		want   types.Severity
	}{
		{"mandatory high weight", func(r *requirement.MasterRequirement) {
			r.ImplementationLevel = types.ImplementationMandatory
			r.RiskWeight = 8
		}, types.SeverityCritical},
		{"mandatory normal weight", func(r *requirement.MasterRequirement) {
			r.ImplementationLevel = types.ImplementationMandatory
			r.RiskWeight = 4
		}, types.SeverityHigh},
		{"emerging tech", func(r *requirement.MasterRequirement) {
			r.ImplementationLevel = types.ImplementationOptional
			r.EmergingTechCategory = "quantum_safe_crypto"
		}, types.SeverityHigh},
		{"heavy weight only", func(r *requirement.MasterRequirement) {
			r.ImplementationLevel = types.ImplementationRecommended
			r.RiskWeight = 7
		}, types.SeverityMedium},
		{"default", func(r *requirement.MasterRequirement) {
			r.ImplementationLevel = types.ImplementationOptional
			r.RiskWeight = 3
		}, types.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := baseRequirement("N.1")
			tc.mutate(r)
			assert.Equal(t, tc.want, NewRequirementSeverity(r))
		})
	}
}
