package dto

import (
	"time"

	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/internal/domain/gap"
	"github.com/regtrace/regtrace/internal/domain/scoring"
)

// Response is the uniform envelope for every API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a machine-readable error code plus details
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// DriftView is a drift finding with its countdown materialized
type DriftView struct {
	*drift.ComplianceDrift
	DaysRemaining int `json:"days_remaining"`
}

// NewDriftView wraps a finding, computing days remaining at read time
func NewDriftView(d *drift.ComplianceDrift, now time.Time) DriftView {
	return DriftView{ComplianceDrift: d, DaysRemaining: d.DaysRemaining(now)}
}

// NewDriftViews wraps a finding list
func NewDriftViews(ds []*drift.ComplianceDrift, now time.Time) []DriftView {
	out := make([]DriftView, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewDriftView(d, now))
	}
	return out
}

// ActivationResult summarizes everything a version activation produced
type ActivationResult struct {
	VersionID     string      `json:"version_id"`
	FrameworkID   string      `json:"framework_id"`
	VersionCode   string      `json:"version_code"`
	DriftFindings []DriftView `json:"drift_findings"`
	GapsOpen      int         `json:"gaps_open"`
}

// Dashboard is the composed compliance posture read model
type Dashboard struct {
	GeneratedAt time.Time `json:"generated_at"`

	Frameworks []scoring.FrameworkSummary `json:"frameworks"`
	Domains    []scoring.DomainSummary    `json:"domains"`
	Weighted   scoring.WeightedScore      `json:"weighted"`

	OpenDrift []DriftView      `json:"open_drift"`
	OpenGaps  []*gap.CustomGap `json:"open_gaps"`
}
