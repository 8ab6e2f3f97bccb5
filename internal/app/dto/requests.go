// Package dto defines the request and response shapes of the HTTP API.
// Handlers bind and validate these; domain types never cross the wire
// directly except as embedded read models.
package dto

// LoadCatalogRequest wraps an inline catalog document
type LoadCatalogRequest struct {
	// Raw YAML catalog document
	Catalog string `json:"catalog" binding:"required"`
}

// ActivateVersionRequest triggers activation of a published version
type ActivateVersionRequest struct {
	// Version to transition from; defaults to the framework's currently
	// active version
	PreviousVersionID string `json:"previous_version_id,omitempty"`
}

// CreateMappingRequest links a control to a requirement
type CreateMappingRequest struct {
	ControlID          string   `json:"control_id" binding:"required"`
	RequirementID      string   `json:"requirement_id" binding:"required"`
	Strength           string   `json:"mapping_strength" binding:"required,oneof=direct partial supportive"`
	CoveragePercentage int      `json:"coverage_percentage" binding:"min=0,max=100"`
	CoveredAspects     []string `json:"covered_aspects,omitempty"`
	UncoveredAspects   []string `json:"uncovered_aspects,omitempty"`
	Justification      string   `json:"justification,omitempty"`
}

// ResolveDriftRequest closes a drift finding
type ResolveDriftRequest struct {
	ResolutionType string `json:"resolution_type" binding:"required"`
	Notes          string `json:"notes,omitempty"`
	ResolvedBy     string `json:"resolved_by" binding:"required"`
}

// UpdateGapStatusRequest transitions a gap's lifecycle status
type UpdateGapStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=identified acknowledged in_progress resolved accepted_risk"`
	Notes  string `json:"notes,omitempty"`
}

// CompareQuery selects the version pair for a requirement comparison
type CompareQuery struct {
	OldVersionID string `form:"old_version_id" binding:"required"`
	NewVersionID string `form:"new_version_id" binding:"required"`
}
