// Package errors defines error code constants for regtrace. Each code
// carries a unique identifier, HTTP status, and message template so the
// API surfaces stay consistent.
package errors

import "net/http"

// ErrorCode represents a structured error code definition
type ErrorCode struct {
	Code       string
	Type       ErrorType
	HTTPStatus int
	Message    string
}

// ============================================================================
// Framework Version Errors (FW_xxx)
// ============================================================================

var (
	// ErrVersionNotFound indicates the framework version does not exist
	ErrVersionNotFound = ErrorCode{
		Code:       "FW_001",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Framework version not found",
	}

	// ErrVersionNotActivatable indicates the version cannot become active
	ErrVersionNotActivatable = ErrorCode{
		Code:       "FW_002",
		Type:       ErrorTypeInvalidState,
		HTTPStatus: http.StatusConflict,
		Message:    "Framework version cannot be activated from its current status",
	}

	// ErrNoActiveVersion indicates the framework has no active version
	ErrNoActiveVersion = ErrorCode{
		Code:       "FW_003",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Framework has no active version",
	}
)

// ============================================================================
// Requirement Errors (REQ_xxx)
// ============================================================================

var (
	// ErrRequirementNotFound indicates the requirement does not exist
	ErrRequirementNotFound = ErrorCode{
		Code:       "REQ_001",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Requirement not found",
	}

	// ErrCatalogParseFailed indicates the catalog document could not be parsed
	ErrCatalogParseFailed = ErrorCode{
		Code:       "REQ_002",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusUnprocessableEntity,
		Message:    "Failed to parse requirement catalog",
	}
)

// ============================================================================
// Crosswalk Errors (XWALK_xxx)
// ============================================================================

var (
	// ErrMappingNotFound indicates the crosswalk mapping does not exist
	ErrMappingNotFound = ErrorCode{
		Code:       "XWALK_001",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Crosswalk mapping not found",
	}

	// ErrCoverageOutOfRange indicates a coverage percentage outside [0,100]
	ErrCoverageOutOfRange = ErrorCode{
		Code:       "XWALK_002",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Coverage percentage must be between 0 and 100",
	}

	// ErrControlNotFound indicates the referenced control does not exist
	ErrControlNotFound = ErrorCode{
		Code:       "XWALK_003",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Control not found",
	}
)

// ============================================================================
// Drift Errors (DRIFT_xxx)
// ============================================================================

var (
	// ErrDriftNotFound indicates the drift record does not exist
	ErrDriftNotFound = ErrorCode{
		Code:       "DRIFT_001",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Drift record not found",
	}

	// ErrDriftAlreadyResolved indicates the record was resolved before
	ErrDriftAlreadyResolved = ErrorCode{
		Code:       "DRIFT_002",
		Type:       ErrorTypeInvalidState,
		HTTPStatus: http.StatusConflict,
		Message:    "Drift record is already resolved",
	}

	// ErrDriftScanFailed indicates a detection pass failed before publishing
	ErrDriftScanFailed = ErrorCode{
		Code:       "DRIFT_003",
		Type:       ErrorTypeInternal,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Drift detection pass failed; prior records left untouched",
	}
)

// ============================================================================
// Gap Errors (GAP_xxx)
// ============================================================================

var (
	// ErrGapNotFound indicates the gap record does not exist
	ErrGapNotFound = ErrorCode{
		Code:       "GAP_001",
		Type:       ErrorTypeNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    "Gap record not found",
	}

	// ErrGapRecalcFailed indicates a recalculation pass failed before publishing
	ErrGapRecalcFailed = ErrorCode{
		Code:       "GAP_002",
		Type:       ErrorTypeInternal,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Gap recalculation failed; prior records left untouched",
	}
)

// ============================================================================
// Validation Errors (VAL_xxx)
// ============================================================================

var (
	// ErrInvalidRequest indicates a malformed API request body
	ErrInvalidRequest = ErrorCode{
		Code:       "VAL_001",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Invalid request parameters",
	}

	// ErrRiskWeightOutOfRange indicates a risk weight outside [1,10]
	ErrRiskWeightOutOfRange = ErrorCode{
		Code:       "VAL_002",
		Type:       ErrorTypeValidation,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Risk weight must be between 1 and 10",
	}
)

// ============================================================================
// Infrastructure Errors (DB_xxx, CACHE_xxx, MQ_xxx, STOR_xxx)
// ============================================================================

var (
	// ErrDatabaseError indicates a database operation failed
	ErrDatabaseError = ErrorCode{
		Code:       "DB_001",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Database operation failed",
	}

	// ErrCacheError indicates a cache operation failed
	ErrCacheError = ErrorCode{
		Code:       "CACHE_001",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Cache operation failed",
	}

	// ErrPublishFailed indicates an event could not be published
	ErrPublishFailed = ErrorCode{
		Code:       "MQ_001",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Event publish failed",
	}

	// ErrEvidenceStoreError indicates an evidence object operation failed
	ErrEvidenceStoreError = ErrorCode{
		Code:       "STOR_001",
		Type:       ErrorTypeInfrastructure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Evidence store operation failed",
	}
)
