package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/app/dto"
	appservice "github.com/regtrace/regtrace/internal/app/service"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/observability/logging"
)

// FrameworkHandler serves framework versions, catalog ingestion and
// version activation
type FrameworkHandler struct {
	versions   framework.Service
	frameworks framework.Repository
	library    requirement.Library
	loader     *requirement.Loader
	compliance *appservice.ComplianceService
	logger     logging.Logger
}

// NewFrameworkHandler creates the framework endpoints
func NewFrameworkHandler(versions framework.Service, frameworks framework.Repository,
	library requirement.Library, loader *requirement.Loader,
	compliance *appservice.ComplianceService, logger logging.Logger) *FrameworkHandler {

	return &FrameworkHandler{
		versions:   versions,
		frameworks: frameworks,
		library:    library,
		loader:     loader,
		compliance: compliance,
		logger:     logger,
	}
}

// ListFrameworks returns the distinct framework identifiers
// GET /api/v1/frameworks
func (h *FrameworkHandler) ListFrameworks(c *gin.Context) {
	ids, err := h.frameworks.ListFrameworks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, ids)
}

// ListVersions returns all versions of one framework
// GET /api/v1/frameworks/:id/versions
func (h *FrameworkHandler) ListVersions(c *gin.Context) {
	versions, err := h.versions.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, versions)
}

// GetVersion returns one framework version
// GET /api/v1/versions/:id
func (h *FrameworkHandler) GetVersion(c *gin.Context) {
	version, err := h.versions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, version)
}

// LoadCatalog ingests a YAML catalog document as a published version
// POST /api/v1/catalogs
func (h *FrameworkHandler) LoadCatalog(c *gin.Context) {
	var req dto.LoadCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	version, err := h.loader.Load(c.Request.Context(), strings.NewReader(req.Catalog))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, version)
}

// ActivateVersion activates a published version and runs the drift scan
// and gap recalculation
// POST /api/v1/versions/:id/activate
func (h *FrameworkHandler) ActivateVersion(c *gin.Context) {
	var req dto.ActivateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, err)
		return
	}

	result, err := h.compliance.ActivateVersion(c.Request.Context(), c.Param("id"), req.PreviousVersionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// RecalculateGaps reruns the gap pass for one framework version
// POST /api/v1/versions/:id/gaps/recalculate
func (h *FrameworkHandler) RecalculateGaps(c *gin.Context) {
	gaps, err := h.compliance.RecalculateGaps(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gaps)
}

// SearchRequirements matches requirements by substring
// GET /api/v1/requirements?query=...&version_id=...
func (h *FrameworkHandler) SearchRequirements(c *gin.Context) {
	reqs, err := h.library.Search(c.Request.Context(), c.Query("query"), c.Query("version_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, reqs)
}
