package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/app/dto"
	appservice "github.com/regtrace/regtrace/internal/app/service"
	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/internal/observability/logging"
)

// DriftHandler serves the drift finding endpoints
type DriftHandler struct {
	compliance *appservice.ComplianceService
	logger     logging.Logger
}

// NewDriftHandler creates the drift endpoints
func NewDriftHandler(compliance *appservice.ComplianceService, logger logging.Logger) *DriftHandler {
	return &DriftHandler{compliance: compliance, logger: logger}
}

// ListOpen returns open findings, most urgent first
// GET /api/v1/drift
func (h *DriftHandler) ListOpen(c *gin.Context) {
	findings, err := h.compliance.ListOpenDrift(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewDriftViews(findings, time.Now().UTC()))
}

// Get returns one finding
// GET /api/v1/drift/:id
func (h *DriftHandler) Get(c *gin.Context) {
	finding, err := h.compliance.GetDrift(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewDriftView(finding, time.Now().UTC()))
}

// Acknowledge moves a finding to acknowledged
// POST /api/v1/drift/:id/acknowledge
func (h *DriftHandler) Acknowledge(c *gin.Context) {
	finding, err := h.compliance.AcknowledgeDrift(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewDriftView(finding, time.Now().UTC()))
}

// Resolve closes a finding
// POST /api/v1/drift/:id/resolve
func (h *DriftHandler) Resolve(c *gin.Context) {
	var req dto.ResolveDriftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	finding, err := h.compliance.ResolveDrift(c.Request.Context(), c.Param("id"), drift.Resolution{
		Type:       req.ResolutionType,
		Notes:      req.Notes,
		ResolvedBy: req.ResolvedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewDriftView(finding, time.Now().UTC()))
}
