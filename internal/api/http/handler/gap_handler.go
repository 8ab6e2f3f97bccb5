package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/app/dto"
	appservice "github.com/regtrace/regtrace/internal/app/service"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// GapHandler serves the gap lifecycle and evidence endpoints
type GapHandler struct {
	gaps   *appservice.GapService
	logger logging.Logger
}

// NewGapHandler creates the gap endpoints
func NewGapHandler(gaps *appservice.GapService, logger logging.Logger) *GapHandler {
	return &GapHandler{gaps: gaps, logger: logger}
}

// List returns gaps; open only by default, everything with ?all=true
// GET /api/v1/gaps
func (h *GapHandler) List(c *gin.Context) {
	var (
		err  error
		gaps interface{}
	)
	if c.Query("all") == "true" {
		gaps, err = h.gaps.ListAll(c.Request.Context())
	} else {
		gaps, err = h.gaps.ListOpen(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gaps)
}

// Get returns one gap
// GET /api/v1/gaps/:id
func (h *GapHandler) Get(c *gin.Context) {
	g, err := h.gaps.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, g)
}

// UpdateStatus transitions a gap's lifecycle status
// PATCH /api/v1/gaps/:id/status
func (h *GapHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateGapStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	g, err := h.gaps.UpdateStatus(c.Request.Context(), c.Param("id"), types.GapStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, g)
}

// AttachEvidence uploads a direct evidence object for a gap
// POST /api/v1/gaps/:id/evidence (multipart form, field "file")
func (h *GapHandler) AttachEvidence(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, errors.NewFromCode(errors.ErrEvidenceStoreError).WithCause(err))
		return
	}
	defer file.Close()

	g, err := h.gaps.AttachEvidence(c.Request.Context(), c.Param("id"),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, g)
}

// EvidenceURL returns a presigned download URL for an evidence object
// GET /api/v1/gaps/:id/evidence/url?key=...
func (h *GapHandler) EvidenceURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		respondError(c, errors.ValidationError("key query parameter is required"))
		return
	}

	url, err := h.gaps.EvidenceURL(c.Request.Context(), c.Param("id"), key)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"url": url})
}
