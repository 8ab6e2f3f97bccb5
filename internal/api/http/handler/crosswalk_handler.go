package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/app/dto"
	appservice "github.com/regtrace/regtrace/internal/app/service"
	"github.com/regtrace/regtrace/internal/observability/logging"
)

// CrosswalkHandler serves the mapping store endpoints
type CrosswalkHandler struct {
	mappings *appservice.MappingService
	logger   logging.Logger
}

// NewCrosswalkHandler creates the crosswalk endpoints
func NewCrosswalkHandler(mappings *appservice.MappingService, logger logging.Logger) *CrosswalkHandler {
	return &CrosswalkHandler{mappings: mappings, logger: logger}
}

// CreateMapping links a control to a requirement
// POST /api/v1/mappings
func (h *CrosswalkHandler) CreateMapping(c *gin.Context) {
	var req dto.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mapping, err := h.mappings.CreateMapping(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, mapping)
}

// GetMapping returns one mapping
// GET /api/v1/mappings/:id
func (h *CrosswalkHandler) GetMapping(c *gin.Context) {
	mapping, err := h.mappings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, mapping)
}

// DeleteMapping removes a mapping
// DELETE /api/v1/mappings/:id
func (h *CrosswalkHandler) DeleteMapping(c *gin.Context) {
	if err := h.mappings.RemoveMapping(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByVersion returns the current mappings within a framework version
// GET /api/v1/versions/:id/mappings
func (h *CrosswalkHandler) ListByVersion(c *gin.Context) {
	mappings, err := h.mappings.ListForVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, mappings)
}

// ListByRequirement returns the current mappings for one requirement
// GET /api/v1/requirements/:id/mappings
func (h *CrosswalkHandler) ListByRequirement(c *gin.Context) {
	mappings, err := h.mappings.ListForRequirement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, mappings)
}
