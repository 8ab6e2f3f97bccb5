package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/app/dto"
	appservice "github.com/regtrace/regtrace/internal/app/service"
	"github.com/regtrace/regtrace/internal/observability/logging"
)

// DashboardHandler serves the composed posture read model and the
// version comparison endpoint
type DashboardHandler struct {
	dashboard *appservice.DashboardService
	logger    logging.Logger
}

// NewDashboardHandler creates the dashboard endpoints
func NewDashboardHandler(dashboard *appservice.DashboardService, logger logging.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Dashboard returns the composed compliance posture
// GET /api/v1/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	board, err := h.dashboard.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, board)
}

// Compare renders a requirement side by side across a version pair
// GET /api/v1/requirements/compare/:code?old_version_id=...&new_version_id=...
func (h *DashboardHandler) Compare(c *gin.Context) {
	var query dto.CompareQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	comparison, err := h.dashboard.Compare(c.Request.Context(),
		c.Param("code"), query.OldVersionID, query.NewVersionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, comparison)
}
