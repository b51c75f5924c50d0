package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agribuddy/internal/model"
	"agribuddy/internal/repository"
	"agribuddy/internal/service"
)

// DashboardHandler serves the daily agronomy summary
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates the dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary returns the most recent daily summary
// @Summary      Latest daily summary
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  model.DailySummary
// @Failure      404  {object}  model.ErrorResponse
// @Router       /api/v1/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	sum, err := h.dashboard.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrSummaryNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Code:    40402,
				Message: "No summary has been generated yet",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: "Failed to load summary",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, sum)
}

// Generate produces and stores today's summary
// @Summary      Generate today's summary
// @Tags         dashboard
// @Produce      json
// @Success      201  {object}  model.DailySummary
// @Failure      429  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/v1/dashboard/summary [post]
func (h *DashboardHandler) Generate(c *gin.Context) {
	sum, err := h.dashboard.Generate(c.Request.Context())
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sum)
}
