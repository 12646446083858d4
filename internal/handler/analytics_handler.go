package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DELONE-de/cgpa-cal-api/internal/service"
	"github.com/DELONE-de/cgpa-cal-api/pkg/response"
)

// AnalyticsHandler exposes department analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Distribution godoc
// @Summary Department CGPA distribution
// @Description Returns CGPA spread statistics and the degree class histogram for a department's active students.
// @Tags Analytics
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id}/analytics [get]
func (h *AnalyticsHandler) Distribution(c *gin.Context) {
	analytics, err := h.analytics.DepartmentAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analytics, nil)
}
