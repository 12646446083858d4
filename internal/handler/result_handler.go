package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DELONE-de/cgpa-cal-api/internal/service"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
	"github.com/DELONE-de/cgpa-cal-api/pkg/response"
)

// ResultHandler exposes semester result endpoints.
type ResultHandler struct {
	results *service.ResultService
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

type recalculateRequest struct {
	StudentID  string `json:"student_id" binding:"required"`
	SemesterID string `json:"semester_id" binding:"required"`
}

type finalizeRequest struct {
	StudentID  string `json:"student_id" binding:"required"`
	SemesterID string `json:"semester_id" binding:"required"`
	Finalized  *bool  `json:"finalized" binding:"required"`
}

// Recalculate godoc
// @Summary Recalculate a semester result
// @Description Recompute a student's semester GPA from their stored scores. Finalized results refuse recalculation.
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body recalculateRequest true "Target student and semester"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results/recalculate [post]
func (h *ResultHandler) Recalculate(c *gin.Context) {
	var req recalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.results.Recalculate(c.Request.Context(), req.StudentID, req.SemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Finalize godoc
// @Summary Finalize or reopen a semester result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body finalizeRequest true "Target student and semester"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/finalize [post]
func (h *ResultHandler) Finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.results.Finalize(c.Request.Context(), req.StudentID, req.SemesterID, *req.Finalized); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByStudent godoc
// @Summary List a student's semester results
// @Tags Results
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/results [get]
func (h *ResultHandler) ListByStudent(c *gin.Context) {
	results, err := h.results.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// CGPA godoc
// @Summary Get a student's cumulative standing
// @Description Folds the student's stored semester aggregates into a CGPA and class of degree.
// @Tags Results
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/cgpa [get]
func (h *ResultHandler) CGPA(c *gin.Context) {
	summary, err := h.results.CGPA(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
