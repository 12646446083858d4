package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
	"github.com/DELONE-de/cgpa-cal-api/pkg/response"
)

// GradingHandler exposes the grading table and ad-hoc grade lookups.
type GradingHandler struct{}

// NewGradingHandler constructs GradingHandler.
func NewGradingHandler() *GradingHandler {
	return &GradingHandler{}
}

// Bands godoc
// @Summary Get the grade band table
// @Description Returns the score ranges, letter grades and point values used for grading, best band first.
// @Tags Grading
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grading/bands [get]
func (h *GradingHandler) Bands(c *gin.Context) {
	response.JSON(c, http.StatusOK, grading.Bands(), nil)
}

// Grade godoc
// @Summary Grade a raw score
// @Description Resolves the letter grade and point for one raw score without persisting anything.
// @Tags Grading
// @Produce json
// @Param score query int true "Raw score (0-100)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grading/grade [get]
func (h *GradingHandler) Grade(c *gin.Context) {
	score, err := strconv.Atoi(c.Query("score"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "score must be an integer"))
		return
	}
	grade, err := grading.GradeForScore(score)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrScoreOutOfRange, ""))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"score": score,
		"grade": grade,
		"point": grading.PointForGrade(string(grade)),
	}, nil)
}
