package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/probuilder/lms-api/internal/service"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
	"github.com/probuilder/lms-api/pkg/response"
)

// ProgressHandler exposes enrollment, completion and submission endpoints.
type ProgressHandler struct {
	service *service.ProgressService
}

// NewProgressHandler creates a new handler.
func NewProgressHandler(svc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: svc}
}

// EnrollProgram godoc
// @Summary Enroll in program
// @Description Enrolls the authenticated user in a program
// @Tags Progress
// @Produce json
// @Param id path string true "Program ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /programs/{id}/enroll [post]
func (h *ProgressHandler) EnrollProgram(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.service.EnrollProgram(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// EnrollCourse godoc
// @Summary Enroll in course
// @Description Enrolls the authenticated user in a course
// @Tags Progress
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *ProgressHandler) EnrollCourse(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.service.EnrollCourse(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// CompleteLesson godoc
// @Summary Complete lesson
// @Description Marks a lesson completed; the first completion earns points
// @Tags Progress
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /lessons/{id}/complete [post]
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	completion, err := h.service.CompleteLesson(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, completion, nil)
}

// CompleteCourse godoc
// @Summary Complete course
// @Description Transitions the user's course enrollment to completed
// @Tags Progress
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/complete [post]
func (h *ProgressHandler) CompleteCourse(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.service.CompleteCourse(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// CompleteProgram godoc
// @Summary Complete program
// @Description Transitions the user's program enrollment to completed
// @Tags Progress
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /programs/{id}/complete [post]
func (h *ProgressHandler) CompleteProgram(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.service.CompleteProgram(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// SubmitAssessment godoc
// @Summary Submit assessment
// @Description Records an attempt; graded submissions earn points and a perfect score earns a bonus
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body object true "Answers and optional score"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessments/{id}/submissions [post]
func (h *ProgressHandler) SubmitAssessment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Answers json.RawMessage `json:"answers" binding:"required"`
		Score   *int            `json:"score"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	submission, err := h.service.SubmitAssessment(c.Request.Context(), service.SubmitAssessmentRequest{
		UserID:       claims.UserID,
		AssessmentID: c.Param("id"),
		Answers:      payload.Answers,
		Score:        payload.Score,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}
