package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/probuilder/lms-api/internal/service"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
	"github.com/probuilder/lms-api/pkg/response"
)

// BadgeHandler exposes the badge catalog and the manual award path.
type BadgeHandler struct {
	service *service.BadgeService
}

// NewBadgeHandler creates a new handler.
func NewBadgeHandler(svc *service.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: svc}
}

// List godoc
// @Summary List badge catalog
// @Description Returns every badge definition
// @Tags Badges
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /badges [get]
func (h *BadgeHandler) List(c *gin.Context) {
	badges, err := h.service.ListCatalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badges, nil)
}

// Create godoc
// @Summary Create badge
// @Description Creates a catalog badge; requirements are validated up front
// @Tags Badges
// @Accept json
// @Produce json
// @Param payload body service.CreateBadgeRequest true "Badge payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /badges [post]
func (h *BadgeHandler) Create(c *gin.Context) {
	var req service.CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid badge payload"))
		return
	}

	badge, err := h.service.CreateBadge(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, badge)
}

// Update godoc
// @Summary Update badge
// @Description Replaces a catalog badge, revalidating its requirements
// @Tags Badges
// @Accept json
// @Produce json
// @Param id path string true "Badge ID"
// @Param payload body service.CreateBadgeRequest true "Badge payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /badges/{id} [put]
func (h *BadgeHandler) Update(c *gin.Context) {
	var req service.CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid badge payload"))
		return
	}

	badge, err := h.service.UpdateBadge(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badge, nil)
}

// Award godoc
// @Summary Award badge manually
// @Description Grants a badge to a user through the instructor path
// @Tags Badges
// @Accept json
// @Produce json
// @Param id path string true "Badge ID"
// @Param payload body map[string]string true "Target user"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /badges/{id}/award [post]
func (h *BadgeHandler) Award(c *gin.Context) {
	var payload struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "user_id required"))
		return
	}

	award, err := h.service.AwardByInstructor(c.Request.Context(), payload.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, award)
}
