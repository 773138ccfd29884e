package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/probuilder/lms-api/internal/service"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
	"github.com/probuilder/lms-api/pkg/response"
)

// GamificationHandler exposes the per-user summary, the leaderboard and its
// exports.
type GamificationHandler struct {
	leaderboard *service.LeaderboardService
}

// NewGamificationHandler creates a new handler.
func NewGamificationHandler(leaderboard *service.LeaderboardService) *GamificationHandler {
	return &GamificationHandler{leaderboard: leaderboard}
}

// Summary godoc
// @Summary Get gamification summary
// @Description Returns total points, badges, transaction history and progress stats for a user
// @Tags Gamification
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/gamification [get]
func (h *GamificationHandler) Summary(c *gin.Context) {
	userID := c.Param("id")
	summary, err := h.leaderboard.GetUserSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// MySummary godoc
// @Summary Get own gamification summary
// @Description Returns the authenticated user's gamification summary
// @Tags Gamification
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /gamification/me [get]
func (h *GamificationHandler) MySummary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.leaderboard.GetUserSummary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Leaderboard godoc
// @Summary Get points leaderboard
// @Description Returns the top users ranked by total points
// @Tags Gamification
// @Produce json
// @Param limit query int false "Number of entries"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /gamification/leaderboard [get]
func (h *GamificationHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ExportLeaderboard godoc
// @Summary Export leaderboard
// @Description Downloads the leaderboard as CSV or PDF
// @Tags Gamification
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format" Enums(csv, pdf)
// @Param limit query int false "Number of entries"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /gamification/leaderboard/export [get]
func (h *GamificationHandler) ExportLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	payload, contentType, filename, err := h.leaderboard.ExportLeaderboard(c.Request.Context(), limit, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
