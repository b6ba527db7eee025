package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

// UsageHandler exposes the caller's metered usage.
type UsageHandler struct {
	reporter usageReporter
	logger   logger.Interface
}

func NewUsageHandler(reporter usageReporter, logger logger.Interface) *UsageHandler {
	return &UsageHandler{
		reporter: reporter,
		logger:   logger,
	}
}

// GetUsage handles GET /usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	overview, err := h.reporter.Overview(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to get usage overview", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", overview)
}

// GetHistory handles GET /usage/history?periods=N
func (h *UsageHandler) GetHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	periods := 0
	if raw := c.Query("periods"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("periods must be a positive integer", raw))
			return
		}
		periods = n
	}

	entries, err := h.reporter.History(c.Request.Context(), userID, periods)
	if err != nil {
		h.logger.Errorw("failed to get usage history", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, entries, len(entries))
}

// GetStats handles GET /usage/stats
func (h *UsageHandler) GetStats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.reporter.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to get usage stats", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}
