package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/application/subscription/usecases"
	"github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

// SubscriptionHandler handles the caller's own subscription
type SubscriptionHandler struct {
	createUseCase     createSubscriptionUseCase
	upgradeUseCase    upgradeSubscriptionUseCase
	cancelUseCase     cancelSubscriptionUseCase
	getCurrentUseCase getCurrentSubscriptionUseCase
	logger            logger.Interface
}

func NewSubscriptionHandler(
	createUC createSubscriptionUseCase,
	upgradeUC upgradeSubscriptionUseCase,
	cancelUC cancelSubscriptionUseCase,
	getCurrentUC getCurrentSubscriptionUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		createUseCase:     createUC,
		upgradeUseCase:    upgradeUC,
		cancelUseCase:     cancelUC,
		getCurrentUseCase: getCurrentUC,
		logger:            logger,
	}
}

// SubscribeRequest is shared by create and upgrade
type SubscribeRequest struct {
	Plan            string `json:"plan" binding:"required"`
	Currency        string `json:"currency" binding:"required,len=3"`
	BillingInterval string `json:"billing_interval" binding:"required,oneof=monthly yearly"`
}

func (h *SubscriptionHandler) bind(c *gin.Context) (*SubscribeRequest, bool) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for subscription", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return nil, false
	}
	return &req, true
}

// CreateSubscription handles POST /subscriptions
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreateSubscriptionCommand{
		UserID:          userID,
		Plan:            req.Plan,
		Currency:        req.Currency,
		BillingInterval: req.BillingInterval,
	})
	if err != nil {
		h.logger.Errorw("failed to create subscription", "error", err, "user_id", userID, "plan", req.Plan)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "subscription created")
}

// UpgradeSubscription handles POST /subscriptions/upgrade
func (h *SubscriptionHandler) UpgradeSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.upgradeUseCase.Execute(c.Request.Context(), usecases.UpgradeSubscriptionCommand{
		UserID:          userID,
		Plan:            req.Plan,
		Currency:        req.Currency,
		BillingInterval: req.BillingInterval,
	})
	if err != nil {
		h.logger.Errorw("failed to upgrade subscription", "error", err, "user_id", userID, "plan", req.Plan)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription upgraded", result)
}

// CancelSubscription handles POST /subscriptions/cancel
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.cancelUseCase.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{UserID: userID})
	if err != nil {
		h.logger.Errorw("failed to cancel subscription", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription cancelled", result)
}

// GetCurrentSubscription handles GET /subscriptions/current
func (h *SubscriptionHandler) GetCurrentSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.getCurrentUseCase.Execute(c.Request.Context(), usecases.GetCurrentSubscriptionQuery{UserID: userID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
