package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/application/offer/usecases"
	"github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

// OfferHandler checks and redeems discount codes for the caller.
// Rejections are returned as 200 with valid=false and a reason.
type OfferHandler struct {
	validateUseCase  validateOfferUseCase
	calculateUseCase calculateDiscountUseCase
	applyUseCase     applyOfferUseCase
	logger           logger.Interface
}

func NewOfferHandler(
	validateUC validateOfferUseCase,
	calculateUC calculateDiscountUseCase,
	applyUC applyOfferUseCase,
	logger logger.Interface,
) *OfferHandler {
	return &OfferHandler{
		validateUseCase:  validateUC,
		calculateUseCase: calculateUC,
		applyUseCase:     applyUC,
		logger:           logger,
	}
}

// OfferOrderRequest describes the order a code is checked against
type OfferOrderRequest struct {
	Code   string  `json:"code" binding:"required"`
	Amount float64 `json:"amount" binding:"gte=0"`
	Plan   string  `json:"plan"`
}

func (h *OfferHandler) bind(c *gin.Context) (uint, *OfferOrderRequest, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return 0, nil, false
	}
	var req OfferOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for offer", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return 0, nil, false
	}
	return userID, &req, true
}

// Validate handles POST /offers/validate
func (h *OfferHandler) Validate(c *gin.Context) {
	userID, req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.validateUseCase.Execute(c.Request.Context(), usecases.ValidateOfferQuery{
		Code:   req.Code,
		Amount: req.Amount,
		UserID: userID,
		Plan:   req.Plan,
	})
	if err != nil {
		h.logger.Errorw("failed to validate offer", "error", err, "user_id", userID, "code", req.Code)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Calculate handles POST /offers/calculate
func (h *OfferHandler) Calculate(c *gin.Context) {
	userID, req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.calculateUseCase.Execute(c.Request.Context(), usecases.CalculateDiscountQuery{
		Code:   req.Code,
		Amount: req.Amount,
		UserID: userID,
		Plan:   req.Plan,
	})
	if err != nil {
		h.logger.Errorw("failed to calculate discount", "error", err, "user_id", userID, "code", req.Code)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Apply handles POST /offers/apply
func (h *OfferHandler) Apply(c *gin.Context) {
	userID, req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.applyUseCase.Execute(c.Request.Context(), usecases.ApplyOfferCommand{
		Code:   req.Code,
		UserID: userID,
		Amount: req.Amount,
		Plan:   req.Plan,
	})
	if err != nil {
		h.logger.Errorw("failed to apply offer", "error", err, "user_id", userID, "code", req.Code)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("offer evaluated for order",
		"user_id", userID,
		"code", result.Code,
		"applied", result.Applied,
		"reason", result.Reason,
	)
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
