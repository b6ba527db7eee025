package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/application/offer/usecases"
	"github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

// AdminOfferHandler manages discount codes. Routes are guarded by the
// offers permission.
type AdminOfferHandler struct {
	createUseCase     createOfferUseCase
	listUseCase       listOffersUseCase
	deactivateUseCase deactivateOfferUseCase
	logger            logger.Interface
}

func NewAdminOfferHandler(
	createUC createOfferUseCase,
	listUC listOffersUseCase,
	deactivateUC deactivateOfferUseCase,
	logger logger.Interface,
) *AdminOfferHandler {
	return &AdminOfferHandler{
		createUseCase:     createUC,
		listUseCase:       listUC,
		deactivateUseCase: deactivateUC,
		logger:            logger,
	}
}

// CreateOfferRequest represents an admin request to create a discount code
type CreateOfferRequest struct {
	Code              string    `json:"code" binding:"required,max=50"`
	Description       string    `json:"description" binding:"max=255"`
	DiscountType      string    `json:"discount_type" binding:"required,oneof=percentage flat"`
	DiscountValue     float64   `json:"discount_value" binding:"gt=0"`
	MaxDiscountAmount *float64  `json:"max_discount_amount" binding:"omitempty,gt=0"`
	MinAmount         float64   `json:"min_amount" binding:"gte=0"`
	ApplicablePlans   []string  `json:"applicable_plans"`
	StartDate         time.Time `json:"start_date" binding:"required"`
	EndDate           time.Time `json:"end_date" binding:"required"`
	UsageLimit        *int      `json:"usage_limit" binding:"omitempty,gt=0"`
	PerUserLimit      int       `json:"per_user_limit" binding:"gte=0"`
}

// CreateOffer handles POST /admin/offers
func (h *AdminOfferHandler) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create offer", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreateOfferCommand{
		Code:              req.Code,
		Description:       req.Description,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinAmount:         req.MinAmount,
		ApplicablePlans:   req.ApplicablePlans,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		UsageLimit:        req.UsageLimit,
		PerUserLimit:      req.PerUserLimit,
	})
	if err != nil {
		h.logger.Errorw("failed to create offer", "error", err, "code", req.Code)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "offer created")
}

// ListOffers handles GET /admin/offers?active=true
func (h *AdminOfferHandler) ListOffers(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("active must be a boolean", raw))
			return
		}
		activeOnly = v
	}

	offers, err := h.listUseCase.Execute(c.Request.Context(), usecases.ListOffersQuery{ActiveOnly: activeOnly})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, offers, len(offers))
}

// DeactivateOffer handles DELETE /admin/offers/:code
func (h *AdminOfferHandler) DeactivateOffer(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("code is required"))
		return
	}

	if err := h.deactivateUseCase.Execute(c.Request.Context(), usecases.DeactivateOfferCommand{Code: code}); err != nil {
		h.logger.Errorw("failed to deactivate offer", "error", err, "code", code)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "offer deactivated", nil)
}
