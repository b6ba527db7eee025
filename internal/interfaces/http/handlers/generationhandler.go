package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/application/entitlement"
	"github.com/postforge/postforge/internal/application/generation"
	"github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

type GenerationHandler struct {
	generateUseCase generateContentUseCase
	logger          logger.Interface
}

func NewGenerationHandler(generateUC generateContentUseCase, logger logger.Interface) *GenerationHandler {
	return &GenerationHandler{
		generateUseCase: generateUC,
		logger:          logger,
	}
}

// GenerateRequest represents a request to generate a post or a comment
type GenerateRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=post comment"`
	Prompt    string `json:"prompt" binding:"required"`
	Tone      string `json:"tone" binding:"omitempty,max=64"`
	MaxTokens int    `json:"max_tokens" binding:"omitempty,min=1,max=4000"`
}

// Generate handles POST /generations
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for generate", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.generateUseCase.Execute(c.Request.Context(), generation.GenerateContentCommand{
		UserID:    userID,
		Kind:      req.Kind,
		Prompt:    req.Prompt,
		Tone:      req.Tone,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		h.logger.Errorw("failed to generate content", "error", err, "user_id", userID, "kind", req.Kind)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if !result.Allowed {
		status := http.StatusForbidden
		if result.Decision.Reason == entitlement.ReasonQuotaExceeded {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, utils.APIResponse{
			Success: false,
			Data:    result,
			Error: &utils.ErrorInfo{
				Type:    string(result.Decision.Reason),
				Message: denialMessage(result.Decision.Reason),
			},
		})
		return
	}

	utils.CreatedResponse(c, result, "content generated")
}

func denialMessage(reason entitlement.Reason) string {
	switch reason {
	case entitlement.ReasonQuotaExceeded:
		return "monthly quota reached for your plan"
	case entitlement.ReasonUnknownPlan:
		return "your plan is not recognised"
	default:
		return "entitlement could not be verified"
	}
}
