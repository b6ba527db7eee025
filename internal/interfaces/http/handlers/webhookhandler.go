package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/postforge/postforge/internal/application/payment/usecases"
	"github.com/postforge/postforge/internal/shared/constants"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives payment processor callbacks. It is mounted without
// auth; the signature header authenticates the body.
type WebhookHandler struct {
	ingestUseCase ingestWebhookUseCase
	logger        logger.Interface
}

func NewWebhookHandler(ingestUC ingestWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		ingestUseCase: ingestUC,
		logger:        logger,
	}
}

// HandlePaymentWebhook handles POST /webhooks/payments
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "unreadable request body")
		return
	}

	signature := c.GetHeader(constants.HeaderRazorpaySig)
	err = h.ingestUseCase.Execute(c.Request.Context(), body, signature)
	switch {
	case err == nil:
		utils.SuccessResponse(c, http.StatusOK, "event accepted", nil)
	case errors.Is(err, paymentUsecases.ErrInvalidSignature):
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, paymentUsecases.ErrMalformedEvent):
		utils.ErrorResponse(c, http.StatusBadRequest, "malformed event")
	default:
		// a 5xx makes the processor redeliver
		h.logger.Errorw("failed to process webhook", "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
	}
}
