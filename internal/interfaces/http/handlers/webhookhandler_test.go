package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	paymentUsecases "github.com/postforge/postforge/internal/application/payment/usecases"
	"github.com/postforge/postforge/internal/interfaces/http/handlers/testutil"
)

type mockIngestWebhookUC struct {
	err          error
	gotBody      []byte
	gotSignature string
}

func (m *mockIngestWebhookUC) Execute(ctx context.Context, rawBody []byte, signature string) error {
	m.gotBody = rawBody
	m.gotSignature = signature
	return m.err
}

func TestWebhookHandler_HandlePaymentWebhook(t *testing.T) {
	payload := []byte(`{"event":"subscription.charged","payload":{}}`)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"accepted", nil, http.StatusOK},
		{"bad signature", paymentUsecases.ErrInvalidSignature, http.StatusBadRequest},
		{"malformed", fmt.Errorf("%w: missing entity", paymentUsecases.ErrMalformedEvent), http.StatusBadRequest},
		{"handler failure is retried", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockIngestWebhookUC{err: tt.err}
			h := NewWebhookHandler(uc, testutil.NewMockLogger())

			c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/webhooks/payments", payload)
			c.Request.Header.Set("X-Razorpay-Signature", "abc123")
			h.HandlePaymentWebhook(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, payload, uc.gotBody, "body must reach the verifier byte for byte")
			assert.Equal(t, "abc123", uc.gotSignature)
		})
	}
}
