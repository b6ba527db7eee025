// Package payment adapts the payment processor's REST API and webhook signing.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/postforge/postforge/internal/application/subscription/usecases"
	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/shared/logger"
)

const (
	defaultRequestTimeout = 15 * time.Second
	// Maximum response body size accepted from the processor (256KB)
	maxResponseSize = 256 << 10
	// billing cycles requested per subscription; renewal is processor-driven
	monthlyTotalCount = 120
	yearlyTotalCount  = 10
)

type ClientConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type createSubscriptionRequest struct {
	PlanID         string            `json:"plan_id"`
	TotalCount     int               `json:"total_count"`
	CustomerNotify int               `json:"customer_notify"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type subscriptionResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ShortURL string `json:"short_url"`
}

type cancelSubscriptionRequest struct {
	CancelAtCycleEnd int `json:"cancel_at_cycle_end"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayClient implements usecases.PaymentGateway over the Razorpay
// subscriptions API using basic auth.
type RazorpayClient struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	logger     logger.Interface
}

var _ usecases.PaymentGateway = (*RazorpayClient)(nil)

func NewRazorpayClient(cfg ClientConfig, logger logger.Interface) *RazorpayClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &RazorpayClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		logger:     logger,
	}
}

func (c *RazorpayClient) CreateSubscription(ctx context.Context, req usecases.CreateRemoteSubscriptionRequest) (*usecases.RemoteSubscription, error) {
	if req.ProcessorPlanID == "" {
		return nil, fmt.Errorf("processor plan id is required for plan %s", req.Plan)
	}

	totalCount := monthlyTotalCount
	if req.Interval == plan.IntervalYearly {
		totalCount = yearlyTotalCount
	}

	body := createSubscriptionRequest{
		PlanID:         req.ProcessorPlanID,
		TotalCount:     totalCount,
		CustomerNotify: 1,
		Notes: map[string]string{
			"user_id": fmt.Sprintf("%d", req.UserID),
			"plan":    req.Plan.String(),
		},
	}

	var resp subscriptionResponse
	if err := c.do(ctx, http.MethodPost, "/subscriptions", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create remote subscription: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("processor returned subscription without id")
	}

	c.logger.Infow("remote subscription created",
		"subscription_id", resp.ID,
		"user_id", req.UserID,
		"plan", req.Plan,
		"status", resp.Status,
	)

	return &usecases.RemoteSubscription{
		ID:       resp.ID,
		Status:   resp.Status,
		ShortURL: resp.ShortURL,
	}, nil
}

func (c *RazorpayClient) CancelSubscription(ctx context.Context, externalID string) error {
	path := "/subscriptions/" + url.PathEscape(externalID) + "/cancel"

	var resp subscriptionResponse
	if err := c.do(ctx, http.MethodPost, path, cancelSubscriptionRequest{CancelAtCycleEnd: 0}, &resp); err != nil {
		return fmt.Errorf("failed to cancel remote subscription %s: %w", externalID, err)
	}

	c.logger.Infow("remote subscription cancelled",
		"subscription_id", externalID,
		"status", resp.Status,
	)
	return nil
}

func (c *RazorpayClient) do(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("unexpected status code %d: %s: %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Description)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
