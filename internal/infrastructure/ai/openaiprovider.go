// Package ai implements the content provider against an OpenAI-compatible
// chat completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/postforge/postforge/internal/application/generation"
	"github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/shared/logger"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
	// Maximum response body size (1MB)
	maxResponseSize = 1 << 20
)

var systemPrompts = map[usage.Kind]string{
	usage.KindPost: "You write LinkedIn posts. Write a single post ready to publish: " +
		"a strong opening line, short paragraphs, no hashtags unless asked. Markdown emphasis is allowed.",
	usage.KindComment: "You write LinkedIn comments. Write one concise, specific comment " +
		"that adds to the conversation. Plain text, at most three sentences.",
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIProvider implements generation.ContentProvider.
type OpenAIProvider struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	logger      logger.Interface
}

var _ generation.ContentProvider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(cfg Config, logger logger.Interface) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenAIProvider{
		client:      &http.Client{Timeout: timeout},
		endpoint:    strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req generation.GenerateRequest) (*generation.GeneratedContent, error) {
	system, ok := systemPrompts[req.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported content kind: %s", req.Kind)
	}
	if req.Tone != "" {
		system += " Use a " + req.Tone + " tone."
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp apiError
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d)", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("empty completion returned")
	}

	tokens := parsed.Usage.TotalTokens
	if tokens == 0 {
		tokens = parsed.Usage.PromptTokens + parsed.Usage.CompletionTokens
	}

	p.logger.Debugw("completion received",
		"kind", req.Kind,
		"model", parsed.Model,
		"tokens", tokens,
		"finish_reason", parsed.Choices[0].FinishReason,
		"duration", time.Since(start),
	)

	return &generation.GeneratedContent{
		Text:       text,
		TokensUsed: uint64(tokens),
		Model:      parsed.Model,
	}, nil
}
