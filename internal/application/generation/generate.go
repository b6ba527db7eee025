// Package generation gates AI content generation on the user's quota and
// meters what was produced.
package generation

import (
	"context"
	"strings"

	"github.com/postforge/postforge/internal/application/entitlement"
	"github.com/postforge/postforge/internal/domain/usage"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/services/contentformat"
)

const (
	OutcomeGenerated = "generated"
	OutcomeDenied    = "denied"
	OutcomeFailed    = "failed"

	maxPromptLength  = 4000
	defaultMaxTokens = 600
)

type GenerateContentCommand struct {
	UserID    uint
	Kind      string
	Prompt    string
	Tone      string
	MaxTokens int
}

// GenerateContentResult carries either the content or the denial. A denial
// is not an error.
type GenerateContentResult struct {
	Allowed     bool                 `json:"allowed"`
	Decision    entitlement.Decision `json:"decision"`
	Content     string               `json:"content,omitempty"`
	PreviewHTML string               `json:"preview_html,omitempty"`
	Model       string               `json:"model,omitempty"`
	TokensUsed  uint64               `json:"tokens_used"`
	// Remaining is the allowance left after this generation.
	Remaining uint64 `json:"remaining"`
}

type GenerateContentUseCase struct {
	guard     Authorizer
	provider  ContentProvider
	usage     UsageRecorder
	formatter contentformat.Formatter
	observer  Observer
	logger    logger.Interface
}

// NewGenerateContentUseCase accepts a nil observer.
func NewGenerateContentUseCase(
	guard Authorizer,
	provider ContentProvider,
	recorder UsageRecorder,
	formatter contentformat.Formatter,
	observer Observer,
	logger logger.Interface,
) *GenerateContentUseCase {
	return &GenerateContentUseCase{
		guard:     guard,
		provider:  provider,
		usage:     recorder,
		formatter: formatter,
		observer:  observer,
		logger:    logger,
	}
}

func (uc *GenerateContentUseCase) Execute(ctx context.Context, cmd GenerateContentCommand) (*GenerateContentResult, error) {
	kind, err := usage.ParseKind(cmd.Kind)
	if err != nil {
		return nil, apperrors.NewValidationError("kind must be post or comment", cmd.Kind)
	}
	prompt := strings.TrimSpace(cmd.Prompt)
	if prompt == "" {
		return nil, apperrors.NewValidationError("prompt is required")
	}
	if len(prompt) > maxPromptLength {
		return nil, apperrors.NewValidationError("prompt is too long")
	}
	maxTokens := cmd.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	decision := uc.guard.Authorize(ctx, cmd.UserID, kind)
	if !decision.Allowed {
		uc.observe(kind, OutcomeDenied)
		return &GenerateContentResult{Decision: decision, Remaining: decision.Remaining}, nil
	}

	content, err := uc.provider.Generate(ctx, GenerateRequest{
		Kind:      kind,
		Prompt:    prompt,
		Tone:      cmd.Tone,
		MaxTokens: maxTokens,
	})
	if err != nil {
		uc.observe(kind, OutcomeFailed)
		uc.logger.Errorw("content provider failed", "error", err, "user_id", cmd.UserID, "kind", kind)
		return nil, apperrors.NewUpstreamError("content generation failed")
	}

	text := uc.formatter.PlainText(content.Text)
	preview, err := uc.formatter.PreviewHTML(text)
	if err != nil {
		uc.logger.Warnw("failed to render preview", "error", err, "user_id", cmd.UserID)
	}

	remaining := decision.Remaining
	if remaining > 0 {
		remaining--
	}
	// The user already has the content; a metering failure is logged, not
	// surfaced.
	if _, err := uc.usage.Increment(ctx, cmd.UserID, kind, content.TokensUsed); err != nil {
		uc.logger.Errorw("failed to record usage after generation",
			"error", err,
			"user_id", cmd.UserID,
			"kind", kind,
			"tokens", content.TokensUsed,
		)
	}

	uc.observe(kind, OutcomeGenerated)
	uc.logger.Infow("content generated",
		"user_id", cmd.UserID,
		"kind", kind,
		"plan", decision.Plan,
		"tokens", content.TokensUsed,
		"model", content.Model,
	)

	return &GenerateContentResult{
		Allowed:     true,
		Decision:    decision,
		Content:     text,
		PreviewHTML: preview,
		Model:       content.Model,
		TokensUsed:  content.TokensUsed,
		Remaining:   remaining,
	}, nil
}

func (uc *GenerateContentUseCase) observe(kind usage.Kind, outcome string) {
	if uc.observer != nil {
		uc.observer.ObserveGeneration(kind, outcome)
	}
}
