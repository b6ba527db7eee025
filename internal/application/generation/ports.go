package generation

import (
	"context"

	"github.com/postforge/postforge/internal/application/entitlement"
	"github.com/postforge/postforge/internal/domain/usage"
)

type GenerateRequest struct {
	Kind      usage.Kind
	Prompt    string
	Tone      string
	MaxTokens int
}

type GeneratedContent struct {
	Text       string
	TokensUsed uint64
	Model      string
}

// ContentProvider is the AI text generation backend.
type ContentProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedContent, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, userID uint, kind usage.Kind) entitlement.Decision
}

type UsageRecorder interface {
	Increment(ctx context.Context, userID uint, kind usage.Kind, tokens uint64) (*usage.Record, error)
}

// Observer receives the outcome of every generation request.
type Observer interface {
	ObserveGeneration(kind usage.Kind, outcome string)
}
