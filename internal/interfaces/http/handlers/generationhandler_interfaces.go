package handlers

import (
	"context"

	"github.com/postforge/postforge/internal/application/generation"
)

type generateContentUseCase interface {
	Execute(ctx context.Context, cmd generation.GenerateContentCommand) (*generation.GenerateContentResult, error)
}
