package handlers

import "context"

type ingestWebhookUseCase interface {
	Execute(ctx context.Context, rawBody []byte, signature string) error
}
