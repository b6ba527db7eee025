package usecases

import "context"

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OfferObserver receives validation and redemption outcomes.
type OfferObserver interface {
	ObserveOfferEvaluation(operation string, valid bool, reason string)
}

const (
	operationValidate = "validate"
	operationApply    = "apply"
)
