package http

import (
	"github.com/postforge/postforge/internal/application/entitlement"
	"github.com/postforge/postforge/internal/application/generation"
	offerUsecases "github.com/postforge/postforge/internal/application/offer/usecases"
	paymentUsecases "github.com/postforge/postforge/internal/application/payment/usecases"
	subscriptionUsecases "github.com/postforge/postforge/internal/application/subscription/usecases"
	"github.com/postforge/postforge/internal/application/usage"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Usage & entitlement
	tracker       *usage.Tracker
	usageReporter *usage.Reporter
	planResolver  *entitlement.PlanResolver
	quotaGuard    *entitlement.QuotaGuard
	generateUC    *generation.GenerateContentUseCase

	// Subscription
	createSubscriptionUC     *subscriptionUsecases.CreateSubscriptionUseCase
	upgradeSubscriptionUC    *subscriptionUsecases.UpgradeSubscriptionUseCase
	cancelSubscriptionUC     *subscriptionUsecases.CancelSubscriptionUseCase
	getCurrentSubscriptionUC *subscriptionUsecases.GetCurrentSubscriptionUseCase
	handleChargedUC          *subscriptionUsecases.HandleChargedUseCase
	handleCancelledUC        *subscriptionUsecases.HandleCancelledUseCase
	handlePausedUC           *subscriptionUsecases.HandlePausedUseCase

	// Payment
	ingestWebhookUC *paymentUsecases.IngestWebhookUseCase

	// Offers
	validateOfferUC     *offerUsecases.ValidateOfferUseCase
	calculateDiscountUC *offerUsecases.CalculateDiscountUseCase
	applyOfferUC        *offerUsecases.ApplyOfferUseCase
	createOfferUC       *offerUsecases.CreateOfferUseCase
	listOffersUC        *offerUsecases.ListOffersUseCase
	deactivateOfferUC   *offerUsecases.DeactivateOfferUseCase
}
