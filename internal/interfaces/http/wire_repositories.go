package http

import (
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/infrastructure/repository"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
// Types match the return types of the repository constructors.
type repositories struct {
	usageRepo        usage.Repository
	subscriptionRepo subscription.Repository
	userPlanRepo     plan.UserPlanRepository
	offerRepo        offer.Repository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, clk clock.Clock, log logger.Interface) *repositories {
	return &repositories{
		usageRepo:        repository.NewUsageRecordRepository(db, clk, log),
		subscriptionRepo: repository.NewSubscriptionRepository(db, log),
		userPlanRepo:     repository.NewUserPlanRepository(db, log),
		offerRepo:        repository.NewOfferRepository(db, log),
	}
}
