package http

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/application/entitlement"
	"github.com/postforge/postforge/internal/application/generation"
	offerUsecases "github.com/postforge/postforge/internal/application/offer/usecases"
	paymentUsecases "github.com/postforge/postforge/internal/application/payment/usecases"
	subscriptionUsecases "github.com/postforge/postforge/internal/application/subscription/usecases"
	"github.com/postforge/postforge/internal/application/usage"
	"github.com/postforge/postforge/internal/infrastructure/ai"
	"github.com/postforge/postforge/internal/infrastructure/auth"
	"github.com/postforge/postforge/internal/infrastructure/cache"
	"github.com/postforge/postforge/internal/infrastructure/config"
	"github.com/postforge/postforge/internal/infrastructure/email"
	"github.com/postforge/postforge/internal/infrastructure/metrics"
	infraPayment "github.com/postforge/postforge/internal/infrastructure/payment"
	"github.com/postforge/postforge/internal/infrastructure/permission"
	"github.com/postforge/postforge/internal/infrastructure/plancatalog"
	"github.com/postforge/postforge/internal/infrastructure/ratelimit"
	"github.com/postforge/postforge/internal/interfaces/http/handlers"
	"github.com/postforge/postforge/internal/interfaces/http/middleware"
	"github.com/postforge/postforge/internal/shared/db"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/services/contentformat"
)

// ============================================================
// Section 1: Infrastructure - Redis, catalog, metrics, repositories
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg

	if cfg.Redis.Enabled {
		client, err := initRedis(cfg, c.log)
		if err != nil {
			return err
		}
		c.redis = client
	} else {
		c.log.Warnw("redis disabled, entitlement cache and generation rate limit are off")
	}

	catalog, err := plancatalog.LoadFile(cfg.Plans.CatalogPath, cfg.Plans.DefaultTier)
	if err != nil {
		return fmt.Errorf("failed to load plan catalog: %w", err)
	}
	c.catalog = catalog

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.metrics = metrics.New(c.registry)

	c.repos = newRepositories(c.db, c.clock, c.log)
	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}

// ============================================================
// Section 2: Auth & permission
// ============================================================

func (c *Container) initAuth() error {
	cfg := c.cfg

	verifier := auth.NewJWTVerifier(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, c.clock)
	c.authMiddleware = middleware.NewAuthMiddleware(verifier, c.log.Named("auth"))

	enforcer, err := permission.NewEnforcer(c.db, cfg.Permission.ModelPath, c.log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := permission.InitAllPermissions(enforcer, cfg.Permission.AdminUserIDs, c.log); err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}
	c.enforcer = enforcer
	c.permissionMiddleware = middleware.NewPermissionMiddleware(enforcer, c.log.Named("permission"))

	if c.redis != nil {
		limiter := ratelimit.NewRedisRateLimiter(c.redis, c.clock)
		c.generationLimiter = middleware.NewRateLimiter(limiter, "generations", ratelimit.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.GenerationsPerMinute,
			RequestsPerHour:   cfg.RateLimit.GenerationsPerHour,
		}, c.log.Named("ratelimit"))
	}
	return nil
}

// ============================================================
// Section 3: Usage, entitlement and generation
// ============================================================

// planCache returns nil when Redis is disabled so the resolver reads the
// store directly.
func (c *Container) planCache() *cache.RedisEntitlementCache {
	if c.redis == nil {
		return nil
	}
	return cache.NewRedisEntitlementCache(c.redis, c.log.Named("entitlement-cache"))
}

func (c *Container) initUsage() {
	c.ucs = &allUseCases{}
	ucs := c.ucs
	log := c.log

	ucs.tracker = usage.NewTracker(c.repos.usageRepo, c.clock, log.Named("usage"))

	var planCache entitlement.PlanCache
	if pc := c.planCache(); pc != nil {
		planCache = pc
	}
	ucs.planResolver = entitlement.NewPlanResolver(c.repos.userPlanRepo, c.repos.subscriptionRepo, c.catalog, planCache, c.clock, log.Named("entitlement"))
	ucs.quotaGuard = entitlement.NewQuotaGuard(ucs.planResolver, c.catalog, ucs.tracker, c.metrics, log.Named("quota"))
	ucs.usageReporter = usage.NewReporter(ucs.tracker, ucs.planResolver)

	provider := ai.NewOpenAIProvider(ai.Config{
		BaseURL:     c.cfg.AI.BaseURL,
		APIKey:      c.cfg.AI.APIKey,
		Model:       c.cfg.AI.Model,
		Temperature: c.cfg.AI.Temperature,
		Timeout:     c.cfg.AI.Timeout(),
	}, log.Named("ai"))
	ucs.generateUC = generation.NewGenerateContentUseCase(ucs.quotaGuard, provider, ucs.tracker, contentformat.NewFormatter(), c.metrics, log.Named("generation"))
}

// ============================================================
// Section 4: Subscription lifecycle and payment webhooks
// ============================================================

func (c *Container) initSubscription() {
	cfg := c.cfg
	ucs := c.ucs
	log := c.log.Named("subscription")
	repos := c.repos

	txManager := db.NewTransactionManager(c.db)
	gateway := infraPayment.NewRazorpayClient(infraPayment.ClientConfig{
		BaseURL:   cfg.Payment.BaseURL,
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
		Timeout:   cfg.Payment.Timeout(),
	}, c.log.Named("payment"))

	var invalidator subscriptionUsecases.EntitlementInvalidator
	if pc := c.planCache(); pc != nil {
		invalidator = pc
	}

	var notifier subscriptionUsecases.ReceiptNotifier
	if cfg.Email.Enabled {
		notifier = email.NewSMTPReceiptNotifier(email.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUser,
			Password:    cfg.Email.SMTPPassword,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
		})
	}

	ucs.createSubscriptionUC = subscriptionUsecases.NewCreateSubscriptionUseCase(repos.subscriptionRepo, repos.userPlanRepo, c.catalog, gateway, txManager, invalidator, c.clock, log)
	ucs.cancelSubscriptionUC = subscriptionUsecases.NewCancelSubscriptionUseCase(repos.subscriptionRepo, repos.userPlanRepo, c.catalog, gateway, txManager, invalidator, c.clock, log)
	ucs.upgradeSubscriptionUC = subscriptionUsecases.NewUpgradeSubscriptionUseCase(repos.subscriptionRepo, ucs.cancelSubscriptionUC, ucs.createSubscriptionUC, log)
	ucs.getCurrentSubscriptionUC = subscriptionUsecases.NewGetCurrentSubscriptionUseCase(repos.subscriptionRepo, c.clock, log)
	ucs.handleChargedUC = subscriptionUsecases.NewHandleChargedUseCase(repos.subscriptionRepo, repos.userPlanRepo, c.catalog, txManager, invalidator, notifier, c.clock, log)
	ucs.handleCancelledUC = subscriptionUsecases.NewHandleCancelledUseCase(repos.subscriptionRepo, repos.userPlanRepo, c.catalog, txManager, invalidator, c.clock, log)
	ucs.handlePausedUC = subscriptionUsecases.NewHandlePausedUseCase(repos.subscriptionRepo, repos.userPlanRepo, c.catalog, txManager, invalidator, c.clock, log)

	ucs.ingestWebhookUC = paymentUsecases.NewIngestWebhookUseCase(
		infraPayment.NewHMACVerifier(cfg.Payment.WebhookSecret),
		ucs.handleChargedUC,
		ucs.handleCancelledUC,
		ucs.handlePausedUC,
		c.metrics,
		c.log.Named("webhook"),
	)
}

// ============================================================
// Section 5: Offers
// ============================================================

func (c *Container) initOffers() {
	ucs := c.ucs
	log := c.log.Named("offer")
	offerRepo := c.repos.offerRepo

	ucs.validateOfferUC = offerUsecases.NewValidateOfferUseCase(offerRepo, c.metrics, c.clock, log)
	ucs.calculateDiscountUC = offerUsecases.NewCalculateDiscountUseCase(ucs.validateOfferUC)
	ucs.applyOfferUC = offerUsecases.NewApplyOfferUseCase(offerRepo, db.NewTransactionManager(c.db), c.metrics, c.clock, log)
	ucs.createOfferUC = offerUsecases.NewCreateOfferUseCase(offerRepo, c.clock, log)
	ucs.listOffersUC = offerUsecases.NewListOffersUseCase(offerRepo, log)
	ucs.deactivateOfferUC = offerUsecases.NewDeactivateOfferUseCase(offerRepo, c.clock, log)
}

// ============================================================
// Section 6: Handlers
// ============================================================

func (c *Container) initHandlers() {
	ucs := c.ucs
	log := c.log.Named("http")

	checkers := []handlers.HealthChecker{databaseHealth{c.db}}
	if c.redis != nil {
		checkers = append(checkers, redisHealth{c.redis})
	}

	c.hdlrs = &allHandlers{
		healthHandler:       handlers.NewHealthHandler(log, checkers...),
		usageHandler:        handlers.NewUsageHandler(ucs.usageReporter, log),
		generationHandler:   handlers.NewGenerationHandler(ucs.generateUC, log),
		subscriptionHandler: handlers.NewSubscriptionHandler(ucs.createSubscriptionUC, ucs.upgradeSubscriptionUC, ucs.cancelSubscriptionUC, ucs.getCurrentSubscriptionUC, log),
		webhookHandler:      handlers.NewWebhookHandler(ucs.ingestWebhookUC, log),
		offerHandler:        handlers.NewOfferHandler(ucs.validateOfferUC, ucs.calculateDiscountUC, ucs.applyOfferUC, log),
		adminOfferHandler:   handlers.NewAdminOfferHandler(ucs.createOfferUC, ucs.listOffersUC, ucs.deactivateOfferUC, log),
	}
}

type databaseHealth struct{ db *gorm.DB }

func (databaseHealth) Name() string { return "database" }

func (h databaseHealth) Ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type redisHealth struct{ client *redis.Client }

func (redisHealth) Name() string { return "redis" }

func (h redisHealth) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
