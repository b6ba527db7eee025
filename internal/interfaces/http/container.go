package http

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/infrastructure/config"
	"github.com/postforge/postforge/internal/infrastructure/metrics"
	"github.com/postforge/postforge/internal/infrastructure/permission"
	"github.com/postforge/postforge/internal/interfaces/http/middleware"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases and
// handlers. It is responsible for wiring everything together and providing a
// Shutdown() method for graceful termination.
type Container struct {
	// Core infrastructure
	engine   *gin.Engine
	db       *gorm.DB
	cfg      *config.Config
	log      logger.Interface
	redis    *redis.Client
	clock    clock.Clock
	catalog  plan.Catalog
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	enforcer *permission.Enforcer

	// Repositories
	repos *repositories

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	generationLimiter    *middleware.RateLimiter
}

// NewContainer creates a new Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		clock:  clock.System(),
	}

	// Section 1: Infrastructure - Redis, catalog, metrics, repositories
	if err := c.initInfrastructure(); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 2: Auth & permission
	if err := c.initAuth(); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 3: Usage, entitlement and generation
	c.initUsage()

	// Section 4: Subscription lifecycle and payment webhooks
	c.initSubscription()

	// Section 5: Offers
	c.initOffers()

	// Section 6: Handlers
	c.initHandlers()

	return c, nil
}

// Engine returns the gin engine routes are registered on.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Registry returns the Prometheus registry served on /metrics.
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Shutdown releases the connections owned by the container. The database
// handle belongs to the caller.
func (c *Container) Shutdown() {
	var errs []error
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.log.Errorw("container shutdown finished with errors", "error", err)
		return
	}
	c.log.Infow("container shut down")
}
