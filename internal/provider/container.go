package provider

import (
	"github.com/giftvault/internal/authz"
	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"
)

// Container wires repositories and services once at startup.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AccountRepo  repository.AccountRepository
	GiftCardRepo repository.GiftCardRepository
	EventLogRepo repository.GiftCardEventLogRepository

	// Services
	AuthzService    *authz.Service
	TokenService    *service.TokenService
	AuthService     *service.AuthService
	CaptchaService  *service.CaptchaService
	CodeGenerator   *service.CodeGenerator
	GiftCardService *service.GiftCardService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AccountRepo = repository.NewAccountRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
	c.EventLogRepo = repository.NewGiftCardEventLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.Bootstrap(); err != nil {
		logger.Errorw("provider_bootstrap_authz_policies_failed", "error", err)
		panic(err)
	}

	c.TokenService = service.NewTokenService(c.Config)
	c.AuthService = service.NewAuthService(c.Config, c.AccountRepo, c.TokenService, c.AuthzService)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.CodeGenerator = service.NewCodeGenerator(c.GiftCardRepo, c.Config.GiftCard.CodeMaxAttempts)
	c.GiftCardService = service.NewGiftCardService(
		c.Config,
		c.GiftCardRepo,
		c.EventLogRepo,
		c.CodeGenerator,
		c.AuthService,
		c.QueueClient,
	)
}
