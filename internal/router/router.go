package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/http/handlers"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/provider"

	"github.com/gin-gonic/gin"
)

// Setup builds the HTTP engine with all routes and middleware.
func Setup(cfg *config.Config, container *provider.Container) *gin.Engine {
	if strings.EqualFold(cfg.Server.Mode, "release") {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggerMiddleware(logger.Z()),
		CORSMiddleware(cfg.CORS),
	)

	handler := handlers.NewHandler(container)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := engine.Group("/api")
	{
		api.GET("/captcha", handler.CaptchaChallenge)

		loginLimit := RateLimitMiddleware(cache.Client(), RateLimitRule{
			Prefix:        "ratelimit:login",
			WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
			MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		}, KeyByIPAndJSONField("email"))
		api.POST("/auth/login", loginLimit, handler.Login)

		authed := api.Group("", AuthMiddleware(container.AuthService))
		{
			authed.GET("/auth/profile", handler.Profile)

			giftCards := authed.Group("/gift-card")
			{
				giftCards.POST("/use", handler.UseGiftCard)
				giftCards.GET("/:code", handler.GetGiftCard)

				giftCards.POST("/issue", RequireAdmin(), handler.IssueGiftCard)
				giftCards.DELETE("/dispose", RequireAdmin(), handler.DisposeGiftCard)
				giftCards.GET("", RequireAdmin(), handler.ListGiftCards)
				giftCards.GET("/:code/events", RequireAdmin(), handler.ListGiftCardEvents)
			}
		}
	}

	return engine
}
