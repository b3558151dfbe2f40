package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finmetrics/portfolio-api/internal/logging"
	"github.com/finmetrics/portfolio-api/internal/server/models"
)

// UserFacade is everything the router needs from the user service.
type UserFacade interface {
	AuthService
	UserAdminService
	TokenVerifier
	RoleSource
}

// Services bundles the dependencies of the HTTP layer.
type Services struct {
	Users      UserFacade
	Portfolios PortfolioService
	Securities SecurityService
	Metrics    MetricService
	Quotes     QuoteService
}

// NewRouter builds the gin engine with all API routes mounted under /api/v1.
func NewRouter(s Services, log logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	authHandler := NewAuthHandler(s.Users)
	userHandler := NewUserHandler(s.Users)
	portfolioHandler := NewPortfolioHandler(s.Portfolios)
	securityHandler := NewSecurityHandler(s.Securities, s.Quotes)
	metricHandler := NewMetricHandler(s.Metrics)

	r.GET("/", func(c *gin.Context) {
		respondSuccess(c, http.StatusOK, "Portfolio API", gin.H{"docs": "/api/v1"})
	})
	r.GET("/health", func(c *gin.Context) {
		respondSuccess(c, http.StatusOK, "healthy", nil)
	})

	v1 := r.Group("/api/v1")

	// Public routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Protected routes
	api := v1.Group("")
	api.Use(Authenticate(s.Users))
	{
		api.GET("/auth/verify", authHandler.Verify)
		api.GET("/auth/me", authHandler.Me)

		portfolios := api.Group("/portfolios")
		{
			portfolios.GET("", portfolioHandler.List)
			portfolios.POST("", portfolioHandler.Create)
			portfolios.GET("/:portfolio_id", portfolioHandler.Get)
			portfolios.PUT("/:portfolio_id", portfolioHandler.Update)
			portfolios.DELETE("/:portfolio_id", portfolioHandler.Delete)
		}

		// /securities is a legacy alias for /instruments
		for _, prefix := range []string{"/instruments", "/securities"} {
			instruments := api.Group(prefix)

			instruments.GET("", securityHandler.List)
			instruments.POST("", securityHandler.Create)
			instruments.GET("/price/:symbol", securityHandler.Price)
			instruments.GET("/:symbol", securityHandler.Get)
			instruments.PUT("/:symbol", securityHandler.Update)
			instruments.DELETE("/:symbol", securityHandler.Delete)
		}

		metrics := api.Group("/metrics")
		{
			metrics.GET("", metricHandler.List)
			metrics.POST("", metricHandler.Create)
			metrics.GET("/portfolio/:portfolio_id/summary", metricHandler.Summary)
			metrics.GET("/:metric_id", metricHandler.Get)
			metrics.DELETE("/:metric_id", metricHandler.Delete)
		}
	}

	// Admin-only routes
	admin := v1.Group("/users")
	admin.Use(Authenticate(s.Users))
	admin.Use(RequireRole(s.Users, models.RoleAdmin))
	{
		admin.GET("", userHandler.List)
		admin.DELETE("/:user_id", userHandler.Delete)
	}

	return r
}
