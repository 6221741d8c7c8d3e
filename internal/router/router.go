// internal/router/router.go
package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/config"
	"github.com/javajoker/fashion-storefront/internal/handlers"
	"github.com/javajoker/fashion-storefront/internal/middleware"
	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

// Dependencies are the optional external systems. A nil Revoker falls back
// to the database; a nil Publisher disables order events.
type Dependencies struct {
	Revoker   services.TokenRevoker
	Publisher services.EventPublisher
}

// Router is the HTTP handler together with the background work it owns.
type Router struct {
	*gin.Engine

	orderService *services.OrderService
	limiters     []*middleware.RateLimiter
}

// Close stops the rate limiter cleanup loops and waits for pending order
// events. Call it after the HTTP server has stopped accepting requests.
func (r *Router) Close(ctx context.Context) error {
	for _, limiter := range r.limiters {
		limiter.Stop()
	}
	return r.orderService.Wait(ctx)
}

func Initialize(db *gorm.DB, cfg *config.Config, deps Dependencies) (*Router, error) {
	shipping, err := shippingPolicy(cfg.Shipping)
	if err != nil {
		return nil, err
	}

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	revoker := deps.Revoker
	if revoker == nil {
		revoker = services.NewDBRevoker(db)
	}

	utils.SetBcryptCost(cfg.Security.BcryptCost)
	tokens := utils.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TokenTTL).WithIssuer(cfg.JWT.Issuer)

	// Initialize services
	userService := services.NewUserService(db)
	authService := services.NewAuthService(userService, tokens, revoker)
	categoryService := services.NewCategoryService(db)
	productService := services.NewProductService(db)
	orderService := services.NewOrderService(db, shipping, deps.Publisher)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction() || cfg.Security.CookieSecure)
	productHandler := handlers.NewProductHandler(productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	orderHandler := handlers.NewOrderHandler(orderService)
	uploadHandler := handlers.NewUploadHandler(storageService)
	adminHandler := handlers.NewAdminHandler(adminService)

	r := gin.New()
	app := &Router{Engine: r, orderService: orderService}

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	if cfg.Observability.MetricsEnabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if cfg.RateLimit.Enabled {
		general := middleware.PerSecond(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
		app.limiters = append(app.limiters, general)
		r.Use(general.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
		})
	})

	customerRequired := middleware.CustomerRequired(authService)
	adminOnly := []gin.HandlerFunc{middleware.AdminRequired(authService), middleware.AuditLog(db)}

	// Authentication routes
	auth := r.Group("/auth")
	if cfg.RateLimit.Enabled {
		authLimiter := middleware.PerMinute(cfg.RateLimit.AuthPerMin, cfg.RateLimit.AuthBurst)
		app.limiters = append(app.limiters, authLimiter)
		auth.Use(authLimiter.Middleware())
	}
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", customerRequired, authHandler.Me)

		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.POST("/admin/logout", authHandler.AdminLogout)
		auth.GET("/admin/me", middleware.AdminRequired(authService), authHandler.Me)
	}

	// Catalog routes
	products := r.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)

		admin := products.Group("", adminOnly...)
		admin.POST("", productHandler.CreateProduct)
		admin.PUT("/:id", productHandler.UpdateProduct)
		admin.DELETE("/:id", productHandler.DeleteProduct)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:id", categoryHandler.GetCategory)

		admin := categories.Group("", adminOnly...)
		admin.POST("", categoryHandler.CreateCategory)
		admin.PUT("/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/:id", categoryHandler.DeleteCategory)
	}

	// Checkout and order history
	orders := r.Group("/orders")
	{
		orders.POST("", middleware.OptionalAuth(authService), orderHandler.PlaceOrder)
		orders.GET("", customerRequired, orderHandler.GetOrders)
		orders.GET("/:id", customerRequired, orderHandler.GetOrder)
	}

	// Image uploads
	r.POST("/uploads", append(adminOnly, uploadHandler.UploadImage)...)
	if !storageService.UsesS3() {
		r.Static("/uploads", cfg.Storage.UploadDir)
	}

	// Admin dashboard
	admin := r.Group("/admin", middleware.AdminRequired(authService))
	{
		admin.GET("/stats", adminHandler.GetDashboardStats)
		admin.GET("/audit-logs", adminHandler.GetAuditLogs)
	}

	return app, nil
}

func shippingPolicy(cfg config.ShippingConfig) (services.ShippingPolicy, error) {
	flatRate, err := decimal.NewFromString(cfg.FlatRate)
	if err != nil {
		return services.ShippingPolicy{}, fmt.Errorf("invalid shipping flat rate %q: %w", cfg.FlatRate, err)
	}
	threshold, err := decimal.NewFromString(cfg.FreeThreshold)
	if err != nil {
		return services.ShippingPolicy{}, fmt.Errorf("invalid free shipping threshold %q: %w", cfg.FreeThreshold, err)
	}
	return services.ShippingPolicy{FlatRate: flatRate, FreeThreshold: threshold}, nil
}
