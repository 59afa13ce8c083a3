// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ailibrary/prompts-backend/internal/cache"
	"github.com/ailibrary/prompts-backend/internal/config"
	"github.com/ailibrary/prompts-backend/internal/handlers"
	"github.com/ailibrary/prompts-backend/internal/middleware"
	"github.com/ailibrary/prompts-backend/internal/paypal"
	"github.com/ailibrary/prompts-backend/internal/services"
)

// Setup wires services, handlers, and middleware into the HTTP surface.
func Setup(db *gorm.DB, cacheClient *cache.Cache, cfg *config.Config) (*gin.Engine, error) {
	// Services
	notificationService := services.NewNotificationService(db, cfg)
	gateway := paypal.NewClient(cfg.PayPal)
	authService := services.NewAuthService(db, cfg)
	catalogService := services.NewCatalogService(db, cacheClient)
	checkoutService := services.NewCheckoutService(db, gateway, cfg, notificationService)
	sellerService := services.NewSellerService(db, cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService, storageService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	sellerHandler := handlers.NewSellerHandler(sellerService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}
		v1.GET("/auth/me", middleware.AuthRequired(), authHandler.Me)

		prompts := v1.Group("/prompts")
		{
			prompts.GET("", middleware.OptionalAuth(), productHandler.ListProducts)
			prompts.GET("/popular", productHandler.GetPopularProducts)
			prompts.GET("/featured", productHandler.GetFeaturedProducts)
			prompts.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			prompts.POST("", middleware.AuthRequired(), productHandler.CreateProduct)
			prompts.POST("/:id/reviews", middleware.AuthRequired(), productHandler.AddReview)
			prompts.POST("/upload-images", middleware.AuthRequired(), middleware.UploadRateLimit(), productHandler.UploadImages)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(middleware.AuthRequired(), middleware.CheckoutRateLimit())
		{
			checkout.POST("/create-order", checkoutHandler.CreateOrder)
			checkout.POST("/capture-order", checkoutHandler.CaptureOrder)
		}

		v1.GET("/purchases", middleware.AuthRequired(), checkoutHandler.GetPurchases)

		sellers := v1.Group("/sellers")
		sellers.Use(middleware.AuthRequired())
		{
			sellers.GET("/profile", sellerHandler.GetProfile)
			sellers.POST("/profile", sellerHandler.CreateProfile)
			sellers.PUT("/profile", sellerHandler.UpdateProfile)
			sellers.GET("/dashboard", sellerHandler.GetDashboard)
			sellers.POST("/payouts", sellerHandler.RequestPayout)
		}
	}

	return r, nil
}
