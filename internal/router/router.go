package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nearbuy/nearbuy-backend/config"
	"github.com/nearbuy/nearbuy-backend/internal/app/controller"
	"github.com/nearbuy/nearbuy-backend/internal/middleware"
)

type Router struct {
	authController       *controller.AuthController
	merchantController   *controller.MerchantController
	dealController       *controller.DealController
	savedDealController  *controller.SavedDealController
	regionGateController *controller.RegionGateController
	uploadController     *controller.UploadController
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	merchantController *controller.MerchantController,
	dealController *controller.DealController,
	savedDealController *controller.SavedDealController,
	regionGateController *controller.RegionGateController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:       authController,
		merchantController:   merchantController,
		dealController:       dealController,
		savedDealController:  savedDealController,
		regionGateController: regionGateController,
		uploadController:     uploadController,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "NEARBUY API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		deals := v1.Group("/deals")
		{
			deals.GET("", r.dealController.ListDeals)
			deals.GET("/location", r.dealController.DiscoverDeals)
			deals.GET("/:id", r.dealController.GetDeal)

			deals.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.dealController.CreateDeal,
			)
			deals.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.dealController.UpdateDeal,
			)
			deals.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.dealController.DeleteDeal,
			)
			deals.POST("/:id/claim",
				r.authMiddleware.Authenticate(),
				r.dealController.ClaimDeal,
			)
			deals.POST("/:id/repost",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.dealController.RepostDeal,
			)
			deals.POST("/process-recurring",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.dealController.ProcessRecurring,
			)
		}

		claims := v1.Group("/claims")
		claims.Use(r.authMiddleware.Authenticate())
		{
			claims.GET("", r.dealController.ListMyClaims)
		}

		merchants := v1.Group("/merchants")
		{
			merchants.GET("", r.merchantController.ListMerchants)
			merchants.GET("/me",
				r.authMiddleware.Authenticate(),
				r.merchantController.ListMyMerchants,
			)
			merchants.GET("/:id", r.merchantController.GetMerchant)
			merchants.GET("/:id/deals", r.merchantController.ListMerchantDeals)

			merchants.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.merchantController.CreateMerchant,
			)
			merchants.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.merchantController.UpdateMerchant,
			)
			merchants.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.merchantController.DeactivateMerchant,
			)
			merchants.GET("/:id/redemptions.xlsx",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("merchant", "admin"),
				r.merchantController.ExportRedemptions,
			)
		}

		savedDeals := v1.Group("/saved-deals")
		savedDeals.Use(r.authMiddleware.Authenticate())
		{
			savedDeals.GET("", r.savedDealController.ListSavedDeals)
			savedDeals.POST("/:dealId", r.savedDealController.SaveDeal)
			savedDeals.DELETE("/:dealId", r.savedDealController.UnsaveDeal)
		}

		enabledStates := v1.Group("/enabled-states")
		{
			enabledStates.GET("", r.regionGateController.ListGates)
			enabledStates.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.regionGateController.SetGate,
			)
		}

		upload := v1.Group("/upload")
		upload.Use(
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("merchant", "admin"),
		)
		{
			upload.POST("/image", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
