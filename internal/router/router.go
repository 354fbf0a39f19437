package router

import (
	"time"

	"pawhome/config"
	"pawhome/internal/handler"
	"pawhome/internal/middleware"
	"pawhome/internal/repository"
	"pawhome/internal/service"
	"pawhome/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo)
	adoptionSvc := service.NewAdoptionService(listingRepo, requestRepo, cloud, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	listingHandler := handler.NewListingHandler(listingRepo, adoptionSvc)
	requestHandler := handler.NewRequestHandler(requestRepo, listingRepo, adoptionSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	uploadHandler := handler.NewUploadHandler(cloud)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		listings := api.Group("/listings")
		listings.Use(authMw)
		{
			listings.GET("", listingHandler.List)
			listings.POST("", listingHandler.Create)
			listings.GET("/:id", listingHandler.Get)
			listings.PATCH("/:id", listingHandler.Update)
			listings.DELETE("/:id", listingHandler.Delete)
			listings.POST("/:id/requests", requestHandler.Submit)
			listings.DELETE("/:id/requests", requestHandler.Cancel)
			listings.GET("/:id/requests", requestHandler.ListForListing)
		}

		api.POST("/requests/:id/approve", authMw, requestHandler.Approve)
		api.POST("/requests/:id/reject", authMw, requestHandler.Reject)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/listings", listingHandler.ListMine)
			me.GET("/requests", requestHandler.ListMine)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.POST("/upload/listing", authMw, uploadHandler.UploadListingImage)
	}

	return r
}
