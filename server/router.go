package server

import (
	"time"

	httpHandler "video-publisher/interfaces/http"
	"video-publisher/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	corsOrigins []string,
	secretKey string,
	mediaHandler httpHandler.IMediaHandler,
	publishHandler httpHandler.IPublishHandler,
	dailymotionAuthHandler httpHandler.IDailymotionAuthHandler,
	healthHandler httpHandler.IHealthHandler,
	stream gin.HandlerFunc,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/healthz", healthHandler.Healthz)
	router.GET("/healthz", healthHandler.Healthz)

	api := router.Group("api")
	api.Use(middleware.Auth(secretKey))

	api.GET("/platforms", publishHandler.Platforms)

	media := api.Group("/media")
	{
		media.POST("", mediaHandler.Create)
		media.GET("", mediaHandler.List)
		if stream != nil {
			media.GET("/stream", stream)
		}
		media.POST("/publish", publishHandler.PublishBatch)
		media.POST("/publish-pending", publishHandler.PublishPending)
		media.GET("/:id", mediaHandler.Get)
		media.PATCH("/:id", mediaHandler.Update)
		media.POST("/:id/publish", publishHandler.PublishOne)
	}

	// The callback is reached by the browser redirect from Dailymotion, so it carries no bearer token.
	if dailymotionAuthHandler != nil {
		api.GET("/dailymotion/login/:mediaId", dailymotionAuthHandler.Login)
		router.GET("/auth/dailymotion/callback", dailymotionAuthHandler.Callback)
	}

	return router
}
