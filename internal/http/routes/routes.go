package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/watermark-bot/internal/http/handlers"
	"github.com/phambaophuc/watermark-bot/internal/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	logger       *zap.Logger
	maxBodySize  int64
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
	maxBodySize int64,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		logger:       logger,
		maxBodySize:  maxBodySize,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)
		v1.GET("/styles", r.imageHandler.ListStyles)

		wm := v1.Group("/watermark")
		{
			upload := []gin.HandlerFunc{middleware.LimitBody(r.maxBodySize), middleware.RequireMultipart()}

			wm.POST("", append(upload, r.imageHandler.Watermark)...)
			wm.POST("/batch", append(upload, r.imageHandler.BatchWatermark)...)
			wm.POST("/jobs", r.imageHandler.CreateJob)
			wm.GET("/jobs/:id", r.imageHandler.GetJob)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Watermark service is running",
		})
	})

	return router
}
