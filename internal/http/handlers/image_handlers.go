package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/watermark-bot/internal/config"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/internal/services/queue"
	"github.com/phambaophuc/watermark-bot/internal/services/storage"
	"github.com/phambaophuc/watermark-bot/internal/services/watermark"
	"go.uber.org/zap"
)

const (
	maxCacheAge    = 3600
	imageParamKey  = "image"
	imagesParamKey = "images"
	maxBatchImages = 20
)

type ImageHandler struct {
	watermark *watermark.Service
	storage   *storage.StorageService
	queue     *queue.QueueService
	logger    *zap.Logger
	config    *config.Config
}

// NewImageHandler builds the handler. storage and queue may be nil when the
// backing services are unavailable; the dependent endpoints then answer 503.
func NewImageHandler(
	watermark *watermark.Service,
	storage *storage.StorageService,
	queue *queue.QueueService,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		watermark: watermark,
		storage:   storage,
		queue:     queue,
		logger:    logger,
		config:    config,
	}
}

// === MAIN API ENDPOINTS ===

func (h *ImageHandler) Watermark(c *gin.Context) {
	data, header, err := h.readUploadedFile(c, imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.parseWatermarkParams(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.processAndRespond(c, data, header.Filename, req)
}

func (h *ImageHandler) BatchWatermark(c *gin.Context) {
	files, err := h.parseMultipartFiles(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.parseWatermarkParams(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	inputs, err := h.readFiles(files)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	spec := h.watermark.BuildSpec(*req)
	images := h.watermark.Processor().BatchApply(inputs, spec)
	response := h.buildBatchResponse(c.Request.Context(), images, files)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    response,
	})
}

func (h *ImageHandler) CreateJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}

	var req models.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid job request: "+err.Error())
		return
	}

	job := queue.NewJob(req)
	if err := h.queue.PublishJob(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to publish job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to queue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

func (h *ImageHandler) GetJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}

	job, err := h.queue.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to load job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to load job")
		return
	}
	if job == nil {
		h.respondError(c, http.StatusNotFound, "Job not found")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

func (h *ImageHandler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.watermark.Resolver().Styles(),
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{
		"queue": h.queue.HealthCheck(),
	}
	if h.storage != nil {
		for k, v := range h.storage.HealthCheck(c.Request.Context()) {
			services[k] = v
		}
	} else {
		services["storage"] = "not configured"
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now(),
	}

	if h.storage != nil {
		cacheStats, err := h.storage.GetCacheStats(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to get cache stats", zap.Error(err))
		}
		stats["cache"] = cacheStats
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
		}
		stats["queue"] = queueStats
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
