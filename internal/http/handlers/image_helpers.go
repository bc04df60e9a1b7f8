package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/internal/services/processor"
	"github.com/phambaophuc/watermark-bot/pkg/utils"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

func (h *ImageHandler) parseWatermarkParams(c *gin.Context) (*models.WatermarkRequest, error) {
	var req models.WatermarkRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, fmt.Errorf("invalid watermark parameters: %v", err)
	}

	if req.Color != models.StyleNone {
		if _, ok := h.watermark.Resolver().Lookup(req.Color); !ok {
			return nil, fmt.Errorf("unknown color %q", req.Color)
		}
	}

	return &req, nil
}

func (h *ImageHandler) parseMultipartFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(h.config.Storage.MaxFileSize * 10); err != nil {
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}

	files := c.Request.MultipartForm.File[imagesParamKey]
	if len(files) == 0 {
		return nil, fmt.Errorf("no images provided")
	}
	if len(files) > maxBatchImages {
		return nil, fmt.Errorf("at most %d images per batch", maxBatchImages)
	}

	return files, nil
}

// === FILE OPERATIONS ===

func (h *ImageHandler) readUploadedFile(c *gin.Context, paramKey string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(paramKey)
	if err != nil {
		return nil, nil, errors.New("No image file provided")
	}
	defer file.Close()

	data, err := h.readLimited(file)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}

func (h *ImageHandler) readFiles(files []*multipart.FileHeader) ([][]byte, error) {
	inputs := make([][]byte, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %v", fh.Filename, err)
		}
		data, err := h.readLimited(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %v", fh.Filename, err)
		}
		inputs = append(inputs, data)
	}

	return inputs, nil
}

func (h *ImageHandler) readLimited(r io.Reader) ([]byte, error) {
	maxSize := h.config.Storage.MaxFileSize
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %v", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size %d", maxSize)
	}
	return data, nil
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *ImageHandler) respondWithImage(c *gin.Context, data []byte, spec models.WatermarkSpec) {
	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(maxCacheAge))
	c.Header("X-Watermark-Style", string(spec.Style.Key))
	c.Header("X-Watermark-Layout", string(spec.Layout))
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (h *ImageHandler) respondWithURL(c *gin.Context, data []byte, filename string, spec models.WatermarkSpec) {
	url, err := h.uploadToStorage(c.Request.Context(), data, filename)
	if err != nil {
		h.respondError(c, http.StatusBadGateway, "Failed to store watermarked image")
		return
	}

	width, height := 0, 0
	if img, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = img.Width, img.Height
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.ProcessedImage{
			ID:          uuid.New().String(),
			OriginalURL: filename,
			URL:         url,
			FileSize:    int64(len(data)),
			ProcessedAt: time.Now(),
			Width:       width,
			Height:      height,
			Style:       spec.Style.Key,
			Layout:      spec.Layout,
		},
	})
}

// === PROCESSING LOGIC ===

func (h *ImageHandler) processAndRespond(c *gin.Context, data []byte, filename string, req *models.WatermarkRequest) {
	if err := h.watermark.Processor().ValidateImage(data, h.config.Storage.MaxFileSize); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid image: %v", err))
		return
	}

	out, spec, err := h.watermark.Watermark(c.Request.Context(), data, *req)
	if err != nil {
		h.logger.Error("Watermarking failed", zap.String("filename", filename), zap.Error(err))
		if kind, _ := processor.KindOf(err); kind == processor.KindDecode {
			h.respondError(c, http.StatusBadRequest, "Image could not be decoded")
			return
		}
		h.respondError(c, http.StatusInternalServerError, "Failed to process image")
		return
	}

	if c.Query("return_url") == "true" {
		h.respondWithURL(c, out, filename, spec)
		return
	}

	h.respondWithImage(c, out, spec)
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}

func (h *ImageHandler) buildBatchResponse(ctx context.Context, images []models.BatchImage, files []*multipart.FileHeader) models.BatchResponse {
	response := models.BatchResponse{ProcessedAt: time.Now()}

	var uploads []models.UploadFile
	var uploadIdx []int

	for i, img := range images {
		name := utils.WatermarkedName(files[i].Filename)
		response.Images = append(response.Images, models.ImageResponse{
			Filename:    name,
			FileSize:    img.FileSize,
			ProcessedAt: response.ProcessedAt,
			Error:       img.Error,
		})
		if img.Buffer == nil {
			response.Failed++
			continue
		}
		uploads = append(uploads, models.UploadFile{
			Data:        img.Buffer.Bytes(),
			Filename:    name,
			ContentType: "image/jpeg",
		})
		uploadIdx = append(uploadIdx, i)
	}

	if h.storage == nil || len(uploads) == 0 {
		return response
	}

	for j, res := range h.storage.UploadMultiple(ctx, uploads) {
		i := uploadIdx[j]
		if res.Error != "" {
			h.logger.Warn("Failed to upload to Storage", zap.String("filename", res.Filename), zap.String("error", res.Error))
			response.Images[i].Error = "upload failed"
			response.Failed++
			continue
		}
		response.Images[i].URL = res.URL
	}

	return response
}

// === STORAGE OPERATIONS ===

func (h *ImageHandler) uploadToStorage(ctx context.Context, data []byte, filename string) (string, error) {
	if h.storage == nil {
		return "", errors.New("storage not configured")
	}

	url, err := h.storage.SaveFile(ctx, data, utils.WatermarkedName(filename), "image/jpeg")
	if err != nil {
		h.logger.Warn("Failed to upload to Storage", zap.Error(err))
		return "", err
	}

	return url, nil
}
