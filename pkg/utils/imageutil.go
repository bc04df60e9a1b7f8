package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// DownloadImage fetches imageURL, reading at most maxSize bytes. A body
// larger than maxSize is an error rather than a silently truncated image.
func DownloadImage(ctx context.Context, imageURL string, maxSize int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", StripURLError(err))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", StripURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	if len(imageData) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}
	if int64(len(imageData)) > maxSize {
		return nil, "", fmt.Errorf("image exceeds maximum size %d", maxSize)
	}

	contentType := http.DetectContentType(imageData)
	if !IsValidImageType(contentType) {
		return nil, "", fmt.Errorf("invalid content type: %s", contentType)
	}

	return imageData, contentType, nil
}

// StripURLError drops the request URL from err. Telegram file links embed the
// bot token and must not reach logs.
func StripURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// IsValidImageType checks if content type is a valid image type
func IsValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
		"image/tiff",
	}

	ct := strings.ToLower(contentType)
	for _, validType := range validTypes {
		if strings.Contains(ct, validType) {
			return true
		}
	}
	return false
}

// GenerateFilename names the watermarked output of a job.
func GenerateFilename(jobID string) string {
	return fmt.Sprintf("watermarked_%s_%d.jpg", jobID, time.Now().Unix())
}

// WatermarkedName swaps the extension of an uploaded name for .jpg.
func WatermarkedName(originalFilename string) string {
	name := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	return name + "_wm.jpg"
}

func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	timestamp := time.Now().Unix()
	id := uuid.New().String()[:8]

	return fmt.Sprintf("watermarked/%s_%d_%s%s", name, timestamp, id, ext)
}
