package queue

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/pkg/utils"
)

func (q *QueueService) processJob(ctx context.Context, job *models.WatermarkJob) (*models.ProcessedImage, error) {
	src, err := q.fetchSource(ctx, job)
	if err != nil {
		return nil, err
	}

	out, spec, err := q.renderer.Watermark(ctx, src, job.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to watermark image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to read output dimensions: %w", err)
	}

	filename := utils.GenerateFilename(job.ID)
	url, err := q.store.SaveFile(ctx, out, filename, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to save watermarked image: %w", err)
	}

	original := job.ImageURL
	if original == "" {
		original = job.StoragePath
	}

	return &models.ProcessedImage{
		ID:          job.ID,
		OriginalURL: original,
		ProcessedAt: time.Now(),
		Width:       cfg.Width,
		Height:      cfg.Height,
		Style:       spec.Style.Key,
		Layout:      spec.Layout,
		URL:         url,
		FileSize:    int64(len(out)),
	}, nil
}

func (q *QueueService) fetchSource(ctx context.Context, job *models.WatermarkJob) ([]byte, error) {
	if job.StoragePath != "" {
		data, err := q.store.Download(ctx, job.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to download from storage: %w", err)
		}
		return data, nil
	}

	if job.ImageURL == "" {
		return nil, fmt.Errorf("job has no image source")
	}

	data, _, err := utils.DownloadImage(ctx, job.ImageURL, q.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	return data, nil
}
