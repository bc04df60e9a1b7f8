package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// NewJob turns an API request into a pending job with a fresh id.
func NewJob(req models.CreateJobRequest) *models.WatermarkJob {
	return &models.WatermarkJob{
		ID:          uuid.New().String(),
		ImageURL:    req.ImageURL,
		StoragePath: req.StoragePath,
		Request: models.WatermarkRequest{
			Color:  req.Color,
			Layout: req.Layout,
			Texts:  req.Texts,
		},
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
}

func (q *QueueService) PublishJob(ctx context.Context, job *models.WatermarkJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    job.ID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	if err := q.store.SetJobResult(ctx, job); err != nil {
		q.logger.Warn("Failed to record pending job", zap.String("job_id", job.ID), zap.Error(err))
	}

	q.logger.Info("Job published to queue", zap.String("job_id", job.ID))
	return nil
}

// GetJob returns the latest recorded state of a job, or nil if unknown.
func (q *QueueService) GetJob(ctx context.Context, jobID string) (*models.WatermarkJob, error) {
	return q.store.GetJobResult(ctx, jobID)
}
