package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phambaophuc/watermark-bot/internal/metrics"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}

				q.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

// acker is the part of amqp.Delivery the handler needs.
type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	q.handleDelivery(ctx, msg.Body, msg, workerID)
}

func (q *QueueService) handleDelivery(ctx context.Context, body []byte, ack acker, workerID int) {
	var job models.WatermarkJob
	if err := json.Unmarshal(body, &job); err != nil {
		q.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		ack.Nack(false, false) // Don't requeue malformed messages
		metrics.IncJob(models.StatusFailed)
		return
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID))

	job.Status = models.StatusProcessing
	q.storeJobResult(ctx, &job)

	result, err := q.processJob(ctx, &job)
	if err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		q.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		job.Status = models.StatusCompleted
		job.Result = result
		q.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID))
	}
	metrics.IncJob(job.Status)

	// Failures are recorded on the job, so the message is done either way.
	if err := ack.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}

	q.storeJobResult(ctx, &job)
}

func (q *QueueService) storeJobResult(ctx context.Context, job *models.WatermarkJob) {
	if err := q.store.SetJobResult(ctx, job); err != nil {
		q.logger.Warn("Failed to store job result",
			zap.String("job_id", job.ID),
			zap.Error(err))
		return
	}
	q.logger.Debug("Job result stored",
		zap.String("job_id", job.ID),
		zap.String("status", job.Status))
}
