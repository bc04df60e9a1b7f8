package queue

import (
	"context"
	"fmt"

	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const defaultQueueName = "watermark_jobs"

// Renderer produces a watermarked image for a job request.
type Renderer interface {
	Watermark(ctx context.Context, src []byte, req models.WatermarkRequest) ([]byte, models.WatermarkSpec, error)
}

// ResultStore fetches sources and persists outputs and job state.
type ResultStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
	SaveFile(ctx context.Context, data []byte, filename, contentType string) (string, error)
	SetJobResult(ctx context.Context, job *models.WatermarkJob) error
	GetJobResult(ctx context.Context, jobID string) (*models.WatermarkJob, error)
}

type QueueService struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	logger      *zap.Logger
	queueName   string
	renderer    Renderer
	store       ResultStore
	maxFileSize int64
}

func NewQueueService(
	rabbitmqURL string,
	renderer Renderer,
	store ResultStore,
	maxFileSize int64,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		defaultQueueName, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// One unacked job per consumer keeps rendering spread across workers.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	return &QueueService{
		conn:        conn,
		channel:     channel,
		logger:      logger,
		queueName:   defaultQueueName,
		renderer:    renderer,
		store:       store,
		maxFileSize: maxFileSize,
	}, nil
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
