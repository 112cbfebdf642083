package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishRetries = 3

// IllustrationTaskPublisher publishes illustration rendering tasks.
type IllustrationTaskPublisher interface {
	PublishIllustrationTask(ctx context.Context, payload IllustrationTaskPayload) error
}

type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQPublisher opens a channel on the given connection and declares
// the task queue. Queue parameters must match the consumer's.
func NewRabbitMQPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (IllustrationTaskPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("illustration publisher: failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("illustration publisher: failed to declare queue %q: %w", queueName, err)
	}
	return &rabbitMQPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("IllustrationPublisher"),
	}, nil
}

func (p *rabbitMQPublisher) PublishIllustrationTask(ctx context.Context, payload IllustrationTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal illustration task: %w", err)
	}

	for attempt := 1; attempt <= publishRetries; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (default)
			p.queueName, // routing key (queue name)
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "storylion-server",
			},
		)
		if err == nil {
			p.logger.Debug("Illustration task published",
				zap.Int64("jobID", payload.JobID), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Failed to publish illustration task, retrying",
			zap.Error(err), zap.Int("attempt", attempt))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("failed to publish to queue %s after retries: %w", p.queueName, err)
}
