package worker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer listens on the illustration task queue and feeds deliveries to a
// Handler.
type Consumer struct {
	conn      *amqp.Connection
	queueName string
	handler   *Handler
	logger    *zap.Logger
	channel   *amqp.Channel
}

// NewConsumer creates a queue consumer.
func NewConsumer(conn *amqp.Connection, queueName string, handler *Handler, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:      conn,
		queueName: queueName,
		handler:   handler,
		logger:    logger.Named("IllustrationConsumer"),
	}
}

// Start declares the queue and consumes until ctx is cancelled. It blocks, so
// run it in a goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	var err error
	c.channel, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", c.queueName, err)
	}
	c.logger.Info("Task queue declared", zap.String("queue", q.Name), zap.Int("messages", q.Messages))

	// One unacked task at a time; image generation is slow and sequential.
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		q.Name,
		"illustration-worker", // consumer tag
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	c.logger.Info("Consumer started, waiting for messages")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer stopping")
			return c.channel.Close()
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Consumer channel closed by broker")
				return nil
			}
			if c.handler.HandleDelivery(ctx, msg) {
				if ackErr := msg.Ack(false); ackErr != nil {
					c.logger.Error("Failed to ack message", zap.Error(ackErr))
				}
			} else {
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.logger.Error("Failed to nack message", zap.Error(nackErr))
				}
			}
		}
	}
}
