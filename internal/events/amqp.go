package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher writes events to a RabbitMQ queue through a ChannelPool.
type AMQPPublisher struct {
	pool      *ChannelPool
	queueName string
}

// NewAMQPPublisher creates a publisher for queueName.
func NewAMQPPublisher(pool *ChannelPool, queueName string) *AMQPPublisher {
	return &AMQPPublisher{pool: pool, queueName: queueName}
}

// Publish sends the event as a persistent JSON message on the default
// exchange, routed by queue name.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ch, err := p.pool.GetChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer p.pool.ReturnChannel(ch)

	msg, err := toPublishing(event)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func toPublishing(event Event) (amqp.Publishing, error) {
	body, err := event.Encode()
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}
