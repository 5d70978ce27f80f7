package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const bookingEventsQueue = "booking.events"

// AMQPPublisher publishes booking events to a durable RabbitMQ queue.
// Publish failures are returned to the caller, which logs and moves on;
// event delivery is best-effort and never blocks the booking flow.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Durable so messages survive broker restarts. Idempotent.
	_, err = channel.QueueDeclare(bookingEventsQueue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{
		conn:    conn,
		channel: channel,
	}, nil
}

func (p *AMQPPublisher) PublishBookingEvent(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		"",
		bookingEventsQueue,
		false,
		false,
		amqp.Publishing{
			// Message id lets consumers deduplicate redeliveries.
			MessageId:    uuid.NewString(),
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}

	return p.conn.Close()
}
