package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeType is the broker exchange type used for journal events.
const ExchangeType = "topic"

// Dial connects to the broker and declares exchange, retrying attempts times.
func Dial(url, exchange string, attempts int) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to RabbitMQ (attempt %d): %v", i+1, err)
		if i+1 < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,     // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}
	return conn, ch, nil
}

// AMQPPublisher sends events to a topic exchange with routing key shop.<kind>.
type AMQPPublisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher publishes on ch to exchange.
func NewAMQPPublisher(ch *amqp.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// RoutingKey returns the routing key of ev.
func RoutingKey(ev Event) string {
	return "shop." + string(ev.Kind)
}

// Publish sends ev as a JSON message routed by its kind.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}
	err = p.ch.PublishWithContext(ctx,
		p.exchange,     // exchange
		RoutingKey(ev), // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   ev.ID.String(),
			Timestamp:   ev.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}
	return nil
}
