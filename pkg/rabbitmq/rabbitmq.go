package rabbitmq

import (
	"fmt"
	"log"

	amqp "github.com/streadway/amqp"
)

// thoughtQueue receives all thought lifecycle events.
const thoughtQueue = "thought_events"

// ThoughtEvent is the payload published for thought.created and thought.liked.
type ThoughtEvent struct {
	ThoughtID string `json:"thoughtId"`
	CreatedBy string `json:"createdBy,omitempty"`
	Hearts    int    `json:"hearts"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the thought
// event queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		thoughtQueue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", thoughtQueue, err)
	}

	log.Printf("RabbitMQ client connected and %s declared", thoughtQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Publish sends a message body to the thought event queue. The exchange and
// routing key are kept in the message headers for consumers that care.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	err := c.channel.Publish(
		"",           // default exchange routes by queue name
		thoughtQueue, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Headers: amqp.Table{
				"event":    routingKey,
				"exchange": exchange,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", routingKey, err)
	}
	return nil
}

// ConsumeThoughtEvents starts delivering thought events to handler. A nil
// error from handler acknowledges the message; an error requeues it.
func (c *Client) ConsumeThoughtEvents(handler func(msg amqp.Delivery) error) error {
	msgs, err := c.channel.Consume(
		thoughtQueue, // queue
		"",           // consumer tag
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", thoughtQueue, err)
	}

	for msg := range msgs {
		if handlerErr := handler(msg); handlerErr != nil {
			log.Printf("Failed to handle thought event (tag %d): %v", msg.DeliveryTag, handlerErr)
			msg.Nack(false, true)
			continue
		}
		msg.Ack(false)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}
