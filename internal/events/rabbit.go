package events

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MustDial connects to RabbitMQ or exits; called once at startup when
// messaging is configured.
func MustDial(url string, logger *log.Logger) *amqp.Connection {
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	return conn
}
