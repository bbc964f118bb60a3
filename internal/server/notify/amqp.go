package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *amqp.Channel used by AMQPSender.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender publishes rendered messages as JSON to a topic exchange with
// routing key "email.<template>". A separate worker does the delivery.
type AMQPSender struct {
	ch       Publisher
	exchange string
}

func NewAMQPSender(ch Publisher, exchange string) *AMQPSender {
	return &AMQPSender{ch: ch, exchange: exchange}
}

func (a *AMQPSender) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	headers := amqp.Table{}
	if id := common.RequestID(ctx); id != "" {
		headers["X-Request-ID"] = id
	}

	return a.ch.PublishWithContext(ctx, a.exchange, "email."+m.Template, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      headers,
		Body:         body,
	})
}

// DialAMQP connects to url and declares a durable topic exchange.
func DialAMQP(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return conn, ch, nil
}
