package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"storefront-service/config"
	"storefront-service/models"
)

// ErrDelayUnavailable is returned by PublishDelayedEvent when the broker has
// no delayed-message exchange.
var ErrDelayUnavailable = errors.New("rabbitmq: delayed exchange unavailable")

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Cfg     *config.Config

	consumer *amqp.Channel
	delayed  bool
}

// topologyChannel is the part of *amqp.Channel used to declare the delayed exchange.
type topologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Close() error
}

func NewRabbitMQ(cfg *config.Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQ{
		Conn:    conn,
		Channel: ch,
		Cfg:     cfg,
	}, nil
}

func (r *RabbitMQ) deadLetterExchange() string {
	return r.Cfg.DeadLetterQueue + "_exchange"
}

// SetupQueues declares the order topology: a fanout orders exchange feeding a
// priority queue, a dead-letter exchange and queue for rejected events, and a
// delayed-message exchange that routes back into the order queue.
func (r *RabbitMQ) SetupQueues() error {
	// 死信交换机和队列
	if err := r.Channel.ExchangeDeclare(r.deadLetterExchange(), "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dead letter exchange: %w", err)
	}
	if _, err := r.Channel.QueueDeclare(r.Cfg.DeadLetterQueue, true, false, false, false,
		amqp.Table{"x-queue-type": "classic"}); err != nil {
		return fmt.Errorf("declare dead letter queue: %w", err)
	}
	if err := r.Channel.QueueBind(r.Cfg.DeadLetterQueue, r.Cfg.DeadLetterQueue, r.deadLetterExchange(), false, nil); err != nil {
		return fmt.Errorf("bind dead letter queue: %w", err)
	}

	if err := r.Channel.ExchangeDeclare(r.Cfg.OrderExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare order exchange: %w", err)
	}

	// 主订单队列（带优先级和死信）
	if _, err := r.Channel.QueueDeclare(r.Cfg.OrderQueue, true, false, false, false, amqp.Table{
		"x-max-priority":            r.Cfg.MaxPriority,
		"x-dead-letter-exchange":    r.deadLetterExchange(),
		"x-dead-letter-routing-key": r.Cfg.DeadLetterQueue,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := r.Channel.QueueBind(r.Cfg.OrderQueue, "", r.Cfg.OrderExchange, false, nil); err != nil {
		return fmt.Errorf("bind order queue: %w", err)
	}

	r.delayed = r.setupDelayExchange(func() (topologyChannel, error) {
		ch, err := r.Conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	})
	return nil
}

// setupDelayExchange declares the delayed exchange on its own channel, since
// the broker closes a channel whose declare fails. It reports whether delayed
// publishing is available.
func (r *RabbitMQ) setupDelayExchange(open func() (topologyChannel, error)) bool {
	ch, err := open()
	if err != nil {
		log.Printf("Warning: cannot open channel for delayed exchange: %v", err)
		return false
	}
	defer func() { _ = ch.Close() }()

	// 延迟交换机（需要RabbitMQ安装延迟插件）
	if err := ch.ExchangeDeclare(r.Cfg.DelayExchange, "x-delayed-message", true, false, false, false,
		amqp.Table{"x-delayed-type": "fanout"}); err != nil {
		log.Printf("Warning: Delayed exchange not supported, payment checks disabled: %v", err)
		return false
	}
	if err := ch.QueueBind(r.Cfg.OrderQueue, "", r.Cfg.DelayExchange, false, nil); err != nil {
		log.Printf("Warning: bind delay exchange: %v", err)
		return false
	}
	return true
}

// DelayedEnabled reports whether SetupQueues declared the delayed exchange.
func (r *RabbitMQ) DelayedEnabled() bool { return r.delayed }

// ConsumerChannel opens a channel reserved for consuming, so a channel error
// raised by a publish does not stop deliveries.
func (r *RabbitMQ) ConsumerChannel(prefetch int) (*amqp.Channel, error) {
	if r.consumer != nil && !r.consumer.IsClosed() {
		return r.consumer, nil
	}
	ch, err := r.Conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set consumer prefetch: %w", err)
	}
	r.consumer = ch
	return ch, nil
}

// EncodeEvent builds the persistent JSON message for e.
func EncodeEvent(e models.OrderEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Type:         e.Type,
		Body:         body,
	}, nil
}

// DecodeEvent parses a message body produced by EncodeEvent.
func DecodeEvent(body []byte) (models.OrderEvent, error) {
	var e models.OrderEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return e, err
	}
	if e.OrderID <= 0 || e.Type == "" {
		return e, fmt.Errorf("event missing order id or type: %s", body)
	}
	return e, nil
}

func (r *RabbitMQ) PublishOrderEvent(ctx context.Context, e models.OrderEvent, priority uint8) error {
	msg, err := EncodeEvent(e)
	if err != nil {
		return err
	}
	msg.Priority = priority
	return r.Channel.PublishWithContext(ctx, r.Cfg.OrderExchange, "", false, false, msg)
}

func (r *RabbitMQ) PublishDelayedEvent(ctx context.Context, e models.OrderEvent, delay time.Duration) error {
	if !r.delayed {
		return ErrDelayUnavailable
	}
	msg, err := EncodeEvent(e)
	if err != nil {
		return err
	}
	msg.Headers = amqp.Table{"x-delay": delay.Milliseconds()}
	return r.Channel.PublishWithContext(ctx, r.Cfg.DelayExchange, "", false, false, msg)
}

func (r *RabbitMQ) Close() {
	if r.consumer != nil && !r.consumer.IsClosed() {
		if err := r.consumer.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ consumer channel: %v", err)
		}
	}
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ channel: %v", err)
		}
	}
	if r.Conn != nil {
		if err := r.Conn.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ connection: %v", err)
		}
	}
}
