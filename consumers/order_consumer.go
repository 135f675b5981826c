package consumers

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"storefront-service/apperrors"
	"storefront-service/config"
	"storefront-service/middlewares"
	"storefront-service/models"
	"storefront-service/rabbitmq"
)

// PaymentExpirer cancels orders whose payment window has passed.
type PaymentExpirer interface {
	ExpireUnpaid(ctx context.Context, orderID int64) (bool, error)
}

type OrderConsumer struct {
	expirer PaymentExpirer
	timeout time.Duration
}

func NewOrderConsumer(expirer PaymentExpirer) *OrderConsumer {
	return &OrderConsumer{expirer: expirer, timeout: 10 * time.Second}
}

// Start consumes the order queue and the dead-letter queue until ctx is
// cancelled or the channel closes.
func (oc *OrderConsumer) Start(ctx context.Context, ch *amqp.Channel, cfg *config.Config) error {
	// 消费主订单队列
	msgs, err := ch.Consume(cfg.OrderQueue, "storefront-service", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register order consumer: %w", err)
	}
	go oc.loop(ctx, msgs, oc.Process)

	// 消费死信队列
	dlqMsgs, err := ch.Consume(cfg.DeadLetterQueue, "storefront-service-dlq", false, false, false, false, nil)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return nil
	}
	go oc.loop(ctx, dlqMsgs, func(_ context.Context, msg amqp.Delivery) { ProcessDeadLetter(msg) })
	return nil
}

func (oc *OrderConsumer) loop(ctx context.Context, msgs <-chan amqp.Delivery, handle func(context.Context, amqp.Delivery)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			handle(ctx, msg)
		}
	}
}

// Process handles one order event. Malformed or failing messages are rejected
// without requeue so the broker dead-letters them.
func (oc *OrderConsumer) Process(ctx context.Context, msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
			_ = msg.Nack(false, false)
		}
	}()

	event, err := rabbitmq.DecodeEvent(msg.Body)
	if err != nil {
		log.Printf("Invalid message format: %v", err)
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Failed to nack message: %v", err)
		}
		return
	}
	log.Printf("Processing order event: ID=%d, Number=%s, Type=%s", event.OrderID, event.OrderNumber, event.Type)

	switch event.Type {
	case models.EventOrderCreated:
		log.Printf("Order %s created, total %s", event.OrderNumber, event.Total.StringFixed(2))
	case models.EventStatusUpdated:
		log.Printf("Order %s moved to %s", event.OrderNumber, event.Status)
	case models.EventPaymentCheck:
		err = oc.paymentCheck(ctx, event)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("Failed to handle %s event for order %d: %v", event.Type, event.OrderID, err)
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Failed to nack message: %v", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack message: %v", err)
	}
}

func (oc *OrderConsumer) paymentCheck(ctx context.Context, event models.OrderEvent) error {
	ctx, cancel := context.WithTimeout(ctx, oc.timeout)
	defer cancel()

	expired, err := oc.expirer.ExpireUnpaid(ctx, event.OrderID)
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		log.Printf("Order %d no longer exists, skipping payment check", event.OrderID)
		return nil
	}
	middlewares.RecordOrderOperation("expire", err == nil)
	if err != nil {
		return err
	}
	if expired {
		log.Printf("Auto-cancelled order %s due to non-payment", event.OrderNumber)
	}
	return nil
}

// ProcessDeadLetter logs and acknowledges a dead-lettered message.
func ProcessDeadLetter(msg amqp.Delivery) {
	reason := "unknown"
	if deaths, ok := msg.Headers["x-death"].([]interface{}); ok && len(deaths) > 0 {
		if first, ok := deaths[0].(amqp.Table); ok {
			reason = fmt.Sprint(first["reason"])
		}
	}
	log.Printf("Received dead letter (reason=%s): %s", reason, msg.Body)
	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack dead letter: %v", err)
	}
}
