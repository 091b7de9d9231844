package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/laundrydesk/laundry-payments/internal/order/application"
	paymentdomain "github.com/laundrydesk/laundry-payments/internal/payment/domain"
	"github.com/laundrydesk/laundry-payments/pkg/tracing"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Deduper marks consumed messages so redelivered offsets are skipped.
type Deduper interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Consumer rolls payment outcomes up onto orders: PaymentVerified marks the
// order paid, PaymentRejected marks it failed.
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	svc    *application.Service
	idem   Deduper
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, svc *application.Service, idem Deduper) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:    log,
		reader: r,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("order-payment-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if c.handle(ctx, msg) {
			_ = c.reader.CommitMessages(ctx, msg)
		}
	}
}

// handle reports whether the message is finished and its offset may be
// committed. The message is marked seen only after the rollup lands, so a
// transient store failure leaves the offset uncommitted and the event is
// retried after a rebalance or restart. SetPaymentStatus is idempotent, which
// keeps the retry safe. A payload naming an unknown order cannot succeed on
// retry and is dropped after logging.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "err", err)
		return false
	}
	if seen {
		return true
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumePaymentEvent")
	defer span.End()

	switch headerValue(msg.Headers, "event_type") {
	case "PaymentVerified":
		var event paymentdomain.PaymentVerified
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("unmarshal failed", "err", err)
			break
		}
		if err := c.svc.MarkPaid(msgCtx, event.OrderID); err != nil {
			c.log.Error("mark paid failed", "order_id", event.OrderID, "err", err)
			if !errors.Is(err, application.ErrOrderNotFound) {
				return false
			}
		}
	case "PaymentRejected":
		var event paymentdomain.PaymentRejected
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("unmarshal failed", "err", err)
			break
		}
		if err := c.svc.MarkFailed(msgCtx, event.OrderID); err != nil {
			c.log.Error("mark failed failed", "order_id", event.OrderID, "err", err)
			if !errors.Is(err, application.ErrOrderNotFound) {
				return false
			}
		}
	}

	_ = c.idem.Mark(ctx, key)
	return true
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
