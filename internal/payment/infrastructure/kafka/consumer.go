package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/laundrydesk/laundry-payments/internal/order/domain"
	"github.com/laundrydesk/laundry-payments/internal/payment/application"
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

// Consumer creates a Pending payment for every placed order.
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
		tracer: otel.Tracer("payment-consumer"),
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
// committed. The message is marked seen only after a successful write, so a
// transient store failure leaves the offset uncommitted and the event is
// retried after a rebalance or restart. Save is an upsert on order_id, which
// keeps the retry safe.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "err", err)
		return false
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return true
	}

	if headerValue(msg.Headers, "event_type") != "OrderCreated" {
		return true
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderCreated")
	defer span.End()

	var event domain.OrderCreated
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Poison message: retrying cannot make it parse.
		c.log.Error("unmarshal failed", "err", err)
		_ = c.idem.Mark(ctx, key)
		return true
	}

	method := paymentdomain.Method(event.PaymentMethod)
	if method == "" {
		method = paymentdomain.MethodCOD
	}

	if _, err := c.svc.CreateForOrder(msgCtx, event.OrderID, event.TotalCents, method); err != nil {
		c.log.Error("payment create failed", "order_id", event.OrderID, "err", err)
		return false
	}
	c.log.Info("payment created", "order_id", event.OrderID)
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
