package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type storeStub struct {
	mu      sync.Mutex
	batches [][]Event
	sent    [][]int64
	failed  []int64
	done    chan struct{}
}

func (s *storeStub) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil, nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, nil
}

func (s *storeStub) MarkSent(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	s.sent = append(s.sent, ids)
	s.mu.Unlock()
	select {
	case s.done <- struct{}{}:
	default:
	}
	return nil
}

// MarkFailed records only; the relay always calls MarkSent after the batch,
// so the test synchronizes on that.
func (s *storeStub) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	s.failed = append(s.failed, id)
	s.mu.Unlock()
	return nil
}

func (s *storeStub) ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error {
	return nil
}

type producerStub struct {
	failKeys map[string]bool
}

func (p *producerStub) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if p.failKeys[string(m.Key)] {
			return errors.New("broker rejected")
		}
	}
	return nil
}

func TestRelay_DispatchesAndMarks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := &storeStub{
		batches: [][]Event{{
			{ID: 1, AggregateID: "order-1", Type: "PaymentVerified"},
			{ID: 2, AggregateID: "order-2", Type: "PaymentRejected"},
		}},
		done: make(chan struct{}, 1),
	}
	producer := &producerStub{failKeys: map[string]bool{"order-2": true}}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), producer, "payment.events"), "test-relay")

	go func() { _ = relay.Run(ctx) }()

	select {
	case <-store.done:
	case <-ctx.Done():
		t.Fatal("relay never processed the batch")
	}
	cancel()

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Equal(t, [][]int64{{1}}, store.sent)
	require.Equal(t, []int64{2}, store.failed)
}
