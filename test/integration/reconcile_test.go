package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laundrydesk/laundry-payments/internal/payment/application"
	"github.com/laundrydesk/laundry-payments/internal/payment/domain"
	pg "github.com/laundrydesk/laundry-payments/internal/payment/infrastructure/postgres"
	"github.com/stretchr/testify/require"
)

func TestReconcileAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test needs docker")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)
	require.NoError(t, env.Migrate(ctx))

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := pg.NewRepository(log, pool, false)

	seed := domain.NewPayment("pay-1", "order-1", 150000, domain.MethodEWallet)
	require.NoError(t, repo.Save(ctx, seed))

	// Redelivered order event must not reset the payment.
	require.NoError(t, repo.Save(ctx, domain.NewPayment("pay-dup", "order-1", 150000, domain.MethodEWallet)))
	got, err := repo.FindByOrderID(ctx, "order-1")
	require.NoError(t, err)
	require.Equal(t, "pay-1", got.ID)

	now := time.Now().UTC()
	upd := application.NotificationUpdate{
		OrderID:       "order-1",
		Status:        domain.StatusVerified,
		TransactionID: "mt-txn-1",
		PaymentType:   "gopay",
		VerifiedAt:    &now,
	}

	p, applied, err := repo.ApplyNotification(ctx, upd, application.EventPaymentVerified, []byte(`{}`))
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, domain.StatusVerified, p.Status)
	require.NotNil(t, p.VerifiedAt)
	require.Equal(t, "mt-txn-1", *p.MidtransTransactionID)

	// Second delivery of the same notification: no-op success, single event.
	p2, applied, err := repo.ApplyNotification(ctx, upd, application.EventPaymentVerified, []byte(`{}`))
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, domain.StatusVerified, p2.Status)
	require.Equal(t, p.VerifiedAt.Unix(), p2.VerifiedAt.Unix())

	var eventCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE aggregate_id='order-1'`).Scan(&eventCount))
	require.Equal(t, 1, eventCount)

	// A conflicting terminal notification never overwrites a terminal state.
	reject := upd
	reject.Status = domain.StatusRejected
	reject.VerifiedAt = nil
	p3, applied, err := repo.ApplyNotification(ctx, reject, application.EventPaymentRejected, []byte(`{}`))
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, domain.StatusVerified, p3.Status)

	// Unknown order surfaces the not-found sentinel without writing.
	missing := upd
	missing.OrderID = "ghost"
	_, _, err = repo.ApplyNotification(ctx, missing, application.EventPaymentVerified, []byte(`{}`))
	require.ErrorIs(t, err, application.ErrPaymentNotFound)

	// Manual decisions respect the same terminal guard.
	_, err = repo.Finalize(ctx, "pay-1", application.ManualDecision{
		Status: domain.StatusRejected, Actor: "agent-7", DecidedAt: time.Now().UTC(),
	}, application.EventPaymentRejected, []byte(`{}`))
	require.ErrorIs(t, err, application.ErrAlreadyFinalized)

	// Capability probe resolves the optional audit relation.
	ok, err := pg.HasRelation(ctx, pool, "payment_audit")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = pool.Exec(ctx, `CREATE TABLE payment_audit (
		id BIGSERIAL PRIMARY KEY, payment_id TEXT NOT NULL,
		action TEXT NOT NULL, actor TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL)`)
	require.NoError(t, err)

	ok, err = pg.HasRelation(ctx, pool, "payment_audit")
	require.NoError(t, err)
	require.True(t, ok)
}
