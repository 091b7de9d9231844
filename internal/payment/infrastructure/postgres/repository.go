package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laundrydesk/laundry-payments/internal/payment/application"
	"github.com/laundrydesk/laundry-payments/internal/payment/domain"
	"github.com/laundrydesk/laundry-payments/pkg/tracing"
)

const paymentColumns = `id, order_id, amount_cents, method, status,
	midtrans_transaction_id, midtrans_payment_type, proof_url,
	verified_at, verified_by, created_at, updated_at`

type Repository struct {
	log          *slog.Logger
	pool         *pgxpool.Pool
	auditEnabled bool
}

// NewRepository wires the payment store. auditEnabled reflects the startup
// capability probe for the optional payment_audit relation; the repository
// never discovers it per request.
func NewRepository(log *slog.Logger, pool *pgxpool.Pool, auditEnabled bool) *Repository {
	return &Repository{log: log, pool: pool, auditEnabled: auditEnabled}
}

func (r *Repository) Save(ctx context.Context, p domain.Payment) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO payments (id, order_id, amount_cents, method, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (order_id) DO NOTHING`,
		p.ID, p.OrderID, p.AmountCents, p.Method, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	return nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id=$1`, orderID)
	return scanPayment(row)
}

func (r *Repository) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
	return scanPayment(row)
}

func (r *Repository) List(ctx context.Context, status *domain.Status) ([]domain.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments`
	args := []any{}
	if status != nil {
		q += ` WHERE status=$1`
		args = append(args, *status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ApplyNotification locks the row for the order, so concurrent notifications
// serialize and exactly one Pending->terminal transition can win. The outbox
// event is written only when a transition actually happened, keeping gateway
// redeliveries from producing duplicate events.
func (r *Repository) ApplyNotification(ctx context.Context, upd application.NotificationUpdate, eventType string, payload []byte) (domain.Payment, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Payment{}, false, fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id=$1 FOR UPDATE`, upd.OrderID)
	current, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, false, err
	}

	if current.Status.Terminal() {
		return current, false, tx.Commit(ctx)
	}

	now := time.Now().UTC()
	row = tx.QueryRow(ctx, `UPDATE payments
		SET status=$2, midtrans_transaction_id=$3, midtrans_payment_type=$4,
			verified_at=COALESCE($5, verified_at), updated_at=$6
		WHERE id=$1
		RETURNING `+paymentColumns,
		current.ID, upd.Status, upd.TransactionID, upd.PaymentType, upd.VerifiedAt, now)
	updated, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, false, err
	}

	if eventType != "" {
		if err := insertOutbox(ctx, tx, updated.OrderID, eventType, payload); err != nil {
			return domain.Payment{}, false, err
		}
	}
	if r.auditEnabled {
		if err := insertAudit(ctx, tx, updated.ID, string(upd.Status), "midtrans-webhook", now); err != nil {
			return domain.Payment{}, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Payment{}, false, fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	return updated, true, nil
}

func (r *Repository) Finalize(ctx context.Context, paymentID string, d application.ManualDecision, eventType string, payload []byte) (domain.Payment, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1 FOR UPDATE`, paymentID)
	current, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, err
	}
	if current.Status.Terminal() {
		return domain.Payment{}, application.ErrAlreadyFinalized
	}

	row = tx.QueryRow(ctx, `UPDATE payments
		SET status=$2, verified_at=$3, verified_by=$4, updated_at=$3
		WHERE id=$1
		RETURNING `+paymentColumns,
		paymentID, d.Status, d.DecidedAt, d.Actor)
	updated, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, err
	}

	if err := insertOutbox(ctx, tx, updated.OrderID, eventType, payload); err != nil {
		return domain.Payment{}, err
	}
	if r.auditEnabled {
		if err := insertAudit(ctx, tx, updated.ID, string(d.Status), d.Actor, d.DecidedAt); err != nil {
			return domain.Payment{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	return updated, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateID, eventType string, payload []byte) error {
	_, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ('payment',$1,$2,$3,$4,'pending')`, aggregateID, eventType, payload, tracing.TraceparentFromContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	return nil
}

func insertAudit(ctx context.Context, tx pgx.Tx, paymentID, action, actor string, at time.Time) error {
	_, err := tx.Exec(ctx, `INSERT INTO payment_audit (payment_id, action, actor, created_at)
		VALUES ($1,$2,$3,$4)`, paymentID, action, actor, at)
	if err != nil {
		return fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	return nil
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.AmountCents, &p.Method, &p.Status,
		&p.MidtransTransactionID, &p.MidtransPaymentType, &p.ProofURL,
		&p.VerifiedAt, &p.VerifiedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, application.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %w", application.ErrPersistence, err)
	}
	return p, nil
}
