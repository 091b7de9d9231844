package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laundrydesk/laundry-payments/internal/order/application"
	"github.com/laundrydesk/laundry-payments/internal/order/domain"
	"github.com/laundrydesk/laundry-payments/pkg/tracing"
)

const orderColumns = `id, order_number, customer_name, customer_phone, customer_email,
	pickup_address, service_type, weight_kg, total_cents, pickup_date, notes,
	status, payment_status, created_at, updated_at`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		o.ID, o.OrderNumber, o.CustomerName, o.CustomerPhone, o.CustomerEmail,
		o.PickupAddress, o.ServiceType, o.WeightKg, o.TotalCents, o.PickupDate, o.Notes,
		o.Status, o.PaymentStatus, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ('order',$1,$2,$3,$4,'pending')`,
		o.ID, eventType, payload, tracing.TraceparentFromContext(ctx))
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

func (r *Repository) List(ctx context.Context, status *domain.Status) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if status != nil {
		q += ` WHERE status=$1`
		args = append(args, *status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1 RETURNING `+orderColumns,
		id, status, time.Now().UTC())
	return scanOrder(row)
}

func (r *Repository) SetPaymentStatus(ctx context.Context, orderID string, ps domain.PaymentStatus) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET payment_status=$2, updated_at=$3 WHERE id=$1`,
		orderID, ps, time.Now().UTC())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return application.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.PickupAddress, &o.ServiceType, &o.WeightKg, &o.TotalCents, &o.PickupDate, &o.Notes,
		&o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, application.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
