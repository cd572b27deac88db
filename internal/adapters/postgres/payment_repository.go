package postgres

import (
	"context"
	"errors"
	"fmt"

	"virdispay/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PaymentRepository is the read-only view into the gateway's payments table.
// The payment lifecycle is owned by the payment subsystem; this side never
// writes.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	const q = `
		select id, merchant_id, amount::text, currency, status, completed_at
		from payments where id = $1;`

	p, err := scanPayment(r.pool.QueryRow(ctx, q, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to select payment %q: %w", paymentID, err)
	}
	return p, nil
}

// ListUnconverted returns completed payments that have no conversion record
// yet, oldest first so delayed conversions go out in arrival order.
func (r *PaymentRepository) ListUnconverted(ctx context.Context) ([]domain.Payment, error) {
	const q = `
		select p.id, p.merchant_id, p.amount::text, p.currency, p.status, p.completed_at
		from payments p
		where p.status = 'completed'
		  and not exists (
			select 1 from conversion_transactions ct where ct.original_payment_id = p.id
		  )
		order by p.completed_at asc;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query unconverted payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, 32)
	for rows.Next() {
		p, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", scanErr)
		}
		payments = append(payments, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p         domain.Payment
		amountStr string
		currency  string
	)
	if err := row.Scan(&p.ID, &p.MerchantID, &amountStr, &currency, &p.Status, &p.CompletedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment amount %q: %w", amountStr, err)
	}
	p.Amount = amount
	p.Currency = domain.CryptoCurrency(currency)
	return &p, nil
}
