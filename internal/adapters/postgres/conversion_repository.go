package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"virdispay/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ConversionRepository struct {
	pool *pgxpool.Pool
}

func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}

const conversionColumns = `
	conversion_id, merchant_id, original_payment_id,
	crypto_amount::text, crypto_currency, fiat_amount, fiat_currency, exchange_rate,
	status, method, provider, fees, banking_snapshot, payout_details, error_details,
	initiated_at, processed_at, completed_at, failed_at
`

func (r *ConversionRepository) Create(ctx context.Context, tx *domain.ConversionTransaction) error {
	fees, banking, payoutDetails, errorDetails, err := marshalConversionFields(tx)
	if err != nil {
		return err
	}

	const q = `
		insert into conversion_transactions (
			conversion_id, merchant_id, original_payment_id,
			crypto_amount, crypto_currency, fiat_amount, fiat_currency, exchange_rate,
			status, method, provider, fees, banking_snapshot, payout_details, error_details,
			initiated_at, processed_at, completed_at, failed_at
		) values (
			$1, $2, $3, $4::numeric, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		);`

	_, err = r.pool.Exec(ctx, q,
		tx.ConversionID, tx.MerchantID, tx.OriginalPaymentID,
		tx.CryptoAmount.String(), string(tx.CryptoCurrency), tx.FiatAmount, string(tx.FiatCurrency), tx.ExchangeRate,
		string(tx.Status), string(tx.Method), string(tx.Provider), fees, banking, payoutDetails, errorDetails,
		tx.InitiatedAt, tx.ProcessedAt, tx.CompletedAt, tx.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion %q: %w", tx.ConversionID, err)
	}
	return nil
}

func (r *ConversionRepository) Update(ctx context.Context, tx *domain.ConversionTransaction) error {
	// banking_snapshot is immutable once set and deliberately not updated here.
	fees, _, payoutDetails, errorDetails, err := marshalConversionFields(tx)
	if err != nil {
		return err
	}

	const q = `
		update conversion_transactions
		set status = $2, fees = $3, payout_details = $4, error_details = $5,
		    processed_at = $6, completed_at = $7, failed_at = $8
		where conversion_id = $1;`

	tag, err := r.pool.Exec(ctx, q,
		tx.ConversionID, string(tx.Status), fees, payoutDetails, errorDetails,
		tx.ProcessedAt, tx.CompletedAt, tx.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversion %q: %w", tx.ConversionID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConversionNotFound
	}
	return nil
}

func (r *ConversionRepository) GetByID(ctx context.Context, conversionID string) (*domain.ConversionTransaction, error) {
	q := `select ` + conversionColumns + ` from conversion_transactions where conversion_id = $1;`

	tx, err := scanConversion(r.pool.QueryRow(ctx, q, conversionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversionNotFound
		}
		return nil, fmt.Errorf("failed to select conversion %q: %w", conversionID, err)
	}
	return tx, nil
}

func (r *ConversionRepository) ListByMerchant(ctx context.Context, merchantID string, filter domain.HistoryFilter) ([]domain.ConversionTransaction, int, error) {
	q := `select ` + conversionColumns + `, count(*) over() as total
		from conversion_transactions
		where merchant_id = $1`
	args := []any{merchantID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		q += fmt.Sprintf(" and status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		q += fmt.Sprintf(" and initiated_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		q += fmt.Sprintf(" and initiated_at <= $%d", len(args))
	}

	args = append(args, filter.PageSize)
	q += fmt.Sprintf(" order by initiated_at desc limit $%d", len(args))
	args = append(args, (filter.Page-1)*filter.PageSize)
	q += fmt.Sprintf(" offset $%d;", len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query conversions for merchant %q: %w", merchantID, err)
	}
	defer rows.Close()

	var (
		items []domain.ConversionTransaction
		total int
	)
	for rows.Next() {
		tx, rowTotal, scanErr := scanConversionWithTotal(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan conversion row: %w", scanErr)
		}
		items = append(items, *tx)
		total = rowTotal
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating conversion rows: %w", err)
	}
	return items, total, nil
}

func (r *ConversionRepository) StatsByMerchant(ctx context.Context, merchantID string, since time.Time) (domain.ConversionStats, error) {
	const q = `
		select
			count(*),
			coalesce(sum(fiat_amount), 0),
			coalesce(sum((fees->>'total')::double precision), 0),
			count(*) filter (where status = 'completed'),
			count(*) filter (where status = 'failed'),
			coalesce(avg(extract(epoch from (completed_at - initiated_at)) * 1000)
				filter (where status = 'completed' and completed_at is not null), 0)
		from conversion_transactions
		where merchant_id = $1 and initiated_at >= $2;`

	var stats domain.ConversionStats
	if err := r.pool.QueryRow(ctx, q, merchantID, since).Scan(
		&stats.TotalConversions,
		&stats.TotalFiatAmount,
		&stats.TotalFees,
		&stats.CompletedCount,
		&stats.FailedCount,
		&stats.AvgProcessingMs,
	); err != nil {
		return domain.ConversionStats{}, fmt.Errorf("failed to aggregate stats for merchant %q: %w", merchantID, err)
	}
	return stats, nil
}

func (r *ConversionRepository) ExistsForPayment(ctx context.Context, paymentID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`select exists(select 1 from conversion_transactions where original_payment_id = $1);`,
		paymentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check conversions for payment %q: %w", paymentID, err)
	}
	return exists, nil
}

func marshalConversionFields(tx *domain.ConversionTransaction) (fees, banking, payoutDetails, errorDetails []byte, err error) {
	if fees, err = json.Marshal(tx.Fees); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal fees: %w", err)
	}
	if banking, err = json.Marshal(tx.BankingSnapshot); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal banking snapshot: %w", err)
	}
	if tx.Payout != nil {
		if payoutDetails, err = json.Marshal(tx.Payout); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal payout details: %w", err)
		}
	}
	if tx.Error != nil {
		if errorDetails, err = json.Marshal(tx.Error); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal error details: %w", err)
		}
	}
	return fees, banking, payoutDetails, errorDetails, nil
}

func scanConversion(row pgx.Row) (*domain.ConversionTransaction, error) {
	return scanConversionInto(row, nil)
}

func scanConversionWithTotal(row pgx.Row) (*domain.ConversionTransaction, int, error) {
	var total int
	tx, err := scanConversionInto(row, &total)
	return tx, total, err
}

func scanConversionInto(row pgx.Row, total *int) (*domain.ConversionTransaction, error) {
	var (
		tx              domain.ConversionTransaction
		amountStr       string
		cryptoCurrency  string
		fiatCurrency    string
		status          string
		method          string
		provider        string
		fees            []byte
		bankingSnapshot []byte
		payoutDetails   []byte
		errorDetails    []byte
	)

	dest := []any{
		&tx.ConversionID, &tx.MerchantID, &tx.OriginalPaymentID,
		&amountStr, &cryptoCurrency, &tx.FiatAmount, &fiatCurrency, &tx.ExchangeRate,
		&status, &method, &provider, &fees, &bankingSnapshot, &payoutDetails, &errorDetails,
		&tx.InitiatedAt, &tx.ProcessedAt, &tx.CompletedAt, &tx.FailedAt,
	}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse crypto amount %q: %w", amountStr, err)
	}
	tx.CryptoAmount = amount
	tx.CryptoCurrency = domain.CryptoCurrency(cryptoCurrency)
	tx.FiatCurrency = domain.FiatCurrency(fiatCurrency)
	tx.Status = domain.ConversionStatus(status)
	tx.Method = domain.ConversionMethod(method)
	tx.Provider = domain.ConversionProvider(provider)

	if err = json.Unmarshal(fees, &tx.Fees); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fees: %w", err)
	}
	if err = json.Unmarshal(bankingSnapshot, &tx.BankingSnapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal banking snapshot: %w", err)
	}
	if len(payoutDetails) > 0 {
		tx.Payout = &domain.PayoutDetails{}
		if err = json.Unmarshal(payoutDetails, tx.Payout); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payout details: %w", err)
		}
	}
	if len(errorDetails) > 0 {
		tx.Error = &domain.ErrorDetails{}
		if err = json.Unmarshal(errorDetails, tx.Error); err != nil {
			return nil, fmt.Errorf("failed to unmarshal error details: %w", err)
		}
	}
	return &tx, nil
}
