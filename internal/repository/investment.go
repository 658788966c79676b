package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shotaro-dev/gold-digger/internal/models"
)

// ErrValidation marks a rejected ledger write; wrapped errors carry the field
// detail. Entries failing validation never reach storage.
var ErrValidation = errors.New("invalid investment")

const investmentColumns = `id, user_id, investment_amount, price_per_oz, gold_amount, created_at`

// InvestmentRepo is the append-only ledger. There is deliberately no update
// or delete: rows are financial records and stay as written.
type InvestmentRepo struct {
	pool *pgxpool.Pool
}

func NewInvestmentRepo(pool *pgxpool.Pool) *InvestmentRepo {
	return &InvestmentRepo{pool: pool}
}

// Record persists one purchase. The gold amount is computed here, once, from
// the caller-observed price; it is never re-derived from a later market price.
func (r *InvestmentRepo) Record(ctx context.Context, userID int64, amountUSD, pricePerOz float64) (*models.Investment, error) {
	if err := validatePurchase(amountUSD, pricePerOz); err != nil {
		return nil, err
	}
	goldAmount := amountUSD / pricePerOz

	row := r.pool.QueryRow(ctx,
		`INSERT INTO investments (user_id, investment_amount, price_per_oz, gold_amount)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+investmentColumns,
		userID, amountUSD, pricePerOz, goldAmount,
	)
	return scanInvestment(row)
}

// Summarize aggregates one user's rows. A user with no rows gets zeroes, not
// an error.
func (r *InvestmentRepo) Summarize(ctx context.Context, userID int64) (*models.PortfolioSummary, error) {
	var s models.PortfolioSummary
	err := r.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(investment_amount), 0),
			COALESCE(SUM(gold_amount), 0),
			CASE
				WHEN SUM(gold_amount) > 0
				THEN SUM(investment_amount) / SUM(gold_amount)
				ELSE 0
			END
		 FROM investments
		 WHERE user_id = $1`,
		userID,
	).Scan(&s.TotalInvestedUSD, &s.TotalGoldOz, &s.AveragePrice)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns one user's entries, newest first.
func (r *InvestmentRepo) ListByUser(ctx context.Context, userID int64) ([]models.Investment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+investmentColumns+`
		 FROM investments
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvestments(rows)
}

// ListAll returns every entry across all users, newest first (admin view).
func (r *InvestmentRepo) ListAll(ctx context.Context) ([]models.Investment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+investmentColumns+`
		 FROM investments
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvestments(rows)
}

func validatePurchase(amountUSD, pricePerOz float64) error {
	if math.IsNaN(amountUSD) || math.IsInf(amountUSD, 0) || amountUSD <= 0 {
		return fmt.Errorf("%w: investmentAmount must be a positive number", ErrValidation)
	}
	if math.IsNaN(pricePerOz) || math.IsInf(pricePerOz, 0) || pricePerOz <= 0 {
		return fmt.Errorf("%w: pricePerOz must be a positive number", ErrValidation)
	}
	return nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanInvestment(row scannable) (*models.Investment, error) {
	var inv models.Investment
	err := row.Scan(&inv.ID, &inv.UserID, &inv.InvestmentAmount, &inv.PricePerOz, &inv.GoldAmount, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectInvestments(rows rowsIter) ([]models.Investment, error) {
	var out []models.Investment
	for rows.Next() {
		var inv models.Investment
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.InvestmentAmount, &inv.PricePerOz, &inv.GoldAmount, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
