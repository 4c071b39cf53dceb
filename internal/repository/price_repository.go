package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z"
)

// Coverage records that the price history of a symbol was fetched for a date range.
type Coverage struct {
	ID        string
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	FetchedAt time.Time
}

// PriceRepository provides data access methods for the price_history and
// price_coverage tables of the price cache.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetCoverage finds the most recent coverage record of symbol that spans [start, end]
// and was fetched at or after freshSince.
//
// Returns apperrors.ErrCacheMiss when no such record exists.
func (r *PriceRepository) GetCoverage(ctx context.Context, symbol string, start, end, freshSince time.Time) (Coverage, error) {
	query := `
		SELECT id, symbol, start_date, end_date, fetched_at
		FROM price_coverage
		WHERE symbol = ?
		AND start_date <= ?
		AND end_date >= ?
		AND fetched_at >= ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var c Coverage
	var startStr, endStr, fetchedStr string
	err := r.db.QueryRowContext(ctx, query,
		symbol,
		start.Format(dateLayout),
		end.Format(dateLayout),
		freshSince.UTC().Format(timestampLayout),
	).Scan(&c.ID, &c.Symbol, &startStr, &endStr, &fetchedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Coverage{}, fmt.Errorf("%w: %s", apperrors.ErrCacheMiss, symbol)
	}
	if err != nil {
		return Coverage{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToReadCache, err)
	}

	if c.StartDate, err = ParseTime(startStr); err != nil {
		return Coverage{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToReadCache, err)
	}
	if c.EndDate, err = ParseTime(endStr); err != nil {
		return Coverage{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToReadCache, err)
	}
	if c.FetchedAt, err = ParseTime(fetchedStr); err != nil {
		return Coverage{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToReadCache, err)
	}

	return c, nil
}

// GetPrices retrieves the cached closes of symbol between start and end (inclusive),
// ordered by date.
func (r *PriceRepository) GetPrices(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	query := `
		SELECT date, close
		FROM price_history
		WHERE symbol = ?
		AND date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, symbol, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query price_history: %w", apperrors.ErrFailedToReadCache, err)
	}
	defer rows.Close()

	points := []model.PricePoint{}
	for rows.Next() {
		var dateStr string
		var p model.PricePoint
		if err := rows.Scan(&dateStr, &p.Close); err != nil {
			return nil, fmt.Errorf("%w: failed to scan price_history results: %w", apperrors.ErrFailedToReadCache, err)
		}
		if p.Date, err = ParseTime(dateStr); err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToReadCache, err)
		}
		points = append(points, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating price_history: %w", apperrors.ErrFailedToReadCache, err)
	}

	return points, nil
}

// SavePrices stores the closes of symbol and records the fetched range in one transaction.
// Existing closes for the same dates are overwritten.
func (r *PriceRepository) SavePrices(ctx context.Context, symbol string, start, end time.Time, points []model.PricePoint, fetchedAt time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrFailedToWriteCache, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (symbol, date, close)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close
	`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %w", apperrors.ErrFailedToWriteCache, err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err = stmt.ExecContext(ctx, symbol, p.Date.Format(dateLayout), p.Close); err != nil {
			return fmt.Errorf("%w: failed to insert price for %s: %w", apperrors.ErrFailedToWriteCache, symbol, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO price_coverage (id, symbol, start_date, end_date, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		uuid.New().String(),
		symbol,
		start.Format(dateLayout),
		end.Format(dateLayout),
		fetchedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert coverage for %s: %w", apperrors.ErrFailedToWriteCache, symbol, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrFailedToWriteCache, err)
	}
	return nil
}

// PruneBefore deletes coverage records fetched before cutoff together with the price
// rows no remaining coverage record spans. It returns the number of coverage records removed.
func (r *PriceRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM price_coverage WHERE fetched_at < ?`,
		cutoff.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prune price_coverage: %w", apperrors.ErrFailedToWriteCache, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrFailedToWriteCache, err)
	}

	_, err = r.db.ExecContext(ctx, `
		DELETE FROM price_history
		WHERE NOT EXISTS (
			SELECT 1 FROM price_coverage c
			WHERE c.symbol = price_history.symbol
			AND price_history.date >= c.start_date
			AND price_history.date <= c.end_date
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prune price_history: %w", apperrors.ErrFailedToWriteCache, err)
	}

	return removed, nil
}

// CountPrices returns the number of cached closes. Used by the health endpoint.
func (r *PriceRepository) CountPrices(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM price_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrFailedToReadCache, err)
	}
	return n, nil
}
