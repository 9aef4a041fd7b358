package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lotto-pos/internal/model"
)

const drawColumns = `
	id, label, status, opened_at, closed_at, banned_numbers, payout_rates, result
`

// DrawRepository handles draw persistence.
type DrawRepository struct {
	pool *pgxpool.Pool
}

// NewDrawRepository creates a new DrawRepository instance.
func NewDrawRepository(pool *pgxpool.Pool) *DrawRepository {
	return &DrawRepository{pool: pool}
}

// Create inserts a new draw. When the draw is created open and another
// open draw exists, the partial unique index rejects the insert and
// ErrOpenDrawExists is returned.
func (r *DrawRepository) Create(ctx context.Context, draw *model.Draw) (*model.Draw, error) {
	const query = `
		INSERT INTO draws (id, label, status, opened_at, closed_at, banned_numbers, payout_rates, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + drawColumns

	row := r.pool.QueryRow(ctx, query,
		draw.ID,
		draw.Label,
		draw.Status,
		draw.OpenedAt,
		draw.ClosedAt,
		draw.BannedNumbers,
		draw.PayoutRates,
		draw.Result,
	)
	created, err := scanDraw(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrOpenDrawExists
		}
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}
	return created, nil
}

// GetByID retrieves a draw by its ID.
// Returns ErrDrawNotFound if the draw does not exist.
func (r *DrawRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Draw, error) {
	const query = `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`

	draw, err := scanDraw(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	return draw, nil
}

// GetOpen retrieves the currently open draw.
// Returns ErrNoOpenDraw when no draw is open.
func (r *DrawRepository) GetOpen(ctx context.Context) (*model.Draw, error) {
	const query = `SELECT ` + drawColumns + ` FROM draws WHERE status = 'open'`

	draw, err := scanDraw(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoOpenDraw
		}
		return nil, fmt.Errorf("failed to get open draw: %w", err)
	}
	return draw, nil
}

// List retrieves all draws, newest first.
func (r *DrawRepository) List(ctx context.Context) ([]*model.Draw, error) {
	const query = `SELECT ` + drawColumns + ` FROM draws ORDER BY opened_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	defer rows.Close()

	var draws []*model.Draw
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, draw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draws: %w", err)
	}
	return draws, nil
}

// Close marks a draw closed.
func (r *DrawRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error {
	const query = `
		UPDATE draws
		SET status = 'closed', closed_at = $2
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, closedAt)
	if err != nil {
		return fmt.Errorf("failed to close draw: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrDrawNotFound
	}
	return nil
}

// SetResult stores (or replaces, on amendment) the official result.
func (r *DrawRepository) SetResult(ctx context.Context, id uuid.UUID, result *model.DrawResult) error {
	const query = `
		UPDATE draws
		SET result = $2
		WHERE id = $1
	`
	res, err := r.pool.Exec(ctx, query, id, result)
	if err != nil {
		return fmt.Errorf("failed to set draw result: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrDrawNotFound
	}
	return nil
}

// Update replaces a draw's configurable fields (label, banned numbers,
// payout rates). Lifecycle fields go through Close/SetResult.
func (r *DrawRepository) Update(ctx context.Context, draw *model.Draw) error {
	const query = `
		UPDATE draws
		SET label = $2, banned_numbers = $3, payout_rates = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, draw.ID, draw.Label, draw.BannedNumbers, draw.PayoutRates)
	if err != nil {
		return fmt.Errorf("failed to update draw: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrDrawNotFound
	}
	return nil
}

func scanDraw(row pgx.Row) (*model.Draw, error) {
	var draw model.Draw
	err := row.Scan(
		&draw.ID,
		&draw.Label,
		&draw.Status,
		&draw.OpenedAt,
		&draw.ClosedAt,
		&draw.BannedNumbers,
		&draw.PayoutRates,
		&draw.Result,
	)
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
