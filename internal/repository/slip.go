// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
)

// Common errors for repository operations.
var (
	ErrSlipNotFound   = errors.New("slip not found")
	ErrDrawNotFound   = errors.New("draw not found")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrNoOpenDraw     = errors.New("no open draw")
	ErrOpenDrawExists = errors.New("another draw is already open")
)

const slipColumns = `
	id, slip_number, customer_name, items, total_amount::text, status,
	draw_id, agent_id, agent_name, created_at, updated_at
`

// SlipRepository handles slip persistence.
type SlipRepository struct {
	pool *pgxpool.Pool
}

// NewSlipRepository creates a new SlipRepository instance.
func NewSlipRepository(pool *pgxpool.Pool) *SlipRepository {
	return &SlipRepository{pool: pool}
}

// Create inserts a new slip.
func (r *SlipRepository) Create(ctx context.Context, slip *model.Slip) (*model.Slip, error) {
	const query = `
		INSERT INTO slips (id, slip_number, customer_name, items, total_amount, status,
			draw_id, agent_id, agent_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + slipColumns

	row := r.pool.QueryRow(ctx, query,
		slip.ID,
		slip.SlipNumber,
		slip.CustomerName,
		slip.Items,
		slip.TotalAmount.String(),
		slip.Status,
		slip.DrawID,
		slip.AgentID,
		slip.AgentName,
	)
	created, err := scanSlip(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create slip: %w", err)
	}
	return created, nil
}

// GetByID retrieves a slip by its ID.
// Returns ErrSlipNotFound if the slip does not exist.
func (r *SlipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slip, error) {
	const query = `SELECT ` + slipColumns + ` FROM slips WHERE id = $1`

	slip, err := scanSlip(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlipNotFound
		}
		return nil, fmt.Errorf("failed to get slip: %w", err)
	}
	return slip, nil
}

// ListByDraw retrieves all slips placed against a draw, newest first.
func (r *SlipRepository) ListByDraw(ctx context.Context, drawID uuid.UUID) ([]*model.Slip, error) {
	const query = `
		SELECT ` + slipColumns + `
		FROM slips
		WHERE draw_id = $1
		ORDER BY created_at DESC
	`
	return r.querySlips(ctx, query, drawID)
}

// ListByAgent retrieves all slips routed to an agent, newest first.
func (r *SlipRepository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*model.Slip, error) {
	const query = `
		SELECT ` + slipColumns + `
		FROM slips
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`
	return r.querySlips(ctx, query, agentID)
}

// List retrieves the most recent slips up to limit.
func (r *SlipRepository) List(ctx context.Context, limit int) ([]*model.Slip, error) {
	const query = `
		SELECT ` + slipColumns + `
		FROM slips
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.querySlips(ctx, query, limit)
}

// UpdateStatus sets a slip's status.
func (r *SlipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SlipStatus) error {
	const query = `
		UPDATE slips
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update slip status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSlipNotFound
	}
	return nil
}

// UpdateStatuses applies a batch of status changes in one transaction,
// so a settlement pass is observed either fully applied or not at all.
func (r *SlipRepository) UpdateStatuses(ctx context.Context, changes map[uuid.UUID]model.SlipStatus) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
		UPDATE slips
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
	for id, status := range changes {
		if _, err := tx.Exec(ctx, query, id, status); err != nil {
			return fmt.Errorf("failed to update slip %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status changes: %w", err)
	}
	return nil
}

// AssignAgent routes a slip to an agent. Routing is independent of the
// settlement lifecycle and may be changed at any time.
func (r *SlipRepository) AssignAgent(ctx context.Context, id uuid.UUID, agentID *uuid.UUID, agentName string) error {
	const query = `
		UPDATE slips
		SET agent_id = $2, agent_name = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, agentID, agentName)
	if err != nil {
		return fmt.Errorf("failed to assign agent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSlipNotFound
	}
	return nil
}

func (r *SlipRepository) querySlips(ctx context.Context, query string, args ...any) ([]*model.Slip, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slips: %w", err)
	}
	defer rows.Close()

	var slips []*model.Slip
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slip: %w", err)
		}
		slips = append(slips, slip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slips: %w", err)
	}
	return slips, nil
}

func scanSlip(row pgx.Row) (*model.Slip, error) {
	var (
		slip        model.Slip
		totalAmount string
	)
	err := row.Scan(
		&slip.ID,
		&slip.SlipNumber,
		&slip.CustomerName,
		&slip.Items,
		&totalAmount,
		&slip.Status,
		&slip.DrawID,
		&slip.AgentID,
		&slip.AgentName,
		&slip.CreatedAt,
		&slip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slip.TotalAmount, err = decimal.NewFromString(totalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid total_amount %q: %w", totalAmount, err)
	}

	// Rows written before alias collapsing may still carry alias tags.
	for i := range slip.Items {
		if t, ok := bettype.Parse(string(slip.Items[i].Type)); ok {
			slip.Items[i].Type = t
		}
	}
	return &slip, nil
}
