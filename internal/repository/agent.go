package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/model"
)

const agentColumns = `
	id, name, commission_percent::text, payout_2digit::text, payout_3straight::text,
	payout_3tod::text, banned_numbers, created_at, updated_at
`

// AgentRepository handles agent persistence.
type AgentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository creates a new AgentRepository instance.
func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{pool: pool}
}

// Upsert inserts or fully replaces an agent's configuration.
func (r *AgentRepository) Upsert(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	const query = `
		INSERT INTO agents (id, name, commission_percent, payout_2digit, payout_3straight,
			payout_3tod, banned_numbers, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			commission_percent = EXCLUDED.commission_percent,
			payout_2digit = EXCLUDED.payout_2digit,
			payout_3straight = EXCLUDED.payout_3straight,
			payout_3tod = EXCLUDED.payout_3tod,
			banned_numbers = EXCLUDED.banned_numbers,
			updated_at = NOW()
		RETURNING ` + agentColumns

	row := r.pool.QueryRow(ctx, query,
		agent.ID,
		agent.Name,
		agent.CommissionPercent.String(),
		decimalString(agent.Payout2Digit),
		decimalString(agent.Payout3Straight),
		decimalString(agent.Payout3Tod),
		agent.BannedNumbers,
	)
	saved, err := scanAgent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert agent: %w", err)
	}
	return saved, nil
}

// GetByID retrieves an agent by its ID.
// Returns ErrAgentNotFound if the agent does not exist.
func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`

	agent, err := scanAgent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return agent, nil
}

// List retrieves all agents ordered by name.
func (r *AgentRepository) List(ctx context.Context) ([]*model.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var agents []*model.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents: %w", err)
	}
	return agents, nil
}

// GetMap retrieves all agents keyed by ID, for settlement passes that
// look agents up per slip.
func (r *AgentRepository) GetMap(ctx context.Context) (map[uuid.UUID]*model.Agent, error) {
	agents, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Agent, len(agents))
	for _, agent := range agents {
		byID[agent.ID] = agent
	}
	return byID, nil
}

func scanAgent(row pgx.Row) (*model.Agent, error) {
	var (
		agent        model.Agent
		commission   string
		p2, p3s, p3t *string
	)
	err := row.Scan(
		&agent.ID,
		&agent.Name,
		&commission,
		&p2,
		&p3s,
		&p3t,
		&agent.BannedNumbers,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	agent.CommissionPercent, err = decimal.NewFromString(commission)
	if err != nil {
		return nil, fmt.Errorf("invalid commission_percent %q: %w", commission, err)
	}
	if agent.Payout2Digit, err = parseDecimal(p2); err != nil {
		return nil, err
	}
	if agent.Payout3Straight, err = parseDecimal(p3s); err != nil {
		return nil, err
	}
	if agent.Payout3Tod, err = parseDecimal(p3t); err != nil {
		return nil, err
	}
	return &agent, nil
}

func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric %q: %w", *s, err)
	}
	return &d, nil
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
