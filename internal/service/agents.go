package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
)

// Agent configuration errors.
var (
	ErrInvalidCommission    = errors.New("commission percent must be between 0 and 100")
	ErrInvalidPayoutPercent = errors.New("payout percent must be between 0 and 100")
	ErrEmptyBannedSet       = errors.New("banned number set has no numbers")
)

// BannedSetInput is one rate-limited number set as entered.
type BannedSetInput struct {
	Numbers       []string         `json:"numbers"`
	PayoutPercent *decimal.Decimal `json:"payoutPercent,omitempty"`
}

// SaveAgentInput is the configuration form for an agent.
type SaveAgentInput struct {
	ID                *uuid.UUID                  `json:"id,omitempty"`
	Name              string                      `json:"name"`
	CommissionPercent decimal.Decimal             `json:"commissionPercent"`
	Payout2Digit      *decimal.Decimal            `json:"payout2Digit,omitempty"`
	Payout3Straight   *decimal.Decimal            `json:"payout3Straight,omitempty"`
	Payout3Tod        *decimal.Decimal            `json:"payout3Tod,omitempty"`
	BannedNumbers     map[string][]BannedSetInput `json:"bannedNumbers,omitempty"`
}

// AgentService validates and stores agent configuration. Bad rate
// configuration is rejected here, at write time, so settlement never
// has to fail on it: percents are range-checked, numbers are
// normalized, and alias type keys are collapsed.
type AgentService struct {
	agents AgentStore
}

// NewAgentService creates a new AgentService instance.
func NewAgentService(agents AgentStore) *AgentService {
	return &AgentService{agents: agents}
}

// Save validates the configuration and upserts the agent.
func (s *AgentService) Save(ctx context.Context, input SaveAgentInput) (*model.Agent, error) {
	if !percentInRange(input.CommissionPercent) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCommission, input.CommissionPercent)
	}
	for _, rate := range []*decimal.Decimal{input.Payout2Digit, input.Payout3Straight, input.Payout3Tod} {
		if rate != nil && rate.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRate, rate)
		}
	}

	banned, err := normalizeBannedSets(input.BannedNumbers)
	if err != nil {
		return nil, err
	}

	agent := &model.Agent{
		Name:              input.Name,
		CommissionPercent: input.CommissionPercent,
		Payout2Digit:      input.Payout2Digit,
		Payout3Straight:   input.Payout3Straight,
		Payout3Tod:        input.Payout3Tod,
		BannedNumbers:     banned,
	}
	if input.ID != nil {
		agent.ID = *input.ID
	} else {
		agent.ID = uuid.New()
	}

	return s.agents.Upsert(ctx, agent)
}

// Get returns an agent by ID.
func (s *AgentService) Get(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	return s.agents.GetByID(ctx, id)
}

// List returns all agents.
func (s *AgentService) List(ctx context.Context) ([]*model.Agent, error) {
	return s.agents.List(ctx)
}

// normalizeBannedSets collapses alias keys, zero-pads every number and
// range-checks percents. A set may omit its percent; that makes it an
// entry-time block rather than a settlement-time rate limit, and both
// kinds are stored as configured.
func normalizeBannedSets(input map[string][]BannedSetInput) (map[bettype.Type][]model.BannedNumberSet, error) {
	if len(input) == 0 {
		return nil, nil
	}
	out := make(map[bettype.Type][]model.BannedNumberSet, len(input))
	for label, sets := range input {
		t, ok := bettype.Normalize(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBetType, label)
		}
		for _, set := range sets {
			if len(set.Numbers) == 0 {
				return nil, fmt.Errorf("%w: type %s", ErrEmptyBannedSet, t)
			}
			if set.PayoutPercent != nil && !percentInRange(*set.PayoutPercent) {
				return nil, fmt.Errorf("%w: %s for type %s", ErrInvalidPayoutPercent, set.PayoutPercent, t)
			}
			normalized := model.BannedNumberSet{
				Numbers:       make([]string, 0, len(set.Numbers)),
				PayoutPercent: set.PayoutPercent,
			}
			for _, n := range set.Numbers {
				number, ok := bettype.NormalizeNumber(t, n)
				if !ok {
					return nil, fmt.Errorf("%w: %q for type %s", ErrInvalidBetNumber, n, t)
				}
				normalized.Numbers = append(normalized.Numbers, number)
			}
			out[t] = append(out[t], normalized)
		}
	}
	return out, nil
}

func percentInRange(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(decimal.NewFromInt(100))
}
