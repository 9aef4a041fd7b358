package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lotto-pos/internal/model"
	"lotto-pos/internal/pkg/lock"
	"lotto-pos/internal/settle"
)

// SettlementService runs the settlement core over a draw's slips and
// persists the derived statuses. The core itself is pure; this service
// owns the read-modify-write cycle around it.
type SettlementService struct {
	slips  SlipStore
	draws  DrawStore
	agents AgentStore
	locks  *lock.DrawLock
}

// NewSettlementService creates a new SettlementService instance.
func NewSettlementService(slips SlipStore, draws DrawStore, agents AgentStore, locks *lock.DrawLock) *SettlementService {
	return &SettlementService{
		slips:  slips,
		draws:  draws,
		agents: agents,
		locks:  locks,
	}
}

// Resettle re-derives the status of every settleable slip of a draw
// from its current result and persists the changes in one transaction.
// The pass is idempotent: running it twice against an unmodified result
// changes nothing the second time. Paid slips are skipped entirely.
//
// Concurrent passes for the same draw are serialized through the draw
// lock so no slip is observed mid-pass with a stale status.
func (s *SettlementService) Resettle(ctx context.Context, drawID uuid.UUID) error {
	return s.locks.WithLock(drawID, func() error {
		return s.resettle(ctx, drawID)
	})
}

func (s *SettlementService) resettle(ctx context.Context, drawID uuid.UUID) error {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return fmt.Errorf("failed to load draw: %w", err)
	}
	slips, err := s.slips.ListByDraw(ctx, drawID)
	if err != nil {
		return fmt.Errorf("failed to load slips: %w", err)
	}
	agents, err := s.agents.GetMap(ctx)
	if err != nil {
		return fmt.Errorf("failed to load agents: %w", err)
	}

	changes := make(map[uuid.UUID]model.SlipStatus)
	won, lost := 0, 0
	for _, slip := range slips {
		if !slip.Settleable() {
			continue
		}
		outcome := settle.SettleSlip(slip, draw, agentFor(slip, agents))
		switch outcome.Status {
		case model.SlipWon, model.SlipUnpaidDue:
			won++
		case model.SlipLost:
			lost++
		}
		if outcome.Status != slip.Status {
			changes[slip.ID] = outcome.Status
		}
	}

	if err := s.slips.UpdateStatuses(ctx, changes); err != nil {
		return fmt.Errorf("failed to persist settlement: %w", err)
	}

	log.Info().
		Str("draw_id", drawID.String()).
		Int("slips", len(slips)).
		Int("won", won).
		Int("lost", lost).
		Int("changed", len(changes)).
		Msg("Draw settled")
	return nil
}

// Summary computes the draw's sales/payout/profit figures from the
// currently persisted statuses. Read-only.
func (s *SettlementService) Summary(ctx context.Context, drawID uuid.UUID) (settle.DrawSummary, error) {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return settle.DrawSummary{}, fmt.Errorf("failed to load draw: %w", err)
	}
	slips, err := s.slips.ListByDraw(ctx, drawID)
	if err != nil {
		return settle.DrawSummary{}, fmt.Errorf("failed to load slips: %w", err)
	}
	agents, err := s.agents.GetMap(ctx)
	if err != nil {
		return settle.DrawSummary{}, fmt.Errorf("failed to load agents: %w", err)
	}
	return settle.Summarize(draw, slips, agents), nil
}

// SlipPayout computes the payout a single slip earns under its draw's
// current result and its routed agent's rates.
func (s *SettlementService) SlipPayout(ctx context.Context, slipID uuid.UUID) (settle.Outcome, error) {
	slip, err := s.slips.GetByID(ctx, slipID)
	if err != nil {
		return settle.Outcome{}, err
	}

	var draw *model.Draw
	if slip.DrawID != nil {
		draw, err = s.draws.GetByID(ctx, *slip.DrawID)
		if err != nil {
			return settle.Outcome{}, fmt.Errorf("failed to load draw: %w", err)
		}
	}

	var agent *model.Agent
	if slip.AgentID != nil {
		agent, err = s.agents.GetByID(ctx, *slip.AgentID)
		if err != nil {
			return settle.Outcome{}, fmt.Errorf("failed to load agent: %w", err)
		}
	}

	return settle.SettleSlip(slip, draw, agent), nil
}

func agentFor(slip *model.Slip, agents map[uuid.UUID]*model.Agent) *model.Agent {
	if slip.AgentID == nil {
		return nil
	}
	return agents[*slip.AgentID]
}
