package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
	"lotto-pos/internal/pkg/lock"
)

// Slip entry and payment errors.
var (
	ErrNoBetItems       = errors.New("slip has no bet items")
	ErrUnknownBetType   = errors.New("unknown bet type")
	ErrInvalidBetNumber = errors.New("invalid bet number")
	ErrInvalidAmount    = errors.New("invalid amount: must be positive")
	ErrDrawNotOpen      = errors.New("draw is not open for betting")
	ErrNumberBanned     = errors.New("number is banned for this draw")
	ErrNumberBlocked    = errors.New("number is blocked by the agent")
	ErrSlipNotWinning   = errors.New("slip is not in a winning status")
)

// BetItemInput is one entry-form line before validation.
type BetItemInput struct {
	Type   string          `json:"type"`
	Number string          `json:"number"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateSlipInput is the entry form for a new slip.
type CreateSlipInput struct {
	SlipNumber   string         `json:"slipNumber,omitempty"`
	CustomerName string         `json:"customerName"`
	DrawID       *uuid.UUID     `json:"drawId,omitempty"`
	AgentID      *uuid.UUID     `json:"agentId,omitempty"`
	Items        []BetItemInput `json:"items"`
}

// SlipService handles slip entry, routing and payment. Entry-time
// validation lives here, in front of the settlement core: malformed
// numbers, banned numbers and blocked numbers are rejected before a
// slip ever exists, so settlement never needs to present an error.
type SlipService struct {
	slips  SlipStore
	draws  DrawStore
	agents AgentStore
	clock  clockwork.Clock
	locks  *lock.DrawLock

	numberPrefix string
}

// NewSlipService creates a new SlipService instance.
func NewSlipService(slips SlipStore, draws DrawStore, agents AgentStore, clock clockwork.Clock, locks *lock.DrawLock, numberPrefix string) *SlipService {
	return &SlipService{
		slips:        slips,
		draws:        draws,
		agents:       agents,
		clock:        clock,
		locks:        locks,
		numberPrefix: numberPrefix,
	}
}

// Create validates and stores a new slip against the open draw (or the
// draw named in the input). Items are normalized to canonical bet types
// and zero-padded numbers before they are stored; nothing downstream
// ever sees an alias label or a short number.
func (s *SlipService) Create(ctx context.Context, input CreateSlipInput) (*model.Slip, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoBetItems
	}

	draw, err := s.resolveDraw(ctx, input.DrawID)
	if err != nil {
		return nil, err
	}
	if draw.Status != model.DrawOpen {
		return nil, ErrDrawNotOpen
	}

	var agent *model.Agent
	if input.AgentID != nil {
		agent, err = s.agents.GetByID(ctx, *input.AgentID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve agent: %w", err)
		}
	}

	items := make([]model.BetItem, 0, len(input.Items))
	total := decimal.Zero
	for _, in := range input.Items {
		item, err := validateItem(in, draw, agent)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		total = total.Add(item.Amount)
	}

	slip := &model.Slip{
		ID:           uuid.New(),
		SlipNumber:   input.SlipNumber,
		CustomerName: input.CustomerName,
		Items:        items,
		TotalAmount:  total,
		Status:       model.SlipPendingResult,
		DrawID:       &draw.ID,
	}
	if slip.SlipNumber == "" {
		slip.SlipNumber = s.generateSlipNumber(slip.ID)
	}
	if agent != nil {
		slip.AgentID = &agent.ID
		slip.AgentName = agent.Name
	}

	return s.slips.Create(ctx, slip)
}

// validateItem normalizes one entry line and applies the two entry-time
// ban policies: draw-level banned numbers reject outright, and agent
// sets without a payout percent block the number entirely. Sets with a
// percent are allowed through; they scale payout at settlement instead.
func validateItem(in BetItemInput, draw *model.Draw, agent *model.Agent) (model.BetItem, error) {
	t, ok := bettype.Normalize(in.Type)
	if !ok {
		return model.BetItem{}, fmt.Errorf("%w: %q", ErrUnknownBetType, in.Type)
	}
	number, ok := bettype.NormalizeNumber(t, in.Number)
	if !ok {
		return model.BetItem{}, fmt.Errorf("%w: %q for type %s", ErrInvalidBetNumber, in.Number, t)
	}
	if !in.Amount.IsPositive() {
		return model.BetItem{}, fmt.Errorf("%w: %s", ErrInvalidAmount, in.Amount)
	}

	width := t.Width()
	for _, banned := range draw.BannedNumbers[t] {
		if bettype.PadNumber(banned, width) == number {
			return model.BetItem{}, fmt.Errorf("%w: %s", ErrNumberBanned, number)
		}
	}
	if agent != nil {
		for _, set := range agent.BannedNumbers[t] {
			if !set.Blocking() {
				continue
			}
			for _, n := range set.Numbers {
				if bettype.PadNumber(n, width) == number {
					return model.BetItem{}, fmt.Errorf("%w: %s", ErrNumberBlocked, number)
				}
			}
		}
	}

	return model.BetItem{
		ID:     uuid.New(),
		Type:   t,
		Number: number,
		Amount: in.Amount,
	}, nil
}

func (s *SlipService) resolveDraw(ctx context.Context, drawID *uuid.UUID) (*model.Draw, error) {
	if drawID != nil {
		draw, err := s.draws.GetByID(ctx, *drawID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve draw: %w", err)
		}
		return draw, nil
	}
	draw, err := s.draws.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve open draw: %w", err)
	}
	return draw, nil
}

// generateSlipNumber builds a human-facing slip number: prefix, entry
// date, and a short unique suffix taken from the slip ID.
func (s *SlipService) generateSlipNumber(id uuid.UUID) string {
	return fmt.Sprintf("%s-%s-%s",
		s.numberPrefix,
		s.clock.Now().Format("20060102"),
		id.String()[:8],
	)
}

// MarkPaid records that a winning slip's payout was handed to the
// customer. Only won or unpaid-due slips can be paid, and payment is
// irreversible: paid slips are excluded from later re-settlement.
//
// The status check and write run under the slip's draw lock so a
// payment cannot slip between a settlement pass's read and its write.
// Without it an amendment could demote a just-paid slip to lost.
func (s *SlipService) MarkPaid(ctx context.Context, id uuid.UUID) error {
	slip, err := s.slips.GetByID(ctx, id)
	if err != nil {
		return err
	}
	pay := func() error {
		slip, err := s.slips.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if slip.Status != model.SlipWon && slip.Status != model.SlipUnpaidDue {
			return fmt.Errorf("%w: status %s", ErrSlipNotWinning, slip.Status)
		}
		return s.slips.UpdateStatus(ctx, id, model.SlipPaid)
	}
	if slip.DrawID == nil {
		// A draw-less slip cannot race a settlement pass, so no lock is
		// needed.
		return pay()
	}
	return s.locks.WithLock(*slip.DrawID, pay)
}

// MarkUnpaidDue flags a winning slip whose payout is overdue. Like
// MarkPaid it serializes with settlement through the draw lock.
func (s *SlipService) MarkUnpaidDue(ctx context.Context, id uuid.UUID) error {
	slip, err := s.slips.GetByID(ctx, id)
	if err != nil {
		return err
	}
	flag := func() error {
		slip, err := s.slips.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if slip.Status != model.SlipWon {
			return fmt.Errorf("%w: status %s", ErrSlipNotWinning, slip.Status)
		}
		return s.slips.UpdateStatus(ctx, id, model.SlipUnpaidDue)
	}
	if slip.DrawID == nil {
		// A draw-less slip cannot race a settlement pass, so no lock is
		// needed.
		return flag()
	}
	return s.locks.WithLock(*slip.DrawID, flag)
}

// AssignAgent routes a slip to an agent, or clears the routing when
// agentID is nil. Routing is independent of settlement status and may
// be changed after a slip has settled.
func (s *SlipService) AssignAgent(ctx context.Context, slipID uuid.UUID, agentID *uuid.UUID) error {
	if _, err := s.slips.GetByID(ctx, slipID); err != nil {
		return err
	}

	var agentName string
	if agentID != nil {
		agent, err := s.agents.GetByID(ctx, *agentID)
		if err != nil {
			return fmt.Errorf("failed to resolve agent: %w", err)
		}
		agentName = agent.Name
	}
	return s.slips.AssignAgent(ctx, slipID, agentID, agentName)
}

// Get returns a slip by ID.
func (s *SlipService) Get(ctx context.Context, id uuid.UUID) (*model.Slip, error) {
	return s.slips.GetByID(ctx, id)
}

// List returns recent slips, or a draw's slips when drawID is set.
func (s *SlipService) List(ctx context.Context, drawID *uuid.UUID, limit int) ([]*model.Slip, error) {
	if drawID != nil {
		return s.slips.ListByDraw(ctx, *drawID)
	}
	if limit <= 0 {
		limit = 100
	}
	return s.slips.List(ctx, limit)
}

// ListByAgent returns all slips routed to an agent, newest first.
func (s *SlipService) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*model.Slip, error) {
	if _, err := s.agents.GetByID(ctx, agentID); err != nil {
		return nil, fmt.Errorf("failed to resolve agent: %w", err)
	}
	return s.slips.ListByAgent(ctx, agentID)
}
