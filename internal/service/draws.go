package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
)

// Draw lifecycle errors.
var (
	ErrInvalidResult         = errors.New("invalid result numbers")
	ErrInvalidRate           = errors.New("invalid payout rate")
	ErrResultAlreadyRecorded = errors.New("result already recorded; amend instead")
	ErrNoResultRecorded      = errors.New("no result recorded yet")
	ErrEditWindowClosed      = errors.New("result edit window has closed")
	ErrDrawAlreadyClosed     = errors.New("draw already closed")
)

// ResultInput carries the four official numbers entered by staff.
type ResultInput struct {
	Top2      string `json:"top2"`
	Bottom2   string `json:"bottom2"`
	Straight3 string `json:"straight3"`
	Tod3      string `json:"tod3"`
}

// OpenDrawInput configures a new betting period.
type OpenDrawInput struct {
	Label         string                     `json:"label"`
	BannedNumbers map[string][]string        `json:"bannedNumbers,omitempty"`
	PayoutRates   map[string]decimal.Decimal `json:"payoutRates,omitempty"`
}

// DrawService manages the draw lifecycle: opening, closing with a
// result, and amending a result inside the edit window. Every result
// write triggers a settlement pass over the draw's slips.
type DrawService struct {
	draws      DrawStore
	settlement *SettlementService
	clock      clockwork.Clock

	// editWindow is how long after recording a result remains amendable.
	editWindow time.Duration
}

// NewDrawService creates a new DrawService instance.
func NewDrawService(draws DrawStore, settlement *SettlementService, clock clockwork.Clock, editWindow time.Duration) *DrawService {
	return &DrawService{
		draws:      draws,
		settlement: settlement,
		clock:      clock,
		editWindow: editWindow,
	}
}

// Open creates a new open draw. The store enforces that at most one
// draw is open at a time.
func (s *DrawService) Open(ctx context.Context, input OpenDrawInput) (*model.Draw, error) {
	banned, err := normalizeBannedNumbers(input.BannedNumbers)
	if err != nil {
		return nil, err
	}
	rates, err := normalizeRates(input.PayoutRates)
	if err != nil {
		return nil, err
	}

	draw := &model.Draw{
		ID:            uuid.New(),
		Label:         input.Label,
		Status:        model.DrawOpen,
		OpenedAt:      s.clock.Now(),
		BannedNumbers: banned,
		PayoutRates:   rates,
	}
	created, err := s.draws.Create(ctx, draw)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("draw_id", created.ID.String()).
		Str("label", created.Label).
		Msg("Draw opened")
	return created, nil
}

// CloseWithResult closes an open draw, records its official result and
// settles every slip placed against it. The result is set exactly once
// here; later corrections go through AmendResult.
func (s *DrawService) CloseWithResult(ctx context.Context, drawID uuid.UUID, input ResultInput) (*model.Draw, error) {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Result != nil {
		return nil, ErrResultAlreadyRecorded
	}

	result, err := normalizeResult(input, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if draw.Status == model.DrawOpen {
		if err := s.draws.Close(ctx, drawID, s.clock.Now()); err != nil {
			return nil, err
		}
	}
	if err := s.draws.SetResult(ctx, drawID, result); err != nil {
		return nil, err
	}

	log.Info().
		Str("draw_id", drawID.String()).
		Str("top2", result.Top2).
		Str("bottom2", result.Bottom2).
		Str("straight3", result.Straight3).
		Str("tod3", result.Tod3).
		Msg("Draw result recorded")

	if err := s.settlement.Resettle(ctx, drawID); err != nil {
		return nil, fmt.Errorf("result recorded but settlement failed: %w", err)
	}
	return s.draws.GetByID(ctx, drawID)
}

// AmendResult replaces a recorded result while the edit window is still
// open and re-settles the draw. Paid slips keep their status; everything
// else is re-derived from the amended numbers.
func (s *DrawService) AmendResult(ctx context.Context, drawID uuid.UUID, input ResultInput) (*model.Draw, error) {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Result == nil {
		return nil, ErrNoResultRecorded
	}
	if !resultEditable(draw.Result.RecordedAt, s.clock.Now(), s.editWindow) {
		return nil, ErrEditWindowClosed
	}

	// Keep the original recording time so the window does not reset
	// with every amendment.
	result, err := normalizeResult(input, draw.Result.RecordedAt)
	if err != nil {
		return nil, err
	}
	if err := s.draws.SetResult(ctx, drawID, result); err != nil {
		return nil, err
	}

	log.Info().
		Str("draw_id", drawID.String()).
		Str("straight3", result.Straight3).
		Msg("Draw result amended")

	if err := s.settlement.Resettle(ctx, drawID); err != nil {
		return nil, fmt.Errorf("result amended but settlement failed: %w", err)
	}
	return s.draws.GetByID(ctx, drawID)
}

// UpdateConfig replaces a draw's label, banned numbers and payout
// rates. Changing banned numbers affects future entry only; slips
// already placed are not revisited.
func (s *DrawService) UpdateConfig(ctx context.Context, drawID uuid.UUID, input OpenDrawInput) (*model.Draw, error) {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}

	banned, err := normalizeBannedNumbers(input.BannedNumbers)
	if err != nil {
		return nil, err
	}
	rates, err := normalizeRates(input.PayoutRates)
	if err != nil {
		return nil, err
	}

	draw.Label = input.Label
	draw.BannedNumbers = banned
	draw.PayoutRates = rates
	if err := s.draws.Update(ctx, draw); err != nil {
		return nil, err
	}
	return s.draws.GetByID(ctx, drawID)
}

// CloseBetting closes an open draw without recording a result, for
// stopping entry ahead of the official announcement.
func (s *DrawService) CloseBetting(ctx context.Context, drawID uuid.UUID) (*model.Draw, error) {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Status != model.DrawOpen {
		return nil, ErrDrawAlreadyClosed
	}
	if err := s.draws.Close(ctx, drawID, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.draws.GetByID(ctx, drawID)
}

// Get returns a draw by ID.
func (s *DrawService) Get(ctx context.Context, id uuid.UUID) (*model.Draw, error) {
	return s.draws.GetByID(ctx, id)
}

// GetOpen returns the currently open draw.
func (s *DrawService) GetOpen(ctx context.Context) (*model.Draw, error) {
	return s.draws.GetOpen(ctx)
}

// List returns all draws, newest first.
func (s *DrawService) List(ctx context.Context) ([]*model.Draw, error) {
	return s.draws.List(ctx)
}

// resultEditable reports whether a result recorded at recordedAt may
// still be amended at now.
func resultEditable(recordedAt, now time.Time, window time.Duration) bool {
	return now.Before(recordedAt.Add(window))
}

// normalizeResult validates the four official numbers and zero-pads
// them to canonical width.
func normalizeResult(input ResultInput, recordedAt time.Time) (*model.DrawResult, error) {
	top2, ok := bettype.NormalizeNumber(bettype.Top2, input.Top2)
	if !ok {
		return nil, fmt.Errorf("%w: top2 %q", ErrInvalidResult, input.Top2)
	}
	bottom2, ok := bettype.NormalizeNumber(bettype.Bottom2, input.Bottom2)
	if !ok {
		return nil, fmt.Errorf("%w: bottom2 %q", ErrInvalidResult, input.Bottom2)
	}
	straight3, ok := bettype.NormalizeNumber(bettype.Straight3, input.Straight3)
	if !ok {
		return nil, fmt.Errorf("%w: straight3 %q", ErrInvalidResult, input.Straight3)
	}
	// The tod field defaults to the straight number's digits when the
	// entry form leaves it blank.
	tod3 := input.Tod3
	if tod3 == "" {
		tod3 = straight3
	}
	tod3, ok = bettype.NormalizeNumber(bettype.Tod3, tod3)
	if !ok {
		return nil, fmt.Errorf("%w: tod3 %q", ErrInvalidResult, input.Tod3)
	}

	return &model.DrawResult{
		Top2:       top2,
		Bottom2:    bottom2,
		Straight3:  straight3,
		Tod3:       tod3,
		RecordedAt: recordedAt,
	}, nil
}

// normalizeBannedNumbers collapses alias keys and zero-pads every
// banned number to its type's width.
func normalizeBannedNumbers(input map[string][]string) (map[bettype.Type][]string, error) {
	if len(input) == 0 {
		return nil, nil
	}
	out := make(map[bettype.Type][]string, len(input))
	for label, numbers := range input {
		t, ok := bettype.Normalize(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBetType, label)
		}
		for _, n := range numbers {
			normalized, ok := bettype.NormalizeNumber(t, n)
			if !ok {
				return nil, fmt.Errorf("%w: %q for type %s", ErrInvalidBetNumber, n, t)
			}
			out[t] = append(out[t], normalized)
		}
	}
	return out, nil
}

// normalizeRates collapses alias keys and rejects negative rates.
func normalizeRates(input map[string]decimal.Decimal) (map[bettype.Type]decimal.Decimal, error) {
	if len(input) == 0 {
		return nil, nil
	}
	out := make(map[bettype.Type]decimal.Decimal, len(input))
	for label, rate := range input {
		t, ok := bettype.Normalize(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBetType, label)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("%w: %s for type %s", ErrInvalidRate, rate, t)
		}
		out[t] = rate
	}
	return out, nil
}
