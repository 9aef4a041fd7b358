package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
	"lotto-pos/internal/pkg/lock"
)

type testEnv struct {
	store      *memStore
	draws      *memDraws
	agents     *memAgents
	clock      *clockwork.FakeClock
	locks      *lock.DrawLock
	slips      *SlipService
	drawSvc    *DrawService
	agentSvc   *AgentService
	settlement *SettlementService
	reports    *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	draws := &memDraws{store}
	agents := &memAgents{store}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	locks := lock.NewDrawLock()
	settlement := NewSettlementService(store, draws, agents, locks)
	return &testEnv{
		store:      store,
		draws:      draws,
		agents:     agents,
		clock:      clock,
		locks:      locks,
		slips:      NewSlipService(store, draws, agents, clock, locks, "S"),
		drawSvc:    NewDrawService(draws, settlement, clock, 24*time.Hour),
		agentSvc:   NewAgentService(agents),
		settlement: settlement,
		reports:    NewReportService(store, draws, agents),
	}
}

func (e *testEnv) openDraw(t *testing.T) *model.Draw {
	t.Helper()
	draw, err := e.drawSvc.Open(context.Background(), OpenDrawInput{Label: "งวด 1 มี.ค."})
	require.NoError(t, err)
	return draw
}

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCreateSlip(t *testing.T) {
	env := newTestEnv(t)
	env.openDraw(t)
	ctx := context.Background()

	slip, err := env.slips.Create(ctx, CreateSlipInput{
		CustomerName: "สมชาย",
		Items: []BetItemInput{
			{Type: "2 ตัวบน", Number: "5", Amount: amt(100)},
			{Type: "3 โต๊ด", Number: "123", Amount: amt(50)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SlipPendingResult, slip.Status)
	assert.True(t, slip.TotalAmount.Equal(amt(150)))
	require.Len(t, slip.Items, 2)
	// Aliases collapsed and numbers padded at the entry boundary.
	assert.Equal(t, bettype.Top2, slip.Items[0].Type)
	assert.Equal(t, "05", slip.Items[0].Number)
	assert.Equal(t, bettype.Tod3, slip.Items[1].Type)
	// Auto-generated slip number carries the prefix and entry date.
	assert.Contains(t, slip.SlipNumber, "S-20260301-")
	require.NotNil(t, slip.DrawID)
}

func TestCreateSlipValidation(t *testing.T) {
	env := newTestEnv(t)
	draw := env.openDraw(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		items   []BetItemInput
		wantErr error
	}{
		{"no items", nil, ErrNoBetItems},
		{"unknown type", []BetItemInput{{Type: "4 ตัวบน", Number: "1234", Amount: amt(10)}}, ErrUnknownBetType},
		{"bad number", []BetItemInput{{Type: "top2", Number: "1234", Amount: amt(10)}}, ErrInvalidBetNumber},
		{"zero amount", []BetItemInput{{Type: "top2", Number: "12", Amount: decimal.Zero}}, ErrInvalidAmount},
		{"negative amount", []BetItemInput{{Type: "top2", Number: "12", Amount: amt(-5)}}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.slips.Create(ctx, CreateSlipInput{DrawID: &draw.ID, Items: tt.items})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("one bad item rejects the whole slip", func(t *testing.T) {
		_, err := env.slips.Create(ctx, CreateSlipInput{
			DrawID: &draw.ID,
			Items: []BetItemInput{
				{Type: "top2", Number: "12", Amount: amt(10)},
				{Type: "top2", Number: "xx", Amount: amt(10)},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidBetNumber)
		slips, err := env.store.ListByDraw(ctx, draw.ID)
		require.NoError(t, err)
		assert.Empty(t, slips)
	})
}

func TestCreateSlipClosedDraw(t *testing.T) {
	env := newTestEnv(t)
	draw := env.openDraw(t)
	ctx := context.Background()

	_, err := env.drawSvc.CloseBetting(ctx, draw.ID)
	require.NoError(t, err)

	_, err = env.slips.Create(ctx, CreateSlipInput{
		DrawID: &draw.ID,
		Items:  []BetItemInput{{Type: "top2", Number: "12", Amount: amt(10)}},
	})
	assert.ErrorIs(t, err, ErrDrawNotOpen)
}

func TestCreateSlipDrawBannedNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.drawSvc.Open(ctx, OpenDrawInput{
		Label:         "banned draw",
		BannedNumbers: map[string][]string{"top2": {"5"}},
	})
	require.NoError(t, err)

	// Padded forms of the banned number are rejected too.
	_, err = env.slips.Create(ctx, CreateSlipInput{
		Items: []BetItemInput{{Type: "top2", Number: "05", Amount: amt(10)}},
	})
	assert.ErrorIs(t, err, ErrNumberBanned)

	// Other numbers pass.
	_, err = env.slips.Create(ctx, CreateSlipInput{
		Items: []BetItemInput{{Type: "top2", Number: "06", Amount: amt(10)}},
	})
	assert.NoError(t, err)
}

func TestCreateSlipAgentBlockedNumber(t *testing.T) {
	env := newTestEnv(t)
	env.openDraw(t)
	ctx := context.Background()

	percent := amt(40)
	agent, err := env.agentSvc.Save(ctx, SaveAgentInput{
		Name:              "north",
		CommissionPercent: amt(10),
		BannedNumbers: map[string][]BannedSetInput{
			"top2": {
				{Numbers: []string{"11"}},                          // blocking: no percent
				{Numbers: []string{"22"}, PayoutPercent: &percent}, // rate-limited only
			},
		},
	})
	require.NoError(t, err)

	// A set without a percent blocks the number at entry.
	_, err = env.slips.Create(ctx, CreateSlipInput{
		AgentID: &agent.ID,
		Items:   []BetItemInput{{Type: "top2", Number: "11", Amount: amt(10)}},
	})
	assert.ErrorIs(t, err, ErrNumberBlocked)

	// A rate-limited set lets the bet in; only its payout is scaled later.
	slip, err := env.slips.Create(ctx, CreateSlipInput{
		AgentID: &agent.ID,
		Items:   []BetItemInput{{Type: "top2", Number: "22", Amount: amt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "north", slip.AgentName)
}

func TestMarkPaid(t *testing.T) {
	env := newTestEnv(t)
	env.openDraw(t)
	ctx := context.Background()

	slip, err := env.slips.Create(ctx, CreateSlipInput{
		Items: []BetItemInput{{Type: "top2", Number: "12", Amount: amt(10)}},
	})
	require.NoError(t, err)

	// Pending slips cannot be paid.
	err = env.slips.MarkPaid(ctx, slip.ID)
	assert.ErrorIs(t, err, ErrSlipNotWinning)

	require.NoError(t, env.store.UpdateStatus(ctx, slip.ID, model.SlipWon))
	require.NoError(t, env.slips.MarkPaid(ctx, slip.ID))

	stored, err := env.store.GetByID(ctx, slip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlipPaid, stored.Status)

	// Payment is irreversible; paying again conflicts.
	err = env.slips.MarkPaid(ctx, slip.ID)
	assert.ErrorIs(t, err, ErrSlipNotWinning)
}

func TestAssignAgent(t *testing.T) {
	env := newTestEnv(t)
	env.openDraw(t)
	ctx := context.Background()

	agent, err := env.agentSvc.Save(ctx, SaveAgentInput{Name: "south", CommissionPercent: amt(5)})
	require.NoError(t, err)

	slip, err := env.slips.Create(ctx, CreateSlipInput{
		Items: []BetItemInput{{Type: "top2", Number: "12", Amount: amt(10)}},
	})
	require.NoError(t, err)

	require.NoError(t, env.slips.AssignAgent(ctx, slip.ID, &agent.ID))
	stored, err := env.store.GetByID(ctx, slip.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AgentID)
	assert.Equal(t, "south", stored.AgentName)

	// Clearing the routing.
	require.NoError(t, env.slips.AssignAgent(ctx, slip.ID, nil))
	stored, err = env.store.GetByID(ctx, slip.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AgentID)
	assert.Empty(t, stored.AgentName)

	// Unknown agents are rejected.
	bogus := uuid.New()
	err = env.slips.AssignAgent(ctx, slip.ID, &bogus)
	assert.Error(t, err)
}

func TestListByAgent(t *testing.T) {
	env := newTestEnv(t)
	env.openDraw(t)
	ctx := context.Background()

	agent, err := env.agentSvc.Save(ctx, SaveAgentInput{Name: "east", CommissionPercent: amt(5)})
	require.NoError(t, err)

	routed, err := env.slips.Create(ctx, CreateSlipInput{
		AgentID: &agent.ID,
		Items:   []BetItemInput{{Type: "top2", Number: "12", Amount: amt(10)}},
	})
	require.NoError(t, err)
	_, err = env.slips.Create(ctx, CreateSlipInput{
		Items: []BetItemInput{{Type: "top2", Number: "34", Amount: amt(10)}},
	})
	require.NoError(t, err)

	slips, err := env.slips.ListByAgent(ctx, agent.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.Equal(t, routed.ID, slips[0].ID)

	_, err = env.slips.ListByAgent(ctx, uuid.New())
	assert.Error(t, err)
}
