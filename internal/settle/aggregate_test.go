package settle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
)

func drawWithResult(result *model.DrawResult) *model.Draw {
	return &model.Draw{
		ID:     uuid.New(),
		Status: model.DrawClosed,
		Result: result,
	}
}

// TestItemPayoutStraightWin covers the straight-3 win scenario at
// default rates: 100 stake at rate 800 pays 80000.
func TestItemPayoutStraightWin(t *testing.T) {
	draw := drawWithResult(testResult())
	bet := model.BetItem{Type: bettype.Straight3, Number: "123", Amount: d(100)}

	got := ItemPayout(bet, draw, nil)
	if !got.Equal(d(80000)) {
		t.Errorf("ItemPayout = %s, want 80000", got)
	}
}

// TestItemPayoutRunningMatch covers the running scenario: 50 stake at
// default rate 3 pays 150 when the digit appears in the combined result.
func TestItemPayoutRunningMatch(t *testing.T) {
	draw := drawWithResult(&model.DrawResult{Top2: "05", Bottom2: "47", Straight3: "123", Tod3: "123"})
	bet := model.BetItem{Type: bettype.Running, Number: "7", Amount: d(50)}

	got := ItemPayout(bet, draw, nil)
	if !got.Equal(d(150)) {
		t.Errorf("ItemPayout = %s, want 150", got)
	}
}

// TestItemPayoutBanScaling covers banned-number scaling:
// 100 x 70 x 40% = 2800.
func TestItemPayoutBanScaling(t *testing.T) {
	draw := drawWithResult(&model.DrawResult{Top2: "50", Bottom2: "12", Straight3: "123", Tod3: "123"})
	agent := agentWithSets(bettype.Top2, model.BannedNumberSet{
		Numbers:       []string{"50"},
		PayoutPercent: dp(40),
	})
	bet := model.BetItem{Type: bettype.Top2, Number: "50", Amount: d(100)}

	got := ItemPayout(bet, draw, agent)
	if !got.Equal(d(2800)) {
		t.Errorf("ItemPayout = %s, want 2800", got)
	}
}

// TestItemPayoutLosers checks every non-winning shape pays exactly zero.
func TestItemPayoutLosers(t *testing.T) {
	draw := drawWithResult(testResult())

	tests := []struct {
		name string
		bet  model.BetItem
	}{
		{"losing number", model.BetItem{Type: bettype.Top2, Number: "99", Amount: d(100)}},
		{"malformed number", model.BetItem{Type: bettype.Top2, Number: "x5", Amount: d(100)}},
		{"unknown type", model.BetItem{Type: bettype.Type("mystery"), Number: "05", Amount: d(100)}},
		{"zero stake", model.BetItem{Type: bettype.Top2, Number: "05", Amount: decimal.Zero}},
		{"negative stake", model.BetItem{Type: bettype.Top2, Number: "05", Amount: d(-100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemPayout(tt.bet, draw, nil); !got.IsZero() {
				t.Errorf("ItemPayout = %s, want 0", got)
			}
		})
	}

	t.Run("no result", func(t *testing.T) {
		bet := model.BetItem{Type: bettype.Top2, Number: "05", Amount: d(100)}
		if got := ItemPayout(bet, &model.Draw{}, nil); !got.IsZero() {
			t.Errorf("ItemPayout without result = %s, want 0", got)
		}
	})
}

func slipWithItems(status model.SlipStatus, items ...model.BetItem) *model.Slip {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return &model.Slip{
		ID:          uuid.New(),
		Items:       items,
		TotalAmount: total,
		Status:      status,
	}
}

// TestSettleSlip tests status derivation across the lifecycle.
func TestSettleSlip(t *testing.T) {
	draw := drawWithResult(testResult())
	winning := model.BetItem{Type: bettype.Straight3, Number: "123", Amount: d(100)}
	losing := model.BetItem{Type: bettype.Top2, Number: "99", Amount: d(50)}

	t.Run("winning item makes slip won", func(t *testing.T) {
		slip := slipWithItems(model.SlipPendingResult, winning, losing)
		outcome := SettleSlip(slip, draw, nil)
		if outcome.Status != model.SlipWon {
			t.Errorf("status = %s, want won", outcome.Status)
		}
		if !outcome.Payout.Equal(d(80000)) {
			t.Errorf("payout = %s, want 80000", outcome.Payout)
		}
	})

	t.Run("only losing items make slip lost", func(t *testing.T) {
		slip := slipWithItems(model.SlipPendingResult, losing)
		outcome := SettleSlip(slip, draw, nil)
		if outcome.Status != model.SlipLost {
			t.Errorf("status = %s, want lost", outcome.Status)
		}
		if !outcome.Payout.IsZero() {
			t.Errorf("payout = %s, want 0", outcome.Payout)
		}
	})

	t.Run("no result puts slip back to pending", func(t *testing.T) {
		slip := slipWithItems(model.SlipWon, winning)
		outcome := SettleSlip(slip, &model.Draw{}, nil)
		if outcome.Status != model.SlipPendingResult {
			t.Errorf("status = %s, want pending-result", outcome.Status)
		}
	})

	t.Run("paid slip keeps its status", func(t *testing.T) {
		slip := slipWithItems(model.SlipPaid, losing)
		outcome := SettleSlip(slip, draw, nil)
		if outcome.Status != model.SlipPaid {
			t.Errorf("status = %s, want paid", outcome.Status)
		}
	})

	t.Run("unpaid-due winner keeps the flag", func(t *testing.T) {
		slip := slipWithItems(model.SlipUnpaidDue, winning)
		outcome := SettleSlip(slip, draw, nil)
		if outcome.Status != model.SlipUnpaidDue {
			t.Errorf("status = %s, want unpaid-due", outcome.Status)
		}
	})

	t.Run("unpaid-due loser becomes lost on amendment", func(t *testing.T) {
		slip := slipWithItems(model.SlipUnpaidDue, losing)
		outcome := SettleSlip(slip, draw, nil)
		if outcome.Status != model.SlipLost {
			t.Errorf("status = %s, want lost", outcome.Status)
		}
	})
}

// TestSettleSlipIdempotent re-runs settlement over an already settled
// slip and expects no drift.
func TestSettleSlipIdempotent(t *testing.T) {
	draw := drawWithResult(testResult())
	slip := slipWithItems(model.SlipPendingResult,
		model.BetItem{Type: bettype.Straight3, Number: "123", Amount: d(100)})

	first := SettleSlip(slip, draw, nil)
	slip.Status = first.Status
	second := SettleSlip(slip, draw, nil)

	if first.Status != second.Status {
		t.Errorf("status drifted: %s then %s", first.Status, second.Status)
	}
	if !first.Payout.Equal(second.Payout) {
		t.Errorf("payout drifted: %s then %s", first.Payout, second.Payout)
	}
}

// TestSummarize tests draw-level sales/payout/profit aggregation.
func TestSummarize(t *testing.T) {
	draw := drawWithResult(testResult())

	won := slipWithItems(model.SlipWon,
		model.BetItem{Type: bettype.Top2, Number: "05", Amount: d(100)})
	lost := slipWithItems(model.SlipLost,
		model.BetItem{Type: bettype.Top2, Number: "99", Amount: d(200)})
	paid := slipWithItems(model.SlipPaid,
		model.BetItem{Type: bettype.Bottom2, Number: "12", Amount: d(50)})
	pending := slipWithItems(model.SlipPendingResult,
		model.BetItem{Type: bettype.Top2, Number: "05", Amount: d(30)})

	summary := Summarize(draw, []*model.Slip{won, lost, paid, pending}, nil)

	if summary.SlipCount != 4 {
		t.Errorf("slip count = %d, want 4", summary.SlipCount)
	}
	if summary.WinningCount != 2 {
		t.Errorf("winning count = %d, want 2 (won and paid)", summary.WinningCount)
	}
	if !summary.Sales.Equal(d(380)) {
		t.Errorf("sales = %s, want 380", summary.Sales)
	}
	// won pays 100x70, paid pays 50x70; lost and pending contribute 0.
	if !summary.Payout.Equal(d(10500)) {
		t.Errorf("payout = %s, want 10500", summary.Payout)
	}
	if !summary.Profit.Equal(d(380 - 10500)) {
		t.Errorf("profit = %s, want %d", summary.Profit, 380-10500)
	}
}

// TestSummarizeUsesSlipAgentRates checks each slip settles under its
// own routed agent.
func TestSummarizeUsesSlipAgentRates(t *testing.T) {
	draw := drawWithResult(testResult())

	agent := &model.Agent{ID: uuid.New(), Name: "north", Payout2Digit: dp(60)}
	agents := map[uuid.UUID]*model.Agent{agent.ID: agent}

	routed := slipWithItems(model.SlipWon,
		model.BetItem{Type: bettype.Top2, Number: "05", Amount: d(100)})
	routed.AgentID = &agent.ID
	unrouted := slipWithItems(model.SlipWon,
		model.BetItem{Type: bettype.Top2, Number: "05", Amount: d(100)})

	summary := Summarize(draw, []*model.Slip{routed, unrouted}, agents)

	// 100x60 under the agent plus 100x70 at shop default.
	if !summary.Payout.Equal(d(13000)) {
		t.Errorf("payout = %s, want 13000", summary.Payout)
	}
}
