package settle

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/model"
)

// ItemPayout computes the payout one item earns against the draw's
// recorded result: stake times resolved rate when the item wins, zero
// otherwise. Losing, malformed and zero-stake items all pay zero; rate
// configuration never produces a payout for a non-winning item.
func ItemPayout(item model.BetItem, draw *model.Draw, agent *model.Agent) decimal.Decimal {
	var result *model.DrawResult
	if draw != nil {
		result = draw.Result
	}
	if !IsWinning(item, result) {
		return decimal.Zero
	}
	if !item.Amount.IsPositive() {
		return decimal.Zero
	}
	rate := ApplyBanOverride(BaseRate(item.Type, draw, agent), item, agent)
	return item.Amount.Mul(rate)
}

// SlipPayout sums ItemPayout over every item of the slip.
func SlipPayout(slip *model.Slip, draw *model.Draw, agent *model.Agent) decimal.Decimal {
	total := decimal.Zero
	for _, item := range slip.Items {
		total = total.Add(ItemPayout(item, draw, agent))
	}
	return total
}

// Outcome is the result of settling one slip against a draw.
type Outcome struct {
	Status model.SlipStatus `json:"status"`
	Payout decimal.Decimal  `json:"payout"`
}

// SettleSlip derives the slip's status and payout against the draw's
// current result. The derivation is deterministic and idempotent:
// running it again over the same inputs yields the same outcome, which
// is what makes result amendments safe to re-apply.
//
// Rules:
//   - paid slips are left alone; their payout is reported for totals
//     but the status never changes,
//   - no recorded result puts the slip (back) in pending-result,
//   - any winning item makes the slip won; a slip already flagged
//     unpaid-due that still wins keeps that flag,
//   - otherwise the slip is lost.
func SettleSlip(slip *model.Slip, draw *model.Draw, agent *model.Agent) Outcome {
	payout := SlipPayout(slip, draw, agent)

	if slip.Status == model.SlipPaid {
		return Outcome{Status: model.SlipPaid, Payout: payout}
	}
	if draw == nil || draw.Result == nil {
		return Outcome{Status: model.SlipPendingResult, Payout: decimal.Zero}
	}

	for _, item := range slip.Items {
		if IsWinning(item, draw.Result) {
			if slip.Status == model.SlipUnpaidDue {
				return Outcome{Status: model.SlipUnpaidDue, Payout: payout}
			}
			return Outcome{Status: model.SlipWon, Payout: payout}
		}
	}
	return Outcome{Status: model.SlipLost, Payout: decimal.Zero}
}

// DrawSummary aggregates a draw's slips for the dashboard and
// settlement screens.
type DrawSummary struct {
	SlipCount    int             `json:"slipCount"`
	WinningCount int             `json:"winningCount"`
	Sales        decimal.Decimal `json:"sales"`
	Payout       decimal.Decimal `json:"payout"`
	Profit       decimal.Decimal `json:"profit"`
}

// Summarize folds the draw's slips into sales, payout and profit
// totals. Sales counts every slip's total stake. Payout and the winning
// count consider only slips whose current status is a winning one
// (won, paid, or unpaid-due); pending and lost slips contribute stake
// but no payout. Agents are looked up per slip so each slip settles
// under its own routed agent's rates.
func Summarize(draw *model.Draw, slips []*model.Slip, agents map[uuid.UUID]*model.Agent) DrawSummary {
	summary := DrawSummary{
		Sales:  decimal.Zero,
		Payout: decimal.Zero,
	}

	for _, slip := range slips {
		summary.SlipCount++
		summary.Sales = summary.Sales.Add(slip.TotalAmount)

		switch slip.Status {
		case model.SlipWon, model.SlipPaid, model.SlipUnpaidDue:
			summary.WinningCount++
			summary.Payout = summary.Payout.Add(SlipPayout(slip, draw, slipAgent(slip, agents)))
		}
	}

	summary.Profit = summary.Sales.Sub(summary.Payout)
	return summary
}

func slipAgent(slip *model.Slip, agents map[uuid.UUID]*model.Agent) *model.Agent {
	if slip.AgentID == nil {
		return nil
	}
	return agents[*slip.AgentID]
}
