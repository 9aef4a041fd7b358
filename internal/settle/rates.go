package settle

import (
	"strings"

	"github.com/shopspring/decimal"

	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
)

// Shop-wide default payout multipliers, used when neither the draw nor
// the agent specifies a rate.
var (
	defaultRate2Digit    = decimal.NewFromInt(70)
	defaultRate3Straight = decimal.NewFromInt(800)
	defaultRate3Tod      = decimal.NewFromInt(130)
	defaultRateRunning   = decimal.NewFromInt(3)

	hundred = decimal.NewFromInt(100)
)

// BaseRate resolves the payout multiplier for a bet type. Precedence,
// first present wins:
//
//  1. the draw's own rate table,
//  2. the agent's per-type fallback (running bets have none),
//  3. the shop defaults: 70 for 2-digit, 800 for straight, 130 for tod,
//     3 for running.
//
// Draw and agent may independently be nil. The function is total: it
// always returns a rate >= 0 and an unrecognized bet type resolves to
// zero, which turns the item into a no-op bet.
func BaseRate(t bettype.Type, draw *model.Draw, agent *model.Agent) decimal.Decimal {
	if !t.Valid() {
		return decimal.Zero
	}

	if draw != nil {
		if rate, ok := draw.PayoutRates[t]; ok && !rate.IsNegative() {
			return rate
		}
	}

	if agent != nil {
		if rate := agentRate(t, agent); rate != nil && !rate.IsNegative() {
			return *rate
		}
	}

	switch t {
	case bettype.Top2, bettype.Bottom2:
		return defaultRate2Digit
	case bettype.Straight3:
		return defaultRate3Straight
	case bettype.Tod3:
		return defaultRate3Tod
	default:
		return defaultRateRunning
	}
}

func agentRate(t bettype.Type, agent *model.Agent) *decimal.Decimal {
	switch t {
	case bettype.Top2, bettype.Bottom2:
		return agent.Payout2Digit
	case bettype.Straight3:
		return agent.Payout3Straight
	case bettype.Tod3:
		return agent.Payout3Tod
	default:
		return nil
	}
}

// ApplyBanOverride scales base by the payout percent of the first
// rate-limited set of the agent's configuration that contains the
// item's number. Sets are scanned in configuration order and the first
// match wins; overlapping sets are never combined.
//
// A matching set without a percent leaves the rate unchanged: such sets
// exist to block numbers at entry time and carry no settlement policy.
// No agent, no configuration for the type, or no matching set all
// return base unchanged.
func ApplyBanOverride(base decimal.Decimal, item model.BetItem, agent *model.Agent) decimal.Decimal {
	if agent == nil {
		return base
	}
	sets := agent.BannedNumbers[item.Type]
	if len(sets) == 0 {
		return base
	}
	number, ok := bettype.NormalizeNumber(item.Type, item.Number)
	if !ok {
		return base
	}

	width := item.Type.Width()
	for _, set := range sets {
		if !containsNumber(set.Numbers, number, width) {
			continue
		}
		if set.PayoutPercent == nil {
			return base
		}
		percent := *set.PayoutPercent
		if percent.IsNegative() {
			return decimal.Zero
		}
		if percent.GreaterThan(hundred) {
			percent = hundred
		}
		return base.Mul(percent).Div(hundred)
	}
	return base
}

// containsNumber reports whether number is in the set, comparing with
// both sides padded to the canonical width.
func containsNumber(numbers []string, number string, width int) bool {
	for _, n := range numbers {
		if bettype.PadNumber(strings.TrimSpace(n), width) == number {
			return true
		}
	}
	return false
}
