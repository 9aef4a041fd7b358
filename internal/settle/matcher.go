// Package settle implements the settlement core: deciding whether a bet
// item wins against a draw's official result, resolving the payout rate
// it earns, and aggregating payouts across slips and draws.
//
// The package is pure computation. It never touches storage, never
// returns errors and never panics: malformed input degrades to "loses,
// zero payout" so one bad item can never halt settlement of the rest of
// a draw.
package settle

import (
	"lotto-pos/internal/bettype"
	"lotto-pos/internal/model"
)

// IsWinning reports whether item wins against the recorded result.
// A nil result never wins; nothing can win against an unclosed draw.
// Numbers on both sides are zero-padded to the canonical width for the
// item's bet type before comparison.
func IsWinning(item model.BetItem, result *model.DrawResult) bool {
	if result == nil {
		return false
	}
	number, ok := bettype.NormalizeNumber(item.Type, item.Number)
	if !ok {
		return false
	}

	switch item.Type {
	case bettype.Top2:
		return matchExact(number, result.Top2, 2)
	case bettype.Bottom2:
		return matchExact(number, result.Bottom2, 2)
	case bettype.Straight3:
		return matchExact(number, result.Straight3, 3)
	case bettype.Tod3:
		return matchMultiset(number, result.Straight3, result.Tod3)
	case bettype.Running:
		return matchRunning(number, result)
	default:
		return false
	}
}

// matchExact compares a normalized bet number against a result field,
// zero-padding the field to the same width. A malformed or absent
// result field matches nothing.
func matchExact(number, field string, width int) bool {
	f, ok := bettype.NormalizeNumber(widthType(width), field)
	if !ok {
		return false
	}
	return number == f
}

// widthType maps a digit width back to a representative type so the
// shared number normalization can be reused on result fields.
func widthType(width int) bettype.Type {
	switch width {
	case 2:
		return bettype.Top2
	case 3:
		return bettype.Straight3
	default:
		return bettype.Running
	}
}

// matchMultiset decides a tod bet: the bet's digits must be a
// permutation of the result's 3-digit tod field. Digit counts matter;
// a bet with two 2s needs two 2s in the result. Falls back to the
// straight3 field when the draw was recorded without a separate tod
// number.
func matchMultiset(number, straight3, tod3 string) bool {
	field := tod3
	if field == "" {
		field = straight3
	}
	f, ok := bettype.NormalizeNumber(bettype.Tod3, field)
	if !ok {
		return false
	}
	return digitCounts(number) == digitCounts(f)
}

// digitCounts packs the count of each digit 0-9 into a comparable value.
func digitCounts(s string) [10]int {
	var counts [10]int
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			counts[s[i]-'0']++
		}
	}
	return counts
}

// matchRunning decides a running bet: the single bet digit must appear
// somewhere in the concatenation of all four result fields. An older
// entry screen checked only the straight3 field; that was a defect, not
// a second rule, and every caller now gets the concatenation behavior.
func matchRunning(number string, result *model.DrawResult) bool {
	digit := number[len(number)-1]
	combined := result.Top2 + result.Bottom2 + result.Straight3 + result.Tod3
	for i := 0; i < len(combined); i++ {
		if combined[i] == digit {
			return true
		}
	}
	return false
}
