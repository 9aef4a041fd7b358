// Package model defines the data models for the lottery shop back office.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/bettype"
)

// SlipStatus is the settlement lifecycle state of a slip.
type SlipStatus string

const (
	// SlipPendingResult means the slip's draw has no recorded result yet.
	SlipPendingResult SlipStatus = "pending-result"
	// SlipWon means at least one item matched the recorded result.
	SlipWon SlipStatus = "won"
	// SlipLost means no item matched the recorded result.
	SlipLost SlipStatus = "lost"
	// SlipPaid means the winnings have been handed to the customer.
	// Paid slips are excluded from re-settlement when a result is amended.
	SlipPaid SlipStatus = "paid"
	// SlipUnpaidDue means the slip won but payment is overdue.
	SlipUnpaidDue SlipStatus = "unpaid-due"
)

// DrawStatus is the lifecycle state of a betting period.
type DrawStatus string

const (
	DrawOpen   DrawStatus = "open"
	DrawClosed DrawStatus = "closed"
)

// BetItem is one wagered line of a slip: a number, its stake and the
// bet type. Type and Number are stored canonical (alias collapsed,
// number zero-padded) from the moment the slip is created.
type BetItem struct {
	ID     uuid.UUID       `json:"id"`
	Type   bettype.Type    `json:"type"`
	Number string          `json:"number"`
	Amount decimal.Decimal `json:"amount"`
}

// Slip is a customer's full bet ticket.
type Slip struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	SlipNumber   string          `db:"slip_number" json:"slipNumber"`
	CustomerName string          `db:"customer_name" json:"customerName"`
	Items        []BetItem       `db:"items" json:"items"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Status       SlipStatus      `db:"status" json:"status"`
	DrawID       *uuid.UUID      `db:"draw_id" json:"drawId,omitempty"`
	AgentID      *uuid.UUID      `db:"agent_id" json:"agentId,omitempty"`
	AgentName    string          `db:"agent_name" json:"agentName,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// Settleable reports whether the slip participates in a settlement pass.
// Paid slips keep their status and payout; money already handed over is
// never clawed back by a result amendment.
func (s *Slip) Settleable() bool {
	return s.Status != SlipPaid
}

// DrawResult holds the four official numbers recorded when a draw
// closes. Fields are stored zero-padded to their canonical width.
type DrawResult struct {
	Top2       string    `json:"top2"`
	Bottom2    string    `json:"bottom2"`
	Straight3  string    `json:"straight3"`
	Tod3       string    `json:"tod3"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Draw is a betting period with an open/closed lifecycle and an
// eventual official result.
type Draw struct {
	ID       uuid.UUID  `db:"id" json:"id"`
	Label    string     `db:"label" json:"label"`
	Status   DrawStatus `db:"status" json:"status"`
	OpenedAt time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	// BannedNumbers lists numbers that must be rejected at entry time,
	// per bet type. The settlement core ignores this field; blocking
	// happens before a slip exists.
	BannedNumbers map[bettype.Type][]string `db:"banned_numbers" json:"bannedNumbers,omitempty"`

	// PayoutRates overrides the base payout multiplier per bet type for
	// this draw. Takes precedence over agent-level rates.
	PayoutRates map[bettype.Type]decimal.Decimal `db:"payout_rates" json:"payoutRates,omitempty"`

	Result *DrawResult `db:"result" json:"result,omitempty"`
}

// BannedNumberSet is one rate-limited group of numbers configured on an
// agent. A set with a PayoutPercent scales the base rate for any bet
// whose number falls in the set; a set without one blocks those numbers
// at entry time and is a no-op at settlement time. The two behaviors
// are deliberately distinct policies.
type BannedNumberSet struct {
	Numbers       []string         `json:"numbers"`
	PayoutPercent *decimal.Decimal `json:"payoutPercent,omitempty"`
}

// Blocking reports whether the set blocks its numbers at entry time
// rather than scaling their payout.
func (s BannedNumberSet) Blocking() bool {
	return s.PayoutPercent == nil
}

// Agent is a downstream bookmaker slips can be routed to.
type Agent struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`

	// CommissionPercent is the agent's share of amounts routed to them.
	// Used by routing reports only; settlement never reads it.
	CommissionPercent decimal.Decimal `db:"commission_percent" json:"commissionPercent"`

	// Per-type base rate fallbacks, consulted only when the draw does
	// not carry its own PayoutRates. Running bets have no agent-level
	// override.
	Payout2Digit    *decimal.Decimal `db:"payout_2digit" json:"payout2Digit,omitempty"`
	Payout3Straight *decimal.Decimal `db:"payout_3straight" json:"payout3Straight,omitempty"`
	Payout3Tod      *decimal.Decimal `db:"payout_3tod" json:"payout3Tod,omitempty"`

	BannedNumbers map[bettype.Type][]BannedNumberSet `db:"banned_numbers" json:"bannedNumbers,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
