package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotto-pos/internal/model"
	"lotto-pos/internal/settle"
)

// AgentRouting is one agent's share of a draw for the routing report.
type AgentRouting struct {
	AgentID      uuid.UUID       `json:"agentId"`
	AgentName    string          `json:"agentName"`
	SlipCount    int             `json:"slipCount"`
	RoutedSales  decimal.Decimal `json:"routedSales"`
	Commission   decimal.Decimal `json:"commission"`
	PayoutOwed   decimal.Decimal `json:"payoutOwed"`
}

// ReportService produces the dashboard figures: draw-level
// sales/payout/profit and per-agent routing totals. Read-only consumer
// of the settlement core.
type ReportService struct {
	slips  SlipStore
	draws  DrawStore
	agents AgentStore
}

// NewReportService creates a new ReportService instance.
func NewReportService(slips SlipStore, draws DrawStore, agents AgentStore) *ReportService {
	return &ReportService{
		slips:  slips,
		draws:  draws,
		agents: agents,
	}
}

// DrawSummary returns the draw's aggregate figures.
func (s *ReportService) DrawSummary(ctx context.Context, drawID uuid.UUID) (settle.DrawSummary, error) {
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

// AgentReport breaks a draw down by routed agent: how much stake was
// sent to each agent, the commission the agent earns on it, and the
// payout owed for that agent's winning slips. Unrouted slips are not
// reported here; they stay on the shop's own book.
func (s *ReportService) AgentReport(ctx context.Context, drawID uuid.UUID) ([]AgentRouting, error) {
	draw, err := s.draws.GetByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draw: %w", err)
	}
	slips, err := s.slips.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slips: %w", err)
	}
	agents, err := s.agents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load agents: %w", err)
	}

	hundred := decimal.NewFromInt(100)
	byID := make(map[uuid.UUID]*AgentRouting, len(agents))
	report := make([]AgentRouting, 0, len(agents))
	agentModels := make(map[uuid.UUID]*model.Agent, len(agents))
	for _, agent := range agents {
		agentModels[agent.ID] = agent
		report = append(report, AgentRouting{
			AgentID:     agent.ID,
			AgentName:   agent.Name,
			RoutedSales: decimal.Zero,
			Commission:  decimal.Zero,
			PayoutOwed:  decimal.Zero,
		})
		byID[agent.ID] = &report[len(report)-1]
	}

	for _, slip := range slips {
		if slip.AgentID == nil {
			continue
		}
		routing, ok := byID[*slip.AgentID]
		if !ok {
			continue
		}
		routing.SlipCount++
		routing.RoutedSales = routing.RoutedSales.Add(slip.TotalAmount)

		switch slip.Status {
		case model.SlipWon, model.SlipPaid, model.SlipUnpaidDue:
			payout := settle.SlipPayout(slip, draw, agentModels[*slip.AgentID])
			routing.PayoutOwed = routing.PayoutOwed.Add(payout)
		}
	}

	for i := range report {
		agent := agentModels[report[i].AgentID]
		report[i].Commission = report[i].RoutedSales.Mul(agent.CommissionPercent).Div(hundred)
	}
	return report, nil
}
