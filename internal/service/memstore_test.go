package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lotto-pos/internal/model"
	"lotto-pos/internal/repository"
)

// memStore is an in-memory implementation of the store interfaces so
// the services can be exercised without a database. It returns the
// repository sentinel errors the real stores return.
type memStore struct {
	mu     sync.Mutex
	slips  map[uuid.UUID]*model.Slip
	draws  map[uuid.UUID]*model.Draw
	agents map[uuid.UUID]*model.Agent
}

func newMemStore() *memStore {
	return &memStore{
		slips:  make(map[uuid.UUID]*model.Slip),
		draws:  make(map[uuid.UUID]*model.Draw),
		agents: make(map[uuid.UUID]*model.Agent),
	}
}

func (m *memStore) Create(ctx context.Context, slip *model.Slip) (*model.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *slip
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	m.slips[copied.ID] = &copied
	return &copied, nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slip, ok := m.slips[id]
	if !ok {
		return nil, repository.ErrSlipNotFound
	}
	return slip, nil
}

func (m *memStore) List(ctx context.Context, limit int) ([]*model.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Slip
	for _, slip := range m.slips {
		out = append(out, slip)
	}
	sortSlips(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListByDraw(ctx context.Context, drawID uuid.UUID) ([]*model.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Slip
	for _, slip := range m.slips {
		if slip.DrawID != nil && *slip.DrawID == drawID {
			out = append(out, slip)
		}
	}
	sortSlips(out)
	return out, nil
}

func (m *memStore) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*model.Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Slip
	for _, slip := range m.slips {
		if slip.AgentID != nil && *slip.AgentID == agentID {
			out = append(out, slip)
		}
	}
	sortSlips(out)
	return out, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SlipStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slip, ok := m.slips[id]
	if !ok {
		return repository.ErrSlipNotFound
	}
	slip.Status = status
	slip.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) UpdateStatuses(ctx context.Context, changes map[uuid.UUID]model.SlipStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, status := range changes {
		if slip, ok := m.slips[id]; ok {
			slip.Status = status
		}
	}
	return nil
}

func (m *memStore) AssignAgent(ctx context.Context, id uuid.UUID, agentID *uuid.UUID, agentName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slip, ok := m.slips[id]
	if !ok {
		return repository.ErrSlipNotFound
	}
	slip.AgentID = agentID
	slip.AgentName = agentName
	return nil
}

// drawStore facade over the same memStore.

type memDraws struct{ *memStore }

func (m *memDraws) Create(ctx context.Context, draw *model.Draw) (*model.Draw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if draw.Status == model.DrawOpen {
		for _, existing := range m.draws {
			if existing.Status == model.DrawOpen {
				return nil, repository.ErrOpenDrawExists
			}
		}
	}
	copied := *draw
	m.draws[copied.ID] = &copied
	return &copied, nil
}

func (m *memDraws) GetByID(ctx context.Context, id uuid.UUID) (*model.Draw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	draw, ok := m.draws[id]
	if !ok {
		return nil, repository.ErrDrawNotFound
	}
	return draw, nil
}

func (m *memDraws) GetOpen(ctx context.Context) (*model.Draw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, draw := range m.draws {
		if draw.Status == model.DrawOpen {
			return draw, nil
		}
	}
	return nil, repository.ErrNoOpenDraw
}

func (m *memDraws) List(ctx context.Context) ([]*model.Draw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Draw
	for _, draw := range m.draws {
		out = append(out, draw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, nil
}

func (m *memDraws) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	draw, ok := m.draws[id]
	if !ok {
		return repository.ErrDrawNotFound
	}
	draw.Status = model.DrawClosed
	draw.ClosedAt = &closedAt
	return nil
}

func (m *memDraws) SetResult(ctx context.Context, id uuid.UUID, result *model.DrawResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	draw, ok := m.draws[id]
	if !ok {
		return repository.ErrDrawNotFound
	}
	draw.Result = result
	return nil
}

func (m *memDraws) Update(ctx context.Context, draw *model.Draw) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.draws[draw.ID]
	if !ok {
		return repository.ErrDrawNotFound
	}
	existing.Label = draw.Label
	existing.BannedNumbers = draw.BannedNumbers
	existing.PayoutRates = draw.PayoutRates
	return nil
}

// agentStore facade over the same memStore.

type memAgents struct{ *memStore }

func (m *memAgents) Upsert(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *agent
	m.agents[copied.ID] = &copied
	return &copied, nil
}

func (m *memAgents) GetByID(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return nil, repository.ErrAgentNotFound
	}
	return agent, nil
}

func (m *memAgents) List(ctx context.Context) ([]*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Agent
	for _, agent := range m.agents {
		out = append(out, agent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memAgents) GetMap(ctx context.Context) (map[uuid.UUID]*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]*model.Agent, len(m.agents))
	for id, agent := range m.agents {
		out[id] = agent
	}
	return out, nil
}

func sortSlips(slips []*model.Slip) {
	sort.Slice(slips, func(i, j int) bool { return slips[i].CreatedAt.After(slips[j].CreatedAt) })
}
