// Package service provides business logic implementations.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lotto-pos/internal/model"
)

// The services depend on narrow store interfaces rather than concrete
// repositories, so the settlement flows can be exercised against
// in-memory fakes and the core only ever sees plain data structures.

// SlipStore supplies and persists slips.
type SlipStore interface {
	Create(ctx context.Context, slip *model.Slip) (*model.Slip, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slip, error)
	List(ctx context.Context, limit int) ([]*model.Slip, error)
	ListByDraw(ctx context.Context, drawID uuid.UUID) ([]*model.Slip, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*model.Slip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SlipStatus) error
	UpdateStatuses(ctx context.Context, changes map[uuid.UUID]model.SlipStatus) error
	AssignAgent(ctx context.Context, id uuid.UUID, agentID *uuid.UUID, agentName string) error
}

// DrawStore supplies and persists draws.
type DrawStore interface {
	Create(ctx context.Context, draw *model.Draw) (*model.Draw, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Draw, error)
	GetOpen(ctx context.Context) (*model.Draw, error)
	List(ctx context.Context) ([]*model.Draw, error)
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error
	SetResult(ctx context.Context, id uuid.UUID, result *model.DrawResult) error
	Update(ctx context.Context, draw *model.Draw) error
}

// AgentStore supplies and persists agents.
type AgentStore interface {
	Upsert(ctx context.Context, agent *model.Agent) (*model.Agent, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Agent, error)
	List(ctx context.Context) ([]*model.Agent, error)
	GetMap(ctx context.Context) (map[uuid.UUID]*model.Agent, error)
}
