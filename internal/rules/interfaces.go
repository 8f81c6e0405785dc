package rules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

// RuleList is one page of rule versions, newest first.
type RuleList struct {
	Items      []models.TierMarkupRule `json:"items"`
	NextCursor *string                 `json:"nextCursor,omitempty"`
}

// Repository defines persistence operations for markup rule rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRule(ctx context.Context, id uuid.UUID) (*models.TierMarkupRule, error)
	ActiveRule(ctx context.Context) (*models.TierMarkupRule, error)
	Create(ctx context.Context, rule *models.TierMarkupRule) error
	DeactivateActive(ctx context.Context) (*uuid.UUID, error)
	Deactivate(ctx context.Context, id uuid.UUID) (int64, error)
	ListRules(ctx context.Context, params pagination.Params) (*RuleList, error)
}

// TxRunner executes fn within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventEmitter queues domain events transactionally.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}
