package rules

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rules repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindRule(ctx context.Context, id uuid.UUID) (*models.TierMarkupRule, error) {
	var rule models.TierMarkupRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "rule not found")
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) ActiveRule(ctx context.Context) (*models.TierMarkupRule, error) {
	var rule models.TierMarkupRule
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.RuleStatusActive).
		Order("updated_at DESC").
		First(&rule).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) Create(ctx context.Context, rule *models.TierMarkupRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// DeactivateActive flips the current active row to inactive and returns its
// id, or nil when no row was active.
func (r *repository) DeactivateActive(ctx context.Context) (*uuid.UUID, error) {
	current, err := r.ActiveRule(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.TierMarkupRule{}).
		Where("id = ? AND status = ?", current.ID, enums.RuleStatusActive).
		Update("status", enums.RuleStatusInactive)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errors.New(errors.CodeConflict, "active rule changed concurrently")
	}
	return &current.ID, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TierMarkupRule{}).
		Where("id = ? AND status = ?", id, enums.RuleStatusActive).
		Update("status", enums.RuleStatusInactive)
	return result.RowsAffected, result.Error
}

func (r *repository) ListRules(ctx context.Context, params pagination.Params) (*RuleList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.TierMarkupRule{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.TierMarkupRule
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &RuleList{Items: rows}
	if len(rows) > limit {
		list.Items = rows[:limit]
		last := list.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}
