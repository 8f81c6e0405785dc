package pricing

import (
	"context"
	stdErrors "errors"

	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/internal/repo"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

// Repo reads markup rule rows.
type Repo struct {
	repo.Base
}

// NewRepo constructs the pricing repository.
func NewRepo(db *gorm.DB) *Repo {
	return &Repo{Base: repo.NewBase(db)}
}

// ActiveRule returns the single active rule row, or nil when none exists.
func (r *Repo) ActiveRule(ctx context.Context) (*models.TierMarkupRule, error) {
	var rule models.TierMarkupRule
	err := r.DB(ctx).
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
