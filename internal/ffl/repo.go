package ffl

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/internal/repo"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

// Repo is the FFL dealer directory store.
type Repo struct {
	repo.Base
}

// NewRepo constructs the directory repository.
func NewRepo(db *gorm.DB) *Repo {
	return &Repo{Base: repo.NewBase(db)}
}

// DealerStatus returns the directory status for a dealer. Unknown dealers
// report as not on file, which is the hold-triggering status.
func (r *Repo) DealerStatus(ctx context.Context, dealerID uuid.UUID) (enums.FFLDirectoryStatus, error) {
	var dealer models.FFLDealer
	err := r.DB(ctx).Select("status").Where("id = ?", dealerID).First(&dealer).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return enums.FFLNotOnFile, nil
		}
		return "", err
	}
	return dealer.Status, nil
}

// FindDealer loads one dealer by id.
func (r *Repo) FindDealer(ctx context.Context, dealerID uuid.UUID) (*models.FFLDealer, error) {
	var dealer models.FFLDealer
	err := r.DB(ctx).Where("id = ?", dealerID).First(&dealer).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "dealer not found")
		}
		return nil, err
	}
	return &dealer, nil
}

// CreateDealer inserts a directory entry.
func (r *Repo) CreateDealer(ctx context.Context, dealer *models.FFLDealer) (*models.FFLDealer, error) {
	if dealer.ID == uuid.Nil {
		dealer.ID = uuid.New()
	}
	if dealer.Status == "" {
		dealer.Status = enums.FFLNotOnFile
	}
	if !dealer.Status.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid directory status %q", dealer.Status))
	}
	if err := r.DB(ctx).Create(dealer).Error; err != nil {
		return nil, err
	}
	return dealer, nil
}

// UpdateStatus sets a dealer's directory status.
func (r *Repo) UpdateStatus(ctx context.Context, dealerID uuid.UUID, status enums.FFLDirectoryStatus) error {
	if !status.IsValid() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("invalid directory status %q", status))
	}
	result := r.DB(ctx).Model(&models.FFLDealer{}).
		Where("id = ?", dealerID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "dealer not found")
	}
	return nil
}

// DealerList is one page of directory entries.
type DealerList struct {
	Items      []models.FFLDealer `json:"items"`
	NextCursor *string            `json:"nextCursor,omitempty"`
}

// ListDealers pages through the directory, optionally filtered by status.
func (r *Repo) ListDealers(ctx context.Context, status *enums.FFLDirectoryStatus, params pagination.Params) (*DealerList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := r.DB(ctx).Model(&models.FFLDealer{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.FFLDealer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &DealerList{Items: rows}
	if len(rows) > limit {
		list.Items = rows[:limit]
		last := list.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}
