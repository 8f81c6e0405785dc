package compliance

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

// NewRepository builds a holds repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindHoldShipment(ctx context.Context, shipmentID uuid.UUID) (*HoldShipment, error) {
	var row HoldShipment
	err := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Select("shipments.*, orders.base_number AS base_number").
		Joins("JOIN orders ON orders.id = shipments.order_id").
		Where("shipments.id = ?", shipmentID).
		First(&row).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "shipment not found")
		}
		return nil, err
	}
	return &row, nil
}

// TransitionHold applies updates guarded by the optimistic version check.
// Zero rows affected means another writer got there first.
func (r *repository) TransitionHold(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, updates map[string]any) (int64, error) {
	updates["version"] = gorm.Expr("version + 1")
	result := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ? AND version = ?", shipmentID, expectedVersion).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) ListByHoldState(ctx context.Context, state enums.HoldState, params pagination.Params) (*HoldQueueList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Select("shipments.*, orders.base_number AS base_number").
		Joins("JOIN orders ON orders.id = shipments.order_id").
		Where("shipments.hold_state = ?", state).
		Order("shipments.created_at DESC").
		Order("shipments.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if cursor != nil {
		query = query.Where("(shipments.created_at, shipments.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []HoldShipment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &HoldQueueList{Items: rows}
	if len(rows) > limit {
		list.Items = rows[:limit]
		last := list.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}
