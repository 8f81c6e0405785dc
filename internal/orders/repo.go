package orders

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/internal/fulfillment"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Shipments").Create(order).Error
}

func (r *repository) CreateShipments(ctx context.Context, shipments []models.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Lines").Create(&shipments).Error
}

func (r *repository) CreateOrderLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Shipments", func(db *gorm.DB) *gorm.DB {
			return db.Order("shipments.suffix ASC")
		}).
		Preload("Shipments.Lines").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByBaseNumber(ctx context.Context, baseNumber int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Shipments", func(db *gorm.DB) *gorm.DB {
			return db.Order("shipments.suffix ASC")
		}).
		Preload("Shipments.Lines").
		Where("base_number = ?", baseNumber).
		First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("order %d not found", baseNumber))
		}
		return nil, err
	}
	return &order, nil
}

// MaxBaseNumber returns the highest persisted base number, zero when no
// orders exist. Used to seed the allocator at boot.
func (r *repository) MaxBaseNumber(ctx context.Context) (int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("MAX(base_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repository) ListOrders(ctx context.Context, customerID *uuid.UUID, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.*, COUNT(shipments.id) AS shipment_count").
		Joins("LEFT JOIN shipments ON shipments.order_id = orders.id").
		Group("orders.id").
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if customerID != nil {
		query = query.Where("orders.customer_id = ?", *customerID)
	}
	if cursor != nil {
		query = query.Where("(orders.created_at, orders.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []orderListRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderListItem, 0, len(rows))}
	page := rows
	if len(rows) > limit {
		page = rows[:limit]
		last := page[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	for _, row := range page {
		list.Orders = append(list.Orders, row.toItem())
	}
	return list, nil
}

type orderListRow struct {
	models.Order
	ShipmentCount int
}

func (r orderListRow) toItem() OrderListItem {
	display := fmt.Sprintf("%d", r.BaseNumber)
	if r.ShipmentCount == 1 {
		display = models.DisplayNumber(r.BaseNumber, fulfillment.UnsplitSuffix)
	}
	return OrderListItem{
		OrderID:       r.ID,
		BaseNumber:    r.BaseNumber,
		DisplayNumber: display,
		Status:        r.Status,
		Total:         r.Total,
		ShipmentCount: r.ShipmentCount,
		CreatedAt:     r.CreatedAt,
	}
}
