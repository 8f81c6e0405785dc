package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/internal/repo"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

// Repo reads the product catalog. Writes happen through the inventory feed
// importer, which is outside this service.
type Repo struct {
	repo.Base
}

// NewRepo builds a catalog repository bound to the provided DB.
func NewRepo(db *gorm.DB) *Repo {
	return &Repo{Base: repo.NewBase(db)}
}

// FindActiveBySKU returns the active product for a SKU.
func (r *Repo) FindActiveBySKU(ctx context.Context, sku string) (*models.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, errors.New(errors.CodeValidation, "sku required")
	}
	var product models.Product
	err := r.DB(ctx).
		Where("sku = ? AND is_active = ?", sku, true).
		First(&product).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("product %s not found", sku))
		}
		return nil, err
	}
	return &product, nil
}

// FindByID returns a product by primary key regardless of active state.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// ProductList is one page of catalog products.
type ProductList struct {
	Items      []models.Product `json:"items"`
	NextCursor *string          `json:"nextCursor,omitempty"`
}

// ListActive pages through active products, optionally filtered by
// manufacturer.
func (r *Repo) ListActive(ctx context.Context, manufacturer string, params pagination.Params) (*ProductList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := r.DB(ctx).Model(&models.Product{}).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if manufacturer != "" {
		query = query.Where("LOWER(manufacturer) = ?", strings.ToLower(strings.TrimSpace(manufacturer)))
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &ProductList{Items: rows}
	if len(rows) > limit {
		list.Items = rows[:limit]
		last := list.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}
