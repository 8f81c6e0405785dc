package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  manufacturer TEXT NOT NULL,
  wholesale_price NUMERIC NOT NULL,
  map_price NUMERIC,
  msrp_price NUMERIC,
  requires_ffl BOOLEAN NOT NULL DEFAULT FALSE,
  drop_shippable BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku, manufacturer string, active bool, createdAt time.Time) models.Product {
	t.Helper()
	product := models.Product{
		ID:             uuid.New(),
		SKU:            sku,
		Title:          "Test Product " + sku,
		Manufacturer:   manufacturer,
		WholesalePrice: decimal.RequireFromString("100.00"),
		IsActive:       active,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestFindActiveBySKU(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepo(db)
	seeded := seedProduct(t, db, "GLK-19-G5", "Glock", true, time.Now())

	found, err := repo.FindActiveBySKU(context.Background(), "GLK-19-G5")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, "Glock", found.Manufacturer)
}

func TestFindActiveBySKUSkipsInactive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepo(db)
	seedProduct(t, db, "DISC-001", "Ruger", false, time.Now())

	_, err := repo.FindActiveBySKU(context.Background(), "DISC-001")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestFindActiveBySKURequiresSKU(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepo(db)

	_, err := repo.FindActiveBySKU(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
}

func TestListActiveFiltersManufacturerCaseInsensitive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepo(db)
	base := time.Now().Add(-time.Hour)
	seedProduct(t, db, "SIG-P320", "Sig Sauer", true, base)
	seedProduct(t, db, "SIG-P365", "Sig Sauer", true, base.Add(time.Minute))
	seedProduct(t, db, "RUG-1022", "Ruger", true, base.Add(2*time.Minute))
	seedProduct(t, db, "SIG-OLD", "Sig Sauer", false, base.Add(3*time.Minute))

	list, err := repo.ListActive(context.Background(), "sig sauer", pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "SIG-P365", list.Items[0].SKU)
	assert.Equal(t, "SIG-P320", list.Items[1].SKU)
	assert.Nil(t, list.NextCursor)
}

func TestListActivePaginates(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepo(db)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedProduct(t, db, "PAGE-"+uuid.NewString()[:8], "Ruger", true, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListActive(context.Background(), "", pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotNil(t, first.NextCursor)

	second, err := repo.ListActive(context.Background(), "", pagination.Params{Limit: 2, Cursor: *first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Nil(t, second.NextCursor)
}
