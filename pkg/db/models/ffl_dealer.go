package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/types"
)

// FFLDealer is a directory entry for a licensed dealer a customer can select
// as a transfer destination.
type FFLDealer struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LicenseNumber string                   `gorm:"column:license_number;not null;uniqueIndex" json:"licenseNumber"`
	BusinessName  string                   `gorm:"column:business_name;not null" json:"businessName"`
	Status        enums.FFLDirectoryStatus `gorm:"column:status;type:text;not null;default:'not_on_file'" json:"status"`
	Address       *types.Address           `gorm:"column:address;type:jsonb;serializer:json" json:"address,omitempty"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table name.
func (FFLDealer) TableName() string {
	return "ffl_dealers"
}
