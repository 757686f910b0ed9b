package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FuelDelivery is one tanker drop at a station. BOLNumber is the bill of
// lading identifier and must be unique across the network.
type FuelDelivery struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StationID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"station_id"`
	Station          Station         `gorm:"foreignKey:StationID" json:"-"`
	TankID           *uuid.UUID      `gorm:"type:uuid;index" json:"tank_id"` // nullable for split drops logged per station
	Tank             *Tank           `gorm:"foreignKey:TankID" json:"tank,omitempty"`
	FuelType         string          `gorm:"type:varchar(20);not null" json:"fuel_type"`
	GallonsDelivered decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gallons_delivered"`
	Supplier         string          `gorm:"type:varchar(255);not null" json:"supplier"`
	BOLNumber        string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"bol_number"`
	DeliveryDate     time.Time       `gorm:"not null;index" json:"delivery_date"`
	Note             string          `gorm:"type:text" json:"note"`
	CreatedBy        *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	Creator          *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
