package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FuelType enum constants
const (
	FuelRegular  = "REGULAR"
	FuelMidgrade = "MIDGRADE"
	FuelPremium  = "PREMIUM"
	FuelDiesel   = "DIESEL"
)

// Tank is an underground storage tank at a station. CurrentVolume is moved
// only inside a transaction together with the reading or delivery that
// changed it.
type Tank struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StationID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"station_id"`
	Station         Station         `gorm:"foreignKey:StationID" json:"-"`
	Label           string          `gorm:"type:varchar(50);not null" json:"label"` // e.g. "Tank 1"
	FuelType        string          `gorm:"type:varchar(20);not null" json:"fuel_type"`
	CapacityGallons decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"capacity_gallons"`
	CurrentVolume   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_volume"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TankReading is a manual stick/ATG measurement. Recording one overwrites the
// tank's CurrentVolume.
type TankReading struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TankID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tank_id"`
	Tank          Tank            `gorm:"foreignKey:TankID" json:"-"`
	VolumeGallons decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"volume_gallons"`
	RecordedBy    *uuid.UUID      `gorm:"type:uuid;index" json:"recorded_by"`
	Recorder      *User           `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
	RecordedAt    time.Time       `gorm:"not null;index" json:"recorded_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
