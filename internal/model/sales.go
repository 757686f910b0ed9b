package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesReport is one station's end-of-day figures. One row per station per
// day; TotalSales is computed at create time as fuel + store + lottery.
type SalesReport struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StationID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_station_report_day" json:"station_id"`
	Station      Station         `gorm:"foreignKey:StationID" json:"-"`
	ReportDate   time.Time       `gorm:"type:date;not null;uniqueIndex:idx_station_report_day" json:"report_date"`
	FuelSales    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"fuel_sales"`
	StoreSales   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"store_sales"`
	LotterySales decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"lottery_sales"`
	TotalSales   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_sales"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	Creator      *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
