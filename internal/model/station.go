package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Station is a single site in the network. Code is the short identifier used
// everywhere a user or record is scoped to a station (e.g. "MOBIL").
type Station struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Address  string    `gorm:"type:text" json:"address"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
