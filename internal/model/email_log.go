package model

import (
	"time"

	"github.com/google/uuid"
)

// Email category constants
const (
	EmailCategoryDeliveryConfirmation = "DELIVERY_CONFIRMATION"
	EmailCategoryLowTankAlert         = "LOW_TANK_ALERT"
	EmailCategoryDailyReport          = "DAILY_REPORT"
)

// Email status constants
const (
	EmailStatusSent   = "SENT"
	EmailStatusFailed = "FAILED"
)

// EmailLog is one row in the email-automation feed the dashboard lists. The
// alerting paths append here; nothing in this service ever updates a row.
type EmailLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Category  string     `gorm:"type:varchar(50);not null;index" json:"category"`
	Recipient string     `gorm:"type:varchar(255);not null" json:"recipient"`
	Subject   string     `gorm:"type:varchar(500);not null" json:"subject"`
	Status    string     `gorm:"type:varchar(20);not null;index" json:"status"`
	Error     string     `gorm:"type:text" json:"error,omitempty"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
