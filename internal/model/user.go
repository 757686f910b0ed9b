package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StationAll is the station scope meaning "every station".
const StationAll = "ALL"

// User is the back-office user profile. Role names come from the permission
// package's template catalog; DetailedPermissions stores the JSON-encoded
// permission record and is empty until the matrix is edited — readers fall
// back to the role template. PermissionsVersion guards concurrent matrix
// saves with a conditional update.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone      string    `gorm:"type:varchar(20)" json:"phone"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role       string    `gorm:"type:varchar(50);not null" json:"role"`
	Station    string    `gorm:"type:varchar(50);not null;default:'ALL';index" json:"station"`
	EmployeeID string    `gorm:"type:varchar(50);index" json:"employee_id"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`

	DetailedPermissions string `gorm:"type:jsonb" json:"-"`
	PermissionsVersion  int    `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
