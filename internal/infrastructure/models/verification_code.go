package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is the persistence model for issued codes.
//
// The partial unique index enforces the "at most one active record per
// (phone_number, purpose)" invariant in the database, so concurrent
// issuance across service instances cannot leave two live codes.
type VerificationCode struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      *string   `gorm:"type:varchar(36);index"`
	PhoneNumber string    `gorm:"type:varchar(20);not null;index;uniqueIndex:uq_active_verification,where:is_used = false"`
	IPAddress   *string   `gorm:"type:varchar(45);index"`
	CodeHash    string    `gorm:"type:varchar(255);not null"`
	Purpose     string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_active_verification,where:is_used = false"`
	IsUsed      bool      `gorm:"not null;default:false"`
	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null;default:3"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;index"`
}
