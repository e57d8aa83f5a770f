package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one state transition with masked PII
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    *string   `gorm:"type:varchar(36);index"`
	Action    string    `gorm:"type:varchar(60);not null;index"`
	Entity    string    `gorm:"type:varchar(60);not null"`
	EntityID  *string   `gorm:"type:varchar(36)"`
	Details   string    `gorm:"type:text"`
	IPAddress *string   `gorm:"type:varchar(45)"`
	UserAgent *string   `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"not null;index"`
}
