package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"randevu.backend/internal/domain/entities"
	"randevu.backend/internal/infrastructure/models"
)

// AuditRepository implements audit log storage on GORM
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create persists an audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *entities.AuditEntry) error {
	m := &models.AuditLog{
		ID:        entry.ID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if entry.UserID.Valid {
		userID := entry.UserID.String
		m.UserID = &userID
	}
	if entry.EntityID.Valid {
		entityID := entry.EntityID.String
		m.EntityID = &entityID
	}
	if entry.IPAddress.Valid {
		ip := entry.IPAddress.String
		m.IPAddress = &ip
	}
	if entry.UserAgent.Valid {
		ua := entry.UserAgent.String
		m.UserAgent = &ua
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	entry.ID = m.ID
	entry.CreatedAt = m.CreatedAt
	return nil
}
