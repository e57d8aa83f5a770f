package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"randevu.backend/internal/domain/entities"
	domainerrors "randevu.backend/internal/domain/errors"
	"randevu.backend/internal/infrastructure/models"
)

// VerificationRepository implements verification record storage on GORM
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create inserts a new record
func (r *VerificationRepository) Create(ctx context.Context, record *entities.VerificationRecord) error {
	m := toModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	record.ID = m.ID
	record.CreatedAt = m.CreatedAt
	return nil
}

// CreateSuperseding invalidates any active record for the same
// (phone_number, purpose) and inserts the new one in one transaction.
// The transaction plus the partial unique index keep concurrent
// issuance for the same key from producing two active codes.
func (r *VerificationRepository) CreateSuperseding(ctx context.Context, record *entities.VerificationRecord) error {
	m := toModel(record)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VerificationCode{}).
			Where("phone_number = ? AND purpose = ? AND is_used = ?", record.PhoneNumber, string(record.Purpose), false).
			Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return err
	}
	record.ID = m.ID
	record.CreatedAt = m.CreatedAt
	return nil
}

// FindLatestActive returns the newest unused, unexpired record for the key
func (r *VerificationRepository) FindLatestActive(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) (*entities.VerificationRecord, error) {
	var m models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND purpose = ? AND is_used = ? AND expires_at > ?", phoneNumber, string(purpose), false, time.Now()).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// FindMostRecent returns the newest record for the key regardless of state
func (r *VerificationRepository) FindMostRecent(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) (*entities.VerificationRecord, error) {
	var m models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND purpose = ?", phoneNumber, string(purpose)).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// MarkAsUsed flips is_used on an unused record. The is_used = false
// predicate makes the call a conditional update, so two racing callers
// cannot both consume the same record.
func (r *VerificationRepository) MarkAsUsed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// IncrementAttempts adds one attempt in a single UPDATE and returns the
// new count via RETURNING, so concurrent validations cannot read a
// stale counter.
func (r *VerificationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	var m models.VerificationCode
	result := r.db.WithContext(ctx).
		Model(&m).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "attempts"}}}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domainerrors.ErrNotFound
	}
	return m.Attempts, nil
}

// CountDailyRequests counts codes issued since midnight UTC
func (r *VerificationRepository) CountDailyRequests(ctx context.Context, phoneNumber, ip string) (*entities.DailyRequestCounts, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := &entities.DailyRequestCounts{}

	if err := r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("phone_number = ? AND created_at >= ?", phoneNumber, dayStart).
		Count(&counts.PhoneCount).Error; err != nil {
		return nil, err
	}

	if ip != "" {
		if err := r.db.WithContext(ctx).
			Model(&models.VerificationCode{}).
			Where("ip_address = ? AND created_at >= ?", ip, dayStart).
			Count(&counts.IPCount).Error; err != nil {
			return nil, err
		}
	}

	return counts, nil
}

// Cleanup deletes records that are both expired and consumed
func (r *VerificationRepository) Cleanup(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? AND is_used = ?", time.Now(), true).
		Delete(&models.VerificationCode{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GetStats returns aggregate counts, optionally filtered by phone and purpose
func (r *VerificationRepository) GetStats(ctx context.Context, filter entities.StatsFilter) (*entities.VerificationStats, error) {
	now := time.Now()
	stats := &entities.VerificationStats{}

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.VerificationCode{})
		if filter.PhoneNumber != "" {
			q = q.Where("phone_number = ?", filter.PhoneNumber)
		}
		if filter.Purpose != "" {
			q = q.Where("purpose = ?", string(filter.Purpose))
		}
		return q
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("is_used = ?", true).Count(&stats.Used).Error; err != nil {
		return nil, err
	}
	if err := base().Where("is_used = ? AND expires_at <= ?", false, now).Count(&stats.Expired).Error; err != nil {
		return nil, err
	}
	if err := base().Where("is_used = ? AND expires_at > ?", false, now).Count(&stats.Active).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// InvalidateUserVerifications marks every record owned by the user as used
func (r *VerificationRepository) InvalidateUserVerifications(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("user_id = ? AND is_used = ?", userID, false).
		Update("is_used", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func toModel(e *entities.VerificationRecord) *models.VerificationCode {
	m := &models.VerificationCode{
		ID:          e.ID,
		PhoneNumber: e.PhoneNumber,
		CodeHash:    e.CodeHash,
		Purpose:     string(e.Purpose),
		IsUsed:      e.IsUsed,
		Attempts:    e.Attempts,
		MaxAttempts: e.MaxAttempts,
		ExpiresAt:   e.ExpiresAt,
		CreatedAt:   e.CreatedAt,
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if e.UserID.Valid {
		userID := e.UserID.String
		m.UserID = &userID
	}
	if e.IPAddress.Valid {
		ip := e.IPAddress.String
		m.IPAddress = &ip
	}
	return m
}

func toEntity(m *models.VerificationCode) *entities.VerificationRecord {
	e := &entities.VerificationRecord{
		ID:          m.ID,
		PhoneNumber: m.PhoneNumber,
		CodeHash:    m.CodeHash,
		Purpose:     entities.VerificationPurpose(m.Purpose),
		IsUsed:      m.IsUsed,
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CreatedAt,
	}
	if m.UserID != nil {
		e.UserID = null.StringFrom(*m.UserID)
	}
	if m.IPAddress != nil {
		e.IPAddress = null.StringFrom(*m.IPAddress)
	}
	return e
}
