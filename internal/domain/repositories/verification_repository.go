package repositories

import (
	"context"

	"github.com/google/uuid"
	"randevu.backend/internal/domain/entities"
)

// VerificationRepository defines verification record storage.
//
// Implementations must make CreateSuperseding, MarkAsUsed and
// IncrementAttempts safe under concurrent callers for the same
// (phoneNumber, purpose) key: the service runs in multiple instances,
// so serialization has to happen in the database, not in process.
type VerificationRepository interface {
	// Create inserts a record without touching existing ones
	Create(ctx context.Context, record *entities.VerificationRecord) error
	// CreateSuperseding marks any active record for the same
	// (phoneNumber, purpose) as used and inserts the new record, in a
	// single transaction.
	CreateSuperseding(ctx context.Context, record *entities.VerificationRecord) error
	// FindLatestActive returns the newest unused, unexpired record for
	// the key, or ErrNotFound.
	FindLatestActive(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) (*entities.VerificationRecord, error)
	// FindMostRecent returns the newest record for the key regardless
	// of used/expired state, or ErrNotFound.
	FindMostRecent(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) (*entities.VerificationRecord, error)
	// MarkAsUsed flips is_used to true; the transition is one-way.
	// Returns ErrNotFound when the record is missing or already used.
	MarkAsUsed(ctx context.Context, id uuid.UUID) error
	// IncrementAttempts atomically adds one attempt and returns the new count
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	// CountDailyRequests counts codes issued today for the phone number
	// and, when ip is non-empty, from the IP address.
	CountDailyRequests(ctx context.Context, phoneNumber, ip string) (*entities.DailyRequestCounts, error)
	// Cleanup removes expired records that were already consumed
	Cleanup(ctx context.Context) (int64, error)
	// GetStats returns aggregate counts, optionally filtered
	GetStats(ctx context.Context, filter entities.StatsFilter) (*entities.VerificationStats, error)
	// InvalidateUserVerifications marks every record owned by the user as used
	InvalidateUserVerifications(ctx context.Context, userID string) (int64, error)
}

// AuditRepository persists state-transition audit entries
type AuditRepository interface {
	Create(ctx context.Context, entry *entities.AuditEntry) error
}
