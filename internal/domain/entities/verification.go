package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	domainerrors "randevu.backend/internal/domain/errors"
)

// VerificationPurpose scopes a code to the business action it proves
type VerificationPurpose string

const (
	PurposeLogin                   VerificationPurpose = "LOGIN"
	PurposeRegistration            VerificationPurpose = "REGISTRATION"
	PurposePhoneChange             VerificationPurpose = "PHONE_CHANGE"
	PurposeStaffInvitation         VerificationPurpose = "STAFF_INVITATION"
	PurposeAppointmentConfirmation VerificationPurpose = "APPOINTMENT_CONFIRMATION"
	PurposeAppointmentReminder     VerificationPurpose = "APPOINTMENT_REMINDER"
	PurposePasswordReset           VerificationPurpose = "PASSWORD_RESET"
)

// AllPurposes lists every recognized purpose
var AllPurposes = []VerificationPurpose{
	PurposeLogin,
	PurposeRegistration,
	PurposePhoneChange,
	PurposeStaffInvitation,
	PurposeAppointmentConfirmation,
	PurposeAppointmentReminder,
	PurposePasswordReset,
}

// ParsePurpose validates a raw purpose value at the boundary.
// Unknown values are rejected, never stored.
func ParsePurpose(raw string) (VerificationPurpose, error) {
	p := VerificationPurpose(raw)
	for _, known := range AllPurposes {
		if p == known {
			return p, nil
		}
	}
	return "", domainerrors.ErrInvalidPurpose
}

// VerificationRecord represents one issued verification code.
// The plaintext code never appears here; only its bcrypt hash is kept.
type VerificationRecord struct {
	ID          uuid.UUID           `json:"id"`
	UserID      null.String         `json:"userId,omitempty"`
	PhoneNumber string              `json:"phoneNumber"`
	IPAddress   null.String         `json:"-"`
	CodeHash    string              `json:"-"`
	Purpose     VerificationPurpose `json:"purpose"`
	IsUsed      bool                `json:"isUsed"`
	Attempts    int                 `json:"attempts"`
	MaxAttempts int                 `json:"maxAttempts"`
	ExpiresAt   time.Time           `json:"expiresAt"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// IsExpired reports whether the record's TTL has elapsed
func (r *VerificationRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsActive reports whether the record can still accept attempts
func (r *VerificationRecord) IsActive(now time.Time) bool {
	return !r.IsUsed && !r.IsExpired(now)
}

// RequestCodeInput is the issuance request
type RequestCodeInput struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Purpose     string `json:"purpose" binding:"required"`

	// Optional owner reference (weak, not ownership)
	UserID null.String `json:"userId"`

	// Caller metadata for the guard and audit trail, set by the handler
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// RequestCodeResult is returned to the caller; it never carries the code
type RequestCodeResult struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyCodeInput is the validation request
type VerifyCodeInput struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Purpose     string `json:"purpose" binding:"required"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// VerifyCodeResult is returned on successful validation
type VerifyCodeResult struct {
	Message string      `json:"message"`
	UserID  null.String `json:"userId,omitempty"`
}

// DailyRequestCounts holds calendar-day issuance counts used by the guard
type DailyRequestCounts struct {
	PhoneCount int64
	IPCount    int64
}

// VerificationStats is the read-only aggregate exposed to staff
type VerificationStats struct {
	Total   int64 `json:"total"`
	Used    int64 `json:"used"`
	Expired int64 `json:"expired"`
	Active  int64 `json:"active"`
}

// StatsFilter narrows GetStats; zero values mean "all"
type StatsFilter struct {
	PhoneNumber string
	Purpose     VerificationPurpose
}
