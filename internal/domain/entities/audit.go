package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Audit actions recorded by the verification subsystem
const (
	AuditActionCodeSent          = "code_sent"
	AuditActionCodeVerified      = "code_verified"
	AuditActionCodeFailed        = "code_failed_attempt"
	AuditActionCodeLocked        = "code_max_attempts"
	AuditActionUserInvalidated   = "verifications_invalidated"
	AuditEntityPhoneVerification = "phone_verification"
)

// AuditEntry is one state-transition record. Phone numbers in Details
// must already be masked by the caller.
type AuditEntry struct {
	ID        uuid.UUID   `json:"id"`
	UserID    null.String `json:"userId,omitempty"`
	Action    string      `json:"action"`
	Entity    string      `json:"entity"`
	EntityID  null.String `json:"entityId,omitempty"`
	Details   string      `json:"details"`
	IPAddress null.String `json:"ipAddress,omitempty"`
	UserAgent null.String `json:"userAgent,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
