package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"randevu.backend/internal/config"
	"randevu.backend/internal/domain/entities"
	domainerrors "randevu.backend/internal/domain/errors"
	"randevu.backend/internal/domain/gateways"
	"randevu.backend/internal/domain/repositories"
	"randevu.backend/pkg/crypto"
	"randevu.backend/pkg/logger"
	"randevu.backend/pkg/metrics"
	"randevu.backend/pkg/phone"
)

// VerificationUsecase issues and validates phone verification codes
type VerificationUsecase struct {
	verifRepo repositories.VerificationRepository
	auditRepo repositories.AuditRepository
	gateway   gateways.SMSGateway
	cfg       config.VerificationConfig
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	verifRepo repositories.VerificationRepository,
	auditRepo repositories.AuditRepository,
	gateway gateways.SMSGateway,
	cfg config.VerificationConfig,
) *VerificationUsecase {
	return &VerificationUsecase{
		verifRepo: verifRepo,
		auditRepo: auditRepo,
		gateway:   gateway,
		cfg:       cfg,
	}
}

// RequestCode issues a new verification code for (phoneNumber, purpose).
//
// Order matters: the rate guard runs before any write, the prior active
// record is superseded in the same transaction that stores the new one,
// and SMS dispatch happens last because its outcome must not affect the
// stored record.
func (u *VerificationUsecase) RequestCode(ctx context.Context, input *entities.RequestCodeInput) (*entities.RequestCodeResult, error) {
	normalized, err := phone.Normalize(input.PhoneNumber)
	if err != nil {
		return nil, domainerrors.ErrInvalidPhoneNumber
	}

	purpose, err := entities.ParsePurpose(input.Purpose)
	if err != nil {
		return nil, err
	}

	if err := u.checkRateLimits(ctx, normalized, input.IPAddress); err != nil {
		return nil, err
	}

	if err := u.checkCooldown(ctx, normalized, purpose); err != nil {
		return nil, err
	}

	code, err := crypto.GenerateNumericCode(u.cfg.CodeLength)
	if err != nil {
		return nil, err
	}
	codeHash, err := crypto.HashCode(code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &entities.VerificationRecord{
		UserID:      input.UserID,
		PhoneNumber: normalized,
		CodeHash:    codeHash,
		Purpose:     purpose,
		Attempts:    0,
		MaxAttempts: u.cfg.MaxAttempts,
		ExpiresAt:   now.Add(u.cfg.CodeExpiry),
		CreatedAt:   now,
	}
	if input.IPAddress != "" {
		record.IPAddress = null.StringFrom(input.IPAddress)
	}

	if err := u.verifRepo.CreateSuperseding(ctx, record); err != nil {
		return nil, err
	}

	u.audit(ctx, entities.AuditActionCodeSent, record, input.IPAddress, input.UserAgent, map[string]interface{}{
		"phone":   phone.Mask(normalized),
		"purpose": string(purpose),
	})
	metrics.CodesIssued.WithLabelValues(string(purpose)).Inc()

	// Best-effort dispatch: a gateway failure is logged, never surfaced.
	// The stored record stays valid either way.
	if result, err := u.gateway.Send(ctx, normalized, smsText(purpose, code)); err != nil || !result.Success {
		metrics.SMSDispatchFailures.Inc()
		logger.Warn(ctx, "SMS dispatch failed",
			zap.String("phone", phone.Mask(normalized)),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
	}

	return &entities.RequestCodeResult{
		Message:   "Verification code sent",
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// checkRateLimits enforces the per-phone and per-IP daily quotas.
// Counts come from the store's calendar-day query, not from in-memory
// state, so all service instances see the same numbers.
func (u *VerificationUsecase) checkRateLimits(ctx context.Context, phoneNumber, ip string) error {
	counts, err := u.verifRepo.CountDailyRequests(ctx, phoneNumber, ip)
	if err != nil {
		return err
	}
	if counts.PhoneCount >= int64(u.cfg.DailyLimitPerPhone) {
		metrics.IssuanceRejected.WithLabelValues(metrics.ReasonDailyLimit).Inc()
		return domainerrors.ErrDailyLimitExceeded
	}
	if ip != "" && counts.IPCount >= int64(u.cfg.DailyLimitPerIP) {
		metrics.IssuanceRejected.WithLabelValues(metrics.ReasonDailyLimit).Inc()
		return domainerrors.ErrDailyLimitExceeded
	}
	return nil
}

// checkCooldown rejects issuance while an active record is younger than
// the configured cooldown
func (u *VerificationUsecase) checkCooldown(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) error {
	active, err := u.verifRepo.FindLatestActive(ctx, phoneNumber, purpose)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	elapsed := time.Since(active.CreatedAt)
	if elapsed < u.cfg.Cooldown {
		metrics.IssuanceRejected.WithLabelValues(metrics.ReasonCooldown).Inc()
		return &domainerrors.CooldownActiveError{RetryAfter: u.cfg.Cooldown - elapsed}
	}
	return nil
}

// VerifyCode consumes a submitted code against the latest record
func (u *VerificationUsecase) VerifyCode(ctx context.Context, input *entities.VerifyCodeInput) (*entities.VerifyCodeResult, error) {
	normalized, err := phone.Normalize(input.PhoneNumber)
	if err != nil {
		return nil, domainerrors.ErrInvalidPhoneNumber
	}

	purpose, err := entities.ParsePurpose(input.Purpose)
	if err != nil {
		return nil, err
	}

	record, err := u.lookupRecord(ctx, normalized, purpose)
	if err != nil {
		return nil, err
	}

	if record.Attempts >= record.MaxAttempts {
		u.lockRecord(ctx, record, input.IPAddress, input.UserAgent)
		metrics.Validations.WithLabelValues(metrics.OutcomeMaxAttempts).Inc()
		return nil, domainerrors.ErrMaxAttemptsExceeded
	}

	matched := crypto.CheckCode(input.Code, record.CodeHash)

	// The attempt counts whether or not the code matched
	newAttempts, err := u.verifRepo.IncrementAttempts(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	if !matched {
		remaining := record.MaxAttempts - newAttempts
		u.audit(ctx, entities.AuditActionCodeFailed, record, input.IPAddress, input.UserAgent, map[string]interface{}{
			"phone":              phone.Mask(normalized),
			"purpose":            string(purpose),
			"attempts_remaining": remaining,
		})
		if remaining <= 0 {
			u.lockRecord(ctx, record, input.IPAddress, input.UserAgent)
			metrics.Validations.WithLabelValues(metrics.OutcomeMaxAttempts).Inc()
			return nil, domainerrors.ErrMaxAttemptsExceeded
		}
		metrics.Validations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, &domainerrors.CodeInvalidError{AttemptsRemaining: remaining}
	}

	// Consuming the record is conditional on it still being unused, so a
	// concurrent validation that won the race leaves nothing to consume.
	if err := u.verifRepo.MarkAsUsed(ctx, record.ID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.Validations.WithLabelValues(metrics.OutcomeExpired).Inc()
			return nil, domainerrors.ErrCodeExpired
		}
		return nil, err
	}

	u.audit(ctx, entities.AuditActionCodeVerified, record, input.IPAddress, input.UserAgent, map[string]interface{}{
		"phone":   phone.Mask(normalized),
		"purpose": string(purpose),
	})
	metrics.Validations.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return &entities.VerifyCodeResult{
		Message: "Phone number verified",
		UserID:  record.UserID,
	}, nil
}

// lookupRecord finds the record a submission should be checked against.
// Normally that is the latest active record; with the expiry grace
// policy enabled, a just-expired unused record is still eligible.
func (u *VerificationUsecase) lookupRecord(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) (*entities.VerificationRecord, error) {
	record, err := u.verifRepo.FindLatestActive(ctx, phoneNumber, purpose)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	if u.cfg.ExpiryGrace > 0 {
		recent, recentErr := u.verifRepo.FindMostRecent(ctx, phoneNumber, purpose)
		if recentErr == nil && !recent.IsUsed {
			overdue := time.Since(recent.ExpiresAt)
			if overdue >= 0 && overdue < u.cfg.ExpiryGrace {
				return recent, nil
			}
		}
		if recentErr != nil && !errors.Is(recentErr, domainerrors.ErrNotFound) {
			return nil, recentErr
		}
	}

	metrics.Validations.WithLabelValues(metrics.OutcomeExpired).Inc()
	return nil, domainerrors.ErrCodeExpired
}

// lockRecord forces is_used on a record that ran out of attempts
func (u *VerificationUsecase) lockRecord(ctx context.Context, record *entities.VerificationRecord, ip, userAgent string) {
	if err := u.verifRepo.MarkAsUsed(ctx, record.ID); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		logger.Error(ctx, "failed to lock verification record", zap.String("record_id", record.ID.String()), zap.Error(err))
	}
	u.audit(ctx, entities.AuditActionCodeLocked, record, ip, userAgent, map[string]interface{}{
		"phone":   phone.Mask(record.PhoneNumber),
		"purpose": string(record.Purpose),
	})
}

// CleanupExpired purges expired, consumed records
func (u *VerificationUsecase) CleanupExpired(ctx context.Context) (int64, error) {
	return u.verifRepo.Cleanup(ctx)
}

// InvalidateUserVerifications marks all of a user's records as used,
// e.g. on account suspension
func (u *VerificationUsecase) InvalidateUserVerifications(ctx context.Context, userID string) (int64, error) {
	count, err := u.verifRepo.InvalidateUserVerifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		u.audit(ctx, entities.AuditActionUserInvalidated, &entities.VerificationRecord{UserID: null.StringFrom(userID)}, "", "", map[string]interface{}{
			"invalidated": count,
		})
	}
	return count, nil
}

// GetStats returns read-only aggregate counts
func (u *VerificationUsecase) GetStats(ctx context.Context, filter entities.StatsFilter) (*entities.VerificationStats, error) {
	if filter.PhoneNumber != "" {
		normalized, err := phone.Normalize(filter.PhoneNumber)
		if err != nil {
			return nil, domainerrors.ErrInvalidPhoneNumber
		}
		filter.PhoneNumber = normalized
	}
	return u.verifRepo.GetStats(ctx, filter)
}

// audit writes a state-transition entry. Audit storage is an
// observability concern: a write failure is logged but never blocks the
// verification flow.
func (u *VerificationUsecase) audit(ctx context.Context, action string, record *entities.VerificationRecord, ip, userAgent string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &entities.AuditEntry{
		UserID:  record.UserID,
		Action:  action,
		Entity:  entities.AuditEntityPhoneVerification,
		Details: string(detailsJSON),
	}
	if record.ID != uuid.Nil {
		entry.EntityID = null.StringFrom(record.ID.String())
	}
	if ip != "" {
		entry.IPAddress = null.StringFrom(ip)
	}
	if userAgent != "" {
		entry.UserAgent = null.StringFrom(userAgent)
	}

	if err := u.auditRepo.Create(ctx, entry); err != nil {
		logger.Error(ctx, "failed to write audit entry", zap.String("action", action), zap.Error(err))
	}
}

// smsText renders the per-purpose message body
func smsText(purpose entities.VerificationPurpose, code string) string {
	switch purpose {
	case entities.PurposeAppointmentConfirmation:
		return fmt.Sprintf("Your appointment confirmation code is %s", code)
	case entities.PurposeAppointmentReminder:
		return fmt.Sprintf("Your appointment reminder code is %s", code)
	case entities.PurposeStaffInvitation:
		return fmt.Sprintf("Your staff invitation code is %s", code)
	case entities.PurposePasswordReset:
		return fmt.Sprintf("Your password reset code is %s", code)
	default:
		return fmt.Sprintf("Your verification code is %s", code)
	}
}
