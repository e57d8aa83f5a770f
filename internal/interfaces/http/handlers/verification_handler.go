package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"randevu.backend/internal/domain/entities"
	domainerrors "randevu.backend/internal/domain/errors"
	"randevu.backend/internal/interfaces/http/response"
)

// VerificationService is the usecase surface the handler needs
type VerificationService interface {
	RequestCode(ctx context.Context, input *entities.RequestCodeInput) (*entities.RequestCodeResult, error)
	VerifyCode(ctx context.Context, input *entities.VerifyCodeInput) (*entities.VerifyCodeResult, error)
	CleanupExpired(ctx context.Context) (int64, error)
	InvalidateUserVerifications(ctx context.Context, userID string) (int64, error)
	GetStats(ctx context.Context, filter entities.StatsFilter) (*entities.VerificationStats, error)
}

// VerificationHandler handles verification endpoints
type VerificationHandler struct {
	service VerificationService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(service VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// RequestCode issues a verification code
// POST /api/v1/verifications/request
func (h *VerificationHandler) RequestCode(c *gin.Context) {
	var input entities.RequestCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	input.IPAddress = c.ClientIP()
	input.UserAgent = c.Request.UserAgent()

	result, err := h.service.RequestCode(c.Request.Context(), &input)
	if err != nil {
		translateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// VerifyCode validates a submitted code
// POST /api/v1/verifications/verify
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	var input entities.VerifyCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	input.IPAddress = c.ClientIP()
	input.UserAgent = c.Request.UserAgent()

	result, err := h.service.VerifyCode(c.Request.Context(), &input)
	if err != nil {
		translateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetStats returns aggregate verification counts
// GET /api/v1/verifications/stats?phoneNumber=&purpose=
func (h *VerificationHandler) GetStats(c *gin.Context) {
	filter := entities.StatsFilter{
		PhoneNumber: c.Query("phoneNumber"),
	}
	if raw := c.Query("purpose"); raw != "" {
		purpose, err := entities.ParsePurpose(raw)
		if err != nil {
			response.Error(c, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidPurpose, "Unknown verification purpose", err))
			return
		}
		filter.Purpose = purpose
	}

	stats, err := h.service.GetStats(c.Request.Context(), filter)
	if err != nil {
		translateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// Cleanup triggers an expired-record sweep
// POST /api/v1/verifications/cleanup
func (h *VerificationHandler) Cleanup(c *gin.Context) {
	removed, err := h.service.CleanupExpired(c.Request.Context())
	if err != nil {
		translateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// InvalidateUserVerifications voids all codes owned by a user
// POST /api/v1/users/:id/verifications/invalidate
func (h *VerificationHandler) InvalidateUserVerifications(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		response.Error(c, domainerrors.BadRequest("user id is required"))
		return
	}

	count, err := h.service.InvalidateUserVerifications(c.Request.Context(), userID)
	if err != nil {
		translateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invalidated": count})
}

// translateError maps domain errors onto HTTP responses.
// Matching is by errors.Is/As against the closed error set, never by
// message text.
func translateError(c *gin.Context, err error) {
	var cooldownErr *domainerrors.CooldownActiveError
	if errors.As(err, &cooldownErr) {
		c.Header("Retry-After", strconv.Itoa(cooldownErr.RetryAfterSeconds()))
		response.ErrorWithFields(c,
			domainerrors.TooManyRequests(domainerrors.CodeCooldownActive, "Please wait before requesting another code", err),
			gin.H{"retryAfterSeconds": cooldownErr.RetryAfterSeconds()},
		)
		return
	}

	var invalidErr *domainerrors.CodeInvalidError
	if errors.As(err, &invalidErr) {
		response.ErrorWithFields(c,
			domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeCodeInvalid, "Incorrect verification code", err),
			gin.H{"attemptsRemaining": invalidErr.AttemptsRemaining},
		)
		return
	}

	switch {
	case errors.Is(err, domainerrors.ErrInvalidPhoneNumber):
		response.Error(c, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidPhone, "Phone number could not be parsed", err))
	case errors.Is(err, domainerrors.ErrInvalidPurpose):
		response.Error(c, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidPurpose, "Unknown verification purpose", err))
	case errors.Is(err, domainerrors.ErrDailyLimitExceeded):
		response.Error(c, domainerrors.TooManyRequests(domainerrors.CodeDailyLimit, "Daily verification limit reached", err))
	case errors.Is(err, domainerrors.ErrMaxAttemptsExceeded):
		response.Error(c, domainerrors.TooManyRequests(domainerrors.CodeMaxAttempts, "Too many failed attempts, request a new code", err))
	case errors.Is(err, domainerrors.ErrCodeExpired):
		response.Error(c, domainerrors.NewAppError(http.StatusGone, domainerrors.CodeCodeExpired, "Verification code expired, request a new one", err))
	case errors.Is(err, domainerrors.ErrNotFound):
		response.Error(c, domainerrors.NotFound("Resource not found"))
	default:
		response.Error(c, err)
	}
}
