package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"randevu.backend/internal/domain/entities"
	"randevu.backend/internal/domain/gateways"
)

// MockVerificationRepository mocks repositories.VerificationRepository
type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) Create(ctx context.Context, record *entities.VerificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVerificationRepository) CreateSuperseding(ctx context.Context, record *entities.VerificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVerificationRepository) FindLatestActive(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) (*entities.VerificationRecord, error) {
	args := m.Called(ctx, phoneNumber, purpose)
	if rec := args.Get(0); rec != nil {
		return rec.(*entities.VerificationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationRepository) FindMostRecent(ctx context.Context, phoneNumber string, purpose entities.VerificationPurpose) (*entities.VerificationRecord, error) {
	args := m.Called(ctx, phoneNumber, purpose)
	if rec := args.Get(0); rec != nil {
		return rec.(*entities.VerificationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationRepository) MarkAsUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVerificationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockVerificationRepository) CountDailyRequests(ctx context.Context, phoneNumber, ip string) (*entities.DailyRequestCounts, error) {
	args := m.Called(ctx, phoneNumber, ip)
	if counts := args.Get(0); counts != nil {
		return counts.(*entities.DailyRequestCounts), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationRepository) Cleanup(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVerificationRepository) GetStats(ctx context.Context, filter entities.StatsFilter) (*entities.VerificationStats, error) {
	args := m.Called(ctx, filter)
	if stats := args.Get(0); stats != nil {
		return stats.(*entities.VerificationStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationRepository) InvalidateUserVerifications(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository mocks repositories.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *entities.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockSMSGateway mocks gateways.SMSGateway
type MockSMSGateway struct {
	mock.Mock
}

func (m *MockSMSGateway) Send(ctx context.Context, phoneNumber, message string) (*gateways.SendResult, error) {
	args := m.Called(ctx, phoneNumber, message)
	if res := args.Get(0); res != nil {
		return res.(*gateways.SendResult), args.Error(1)
	}
	return nil, args.Error(1)
}
