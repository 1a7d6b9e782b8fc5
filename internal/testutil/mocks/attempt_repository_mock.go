package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mathflash/internal/models"
)

// MockAttemptRepository is a mock implementation of repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) RecordAnswer(ctx context.Context, attempt models.Attempt, session models.Session) (int64, error) {
	args := m.Called(ctx, attempt, session)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.Attempt, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Recent(ctx context.Context, sessionID int64, limit int) ([]models.Attempt, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}
