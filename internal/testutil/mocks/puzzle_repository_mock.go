package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mathflash/internal/models"
)

// MockPuzzleRepository is a mock implementation of repository.PuzzleRepository
type MockPuzzleRepository struct {
	mock.Mock
}

func (m *MockPuzzleRepository) Insert(ctx context.Context, puzzle models.Puzzle) (int64, error) {
	args := m.Called(ctx, puzzle)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPuzzleRepository) Get(ctx context.Context, id int64) (*models.Puzzle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Puzzle), args.Error(1)
}

func (m *MockPuzzleRepository) Pending(ctx context.Context, sessionID int64) (*models.Puzzle, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Puzzle), args.Error(1)
}

func (m *MockPuzzleRepository) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

