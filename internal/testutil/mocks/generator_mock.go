package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/puzzle"
)

// MockGenerator is a mock implementation of puzzle.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(level difficulty.Level) (puzzle.Problem, error) {
	args := m.Called(level)
	return args.Get(0).(puzzle.Problem), args.Error(1)
}
