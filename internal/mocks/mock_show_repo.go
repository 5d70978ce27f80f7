package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type MockShowRepository struct {
	mock.Mock
	domain.ShowRepository
}

func (m *MockShowRepository) GetByID(ctx context.Context, showID int64) (*domain.Show, error) {
	args := m.Called(ctx, showID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Show), args.Error(1)
}
