package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type MockHoldStore struct {
	mock.Mock
	domain.HoldStore
}

func (m *MockHoldStore) CreateOrReplace(ctx context.Context, hold *domain.SeatHold, ttl time.Duration) error {
	args := m.Called(ctx, hold, ttl)
	return args.Error(0)
}

func (m *MockHoldStore) Get(ctx context.Context, showID, userID int64) (*domain.SeatHold, error) {
	args := m.Called(ctx, showID, userID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.SeatHold), args.Error(1)
}

func (m *MockHoldStore) Refresh(ctx context.Context, showID, userID int64, ttl time.Duration) (*domain.SeatHold, error) {
	args := m.Called(ctx, showID, userID, ttl)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.SeatHold), args.Error(1)
}

func (m *MockHoldStore) Release(ctx context.Context, showID, userID int64) error {
	args := m.Called(ctx, showID, userID)
	return args.Error(0)
}

func (m *MockHoldStore) HeldSeats(ctx context.Context, showID int64) ([]int64, error) {
	args := m.Called(ctx, showID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]int64), args.Error(1)
}
