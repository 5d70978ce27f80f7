package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type MockSeatRepository struct {
	mock.Mock
	domain.SeatRepository
}

func (m *MockSeatRepository) GetSeatsByShow(ctx context.Context, showID int64) (*domain.ShowSeats, error) {
	args := m.Called(ctx, showID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ShowSeats), args.Error(1)
}

func (m *MockSeatRepository) GetSeatsByShowAndSeatIDs(
	ctx context.Context,
	showID int64,
	seatIDs []int64) (*domain.ShowSeats, error) {

	args := m.Called(ctx, showID, seatIDs)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ShowSeats), args.Error(1)
}
