package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type MockReservationLedger struct {
	mock.Mock
	domain.ReservationLedger
}

func (m *MockReservationLedger) TryClaim(ctx context.Context, showID int64, seatIDs []int64) ([]int64, error) {
	args := m.Called(ctx, showID, seatIDs)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockReservationLedger) Release(ctx context.Context, showID int64, seatIDs []int64) error {
	args := m.Called(ctx, showID, seatIDs)
	return args.Error(0)
}

func (m *MockReservationLedger) SeatsByShow(ctx context.Context, showID int64) ([]domain.SeatReservation, error) {
	args := m.Called(ctx, showID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.SeatReservation), args.Error(1)
}

func (m *MockReservationLedger) ReleaseOrphaned(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
