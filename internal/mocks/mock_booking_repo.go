package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type MockBookingRepository struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepository) CreateDirect(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) CreatePaid(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByIDAndUser(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetSummariesByUser(
	ctx context.Context,
	userID int64,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	args := m.Called(ctx, userID, pagination)

	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}

	return args.Get(0).([]domain.BookingSummary), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockBookingRepository) UpdateStatus(
	ctx context.Context,
	bookingID int64,
	status domain.BookingStatus) (*domain.Booking, error) {

	args := m.Called(ctx, bookingID, status)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) DeletePending(ctx context.Context, bookingID, userID int64) error {
	args := m.Called(ctx, bookingID, userID)
	return args.Error(0)
}

func (m *MockBookingRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) GetTicketByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	args := m.Called(ctx, code)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Ticket), args.Error(1)
}
