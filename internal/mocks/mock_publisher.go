package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/event"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingEvent(ctx context.Context, e event.BookingEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
