package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/clock"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/event"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/mocks"
)

const (
	pendingTTL = 15 * time.Minute
	orphanTTL  = 30 * time.Minute
)

func newTestSweeper(clk clock.Clock) (*Sweeper, *mocks.MockBookingRepository, *mocks.MockReservationLedger, *mocks.MockPublisher) {
	bookings := new(mocks.MockBookingRepository)
	ledger := new(mocks.MockReservationLedger)
	publisher := new(mocks.MockPublisher)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := New(bookings, ledger, publisher, clk, logger, pendingTTL, orphanTTL)

	return s, bookings, ledger, publisher
}

func TestSweepOnce(t *testing.T) {
	now := time.Date(2025, 4, 12, 20, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)

	s, bookings, ledger, publisher := newTestSweeper(clk)

	bookings.On("ExpirePending", mock.Anything, now.Add(-pendingTTL)).Return(int64(3), nil)
	ledger.On("ReleaseOrphaned", mock.Anything, now.Add(-orphanTTL)).Return(int64(2), nil)
	publisher.On("PublishBookingEvent", mock.Anything, event.BookingEvent{
		Type:       event.TypeBookingsExpired,
		Expired:    3,
		OccurredAt: now,
	}).Return(nil)

	expired, err := s.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), expired)

	bookings.AssertExpectations(t)
	ledger.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSweepOnce_NothingToReclaim(t *testing.T) {
	now := time.Date(2025, 4, 12, 20, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)

	s, bookings, ledger, publisher := newTestSweeper(clk)

	bookings.On("ExpirePending", mock.Anything, mock.Anything).Return(int64(0), nil)
	ledger.On("ReleaseOrphaned", mock.Anything, mock.Anything).Return(int64(0), nil)

	expired, err := s.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, expired)

	publisher.AssertNotCalled(t, "PublishBookingEvent", mock.Anything, mock.Anything)
}

func TestSweepOnce_CutoffTracksClock(t *testing.T) {
	now := time.Date(2025, 4, 12, 20, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)

	s, bookings, ledger, publisher := newTestSweeper(clk)

	bookings.On("ExpirePending", mock.Anything, now.Add(-pendingTTL)).Return(int64(0), nil).Once()
	ledger.On("ReleaseOrphaned", mock.Anything, mock.Anything).Return(int64(0), nil)
	publisher.On("PublishBookingEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := s.SweepOnce(context.Background())
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)

	bookings.On("ExpirePending", mock.Anything, now.Add(10*time.Minute).Add(-pendingTTL)).Return(int64(1), nil).Once()

	expired, err := s.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	bookings.AssertExpectations(t)
}

func TestSweepOnce_PublishFailureIsSwallowed(t *testing.T) {
	now := time.Date(2025, 4, 12, 20, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)

	s, bookings, ledger, publisher := newTestSweeper(clk)

	bookings.On("ExpirePending", mock.Anything, mock.Anything).Return(int64(2), nil)
	ledger.On("ReleaseOrphaned", mock.Anything, mock.Anything).Return(int64(0), nil)
	publisher.On("PublishBookingEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	expired, err := s.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)
}

func TestSweepOnce_ExpireErrorPropagates(t *testing.T) {
	now := time.Date(2025, 4, 12, 20, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)

	s, bookings, ledger, publisher := newTestSweeper(clk)

	bookings.On("ExpirePending", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection reset"))

	_, err := s.SweepOnce(context.Background())

	assert.Error(t, err)

	ledger.AssertNotCalled(t, "ReleaseOrphaned", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishBookingEvent", mock.Anything, mock.Anything)
}
