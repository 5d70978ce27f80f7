// Package sweeper reclaims abandoned work in the background: pending
// bookings whose payment never arrived and ledger claims whose confirm
// flow died before attaching a booking.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/clock"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/event"
)

type Sweeper struct {
	bookings       domain.BookingRepository
	ledger         domain.ReservationLedger
	publisher      event.Publisher
	clock          clock.Clock
	logger         *slog.Logger
	pendingTTL     time.Duration
	orphanTTL      time.Duration
	expiredCounter metric.Int64Counter
}

func New(
	bookings domain.BookingRepository,
	ledger domain.ReservationLedger,
	publisher event.Publisher,
	clk clock.Clock,
	logger *slog.Logger,
	pendingTTL time.Duration,
	orphanTTL time.Duration) *Sweeper {

	meter := otel.Meter("sweeper")

	expiredCounter, _ := meter.Int64Counter(
		"sweeper.bookings.expired",
		metric.WithDescription("Number of pending bookings expired by the sweeper"))

	return &Sweeper{
		bookings:       bookings,
		ledger:         ledger,
		publisher:      publisher,
		clock:          clk,
		logger:         logger,
		pendingTTL:     pendingTTL,
		orphanTTL:      orphanTTL,
		expiredCounter: expiredCounter,
	}
}

// SweepOnce runs a single pass. Idempotent: bookings flipped by an earlier
// pass no longer match, so overlapping or repeated runs are harmless.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	now := s.clock.Now().UTC()

	expired, err := s.bookings.ExpirePending(ctx, now.Add(-s.pendingTTL))
	if err != nil {
		return 0, err
	}

	orphaned, err := s.ledger.ReleaseOrphaned(ctx, now.Add(-s.orphanTTL))
	if err != nil {
		return expired, err
	}

	if expired > 0 || orphaned > 0 {
		s.logger.Info("sweep completed",
			"expiredBookings", expired,
			"orphanedClaims", orphaned)
	}

	s.expiredCounter.Add(ctx, expired)

	if expired > 0 {
		err = s.publisher.PublishBookingEvent(ctx, event.BookingEvent{
			Type:       event.TypeBookingsExpired,
			Expired:    expired,
			OccurredAt: now,
		})
		if err != nil {
			s.logger.Error("failed to publish expiration event", "error", err)
		}
	}

	return expired, nil
}
