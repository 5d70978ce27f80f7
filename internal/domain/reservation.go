package domain

import (
	"context"
	"time"
)

// SeatReservation is the exclusivity ledger entry for one (show, seat)
// pair. Its existence means the seat is unavailable to everyone else for
// that show; BookingID is set once the claim turns into a paid booking.
type SeatReservation struct {
	ShowID    int64
	SeatID    int64
	BookingID *int64
}

// ReservationLedger is the single serialization point of the whole
// subsystem: a uniqueness constraint on (show, seat) decides every race.
type ReservationLedger interface {
	// TryClaim inserts one ledger row per seat with insert-if-absent
	// semantics, each seat independently. It returns exactly the seats
	// newly claimed by this call; seats already claimed by anyone are
	// excluded. Partial success is expected and meaningful.
	TryClaim(ctx context.Context, showID int64, seatIDs []int64) ([]int64, error)

	// Release deletes ledger rows, returning the seats to the sellable
	// pool. Only call for seats whose owning booking is gone.
	Release(ctx context.Context, showID int64, seatIDs []int64) error

	// SeatsByShow lists all ledger rows for a show.
	SeatsByShow(ctx context.Context, showID int64) ([]SeatReservation, error)

	// ReleaseOrphaned deletes claims older than the cutoff that never got
	// attached to a booking, e.g. because a confirm flow crashed between
	// claiming and persisting. Returns the number of rows reclaimed.
	ReleaseOrphaned(ctx context.Context, cutoff time.Time) (int64, error)
}
