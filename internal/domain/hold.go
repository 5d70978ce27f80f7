package domain

import (
	"context"
	"time"
)

// SeatHold is a user's temporary, exclusive claim on seats of one show.
// A hold is advisory: it reserves nothing in the ledger and the booking
// flow revalidates every seat. One live hold per (show, user).
type SeatHold struct {
	ShowID    int64     `json:"showId"`
	UserID    int64     `json:"userId"`
	SeatIDs   []int64   `json:"seatIds"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired is the authoritative liveness check. Storage-level TTL is a
// cleanup mechanism only and may lag behind this.
func (h *SeatHold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

type HoldStore interface {
	// CreateOrReplace stores the hold, atomically locking its seats
	// against other users. Replacing one's own hold releases the seats
	// no longer selected. Seats locked by someone else surface as
	// SeatConflictError naming the contested seats.
	CreateOrReplace(ctx context.Context, hold *SeatHold, ttl time.Duration) error

	// Get returns the user's live hold for the show, or ErrHoldNotFound.
	// Expired-but-not-yet-evicted holds count as not found.
	Get(ctx context.Context, showID, userID int64) (*SeatHold, error)

	// Refresh extends the hold and its seat locks by ttl from now.
	// ErrHoldNotFound when the hold is gone or already expired.
	Refresh(ctx context.Context, showID, userID int64, ttl time.Duration) (*SeatHold, error)

	// Release drops the hold and its seat locks. Releasing a hold that
	// does not exist is a no-op.
	Release(ctx context.Context, showID, userID int64) error

	// HeldSeats lists every seat of the show currently locked by any
	// live hold.
	HeldSeats(ctx context.Context, showID int64) ([]int64, error)
}
