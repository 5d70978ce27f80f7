package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrHoldNotFound      = errors.New("no live hold exists for this show")
	ErrHoldExpired       = errors.New("your hold has expired, please select your seats again")
	ErrInvalidTransition = errors.New("booking status transition not allowed")
	ErrBookingNotPending = errors.New("booking is no longer pending")
)

// SeatConflictError identifies exactly which seats lost a race for a show.
// Callers must surface the contested seats to the buyer instead of a vague
// failure, and must never retry against substitute seats.
type SeatConflictError struct {
	ShowID  int64
	SeatIDs []int64
}

func (e *SeatConflictError) Error() string {
	if len(e.SeatIDs) == 0 {
		return fmt.Sprintf("seat(s) are already taken for show %d", e.ShowID)
	}

	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}

	return fmt.Sprintf("seat(s) %s are already taken for show %d", strings.Join(ids, ", "), e.ShowID)
}
