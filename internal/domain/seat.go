package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type SeatType string

const (
	SeatStandard SeatType = "standard"
	SeatVIP      SeatType = "vip"
	SeatCouple   SeatType = "couple"
)

// Seat is catalog data, read-only for this core. ExtraPrice is the
// per-seat-type surcharge maintained by the pricing collaborator; the final
// seat price is the show's base price plus this surcharge.
type Seat struct {
	ID         int64
	HallID     int64
	Row        int
	Col        int
	Label      string
	Type       SeatType
	ExtraPrice decimal.Decimal
	Disabled   bool
}

// ShowSeats bundles the seats of a show's hall with the show's base price so
// per-seat prices can be computed in one place.
type ShowSeats struct {
	ShowID    int64
	HallID    int64
	BasePrice decimal.Decimal
	Seats     []Seat
}

func (ss *ShowSeats) PriceOf(seat Seat) decimal.Decimal {
	return ss.BasePrice.Add(seat.ExtraPrice)
}

// SeatIDs returns the ids of all seats in catalog order.
func (ss *ShowSeats) SeatIDs() []int64 {
	ids := make([]int64, len(ss.Seats))
	for i, s := range ss.Seats {
		ids[i] = s.ID
	}
	return ids
}

type SeatRepository interface {
	// GetSeatsByShow returns every non-deleted seat of the show's hall,
	// including disabled ones, pre-sorted by row and column.
	GetSeatsByShow(ctx context.Context, showID int64) (*ShowSeats, error)

	// GetSeatsByShowAndSeatIDs returns only the requested seats that belong
	// to the show's hall and are neither disabled nor soft-deleted. A result
	// shorter than the request means some seats failed validation.
	GetSeatsByShowAndSeatIDs(ctx context.Context, showID int64, seatIDs []int64) (*ShowSeats, error)
}
