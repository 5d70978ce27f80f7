package domain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
	BookingExpired   BookingStatus = "expired"
	BookingRefunded  BookingStatus = "refunded"
)

type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

// Booking is the purchase aggregate: one or more seats of one show bought
// by one user. Invariants: TotalPrice equals the sum of ticket prices and
// every seat has exactly one ticket.
type Booking struct {
	ID         int64
	UserID     int64
	ShowID     int64
	SeatIDs    []int64
	TotalPrice decimal.Decimal
	Status     BookingStatus
	Tickets    []Ticket
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ticket is the per-seat unit issued from a booking. Code is the unique
// display code printed on the ticket and encoded in its QR.
type Ticket struct {
	ID        int64
	BookingID int64
	UserID    int64
	ShowID    int64
	SeatID    int64
	Price     decimal.Decimal
	Code      string
	Status    TicketStatus
	CreatedAt time.Time
}

type BookingSummary struct {
	BookingID  int64
	ShowID     int64
	ShowTitle  string
	ShowStart  time.Time
	SeatCount  int
	TotalPrice decimal.Decimal
	Status     BookingStatus
	CreatedAt  time.Time
}

// NewBooking assembles a booking plus one ticket per selected seat, pricing
// each seat from the catalog selection. The total is derived from the
// tickets so the price invariant holds by construction.
func NewBooking(userID int64, show *Show, selection *ShowSeats, status BookingStatus) (*Booking, error) {
	booking := &Booking{
		UserID:  userID,
		ShowID:  show.ID,
		SeatIDs: selection.SeatIDs(),
		Status:  status,
	}

	total := decimal.Zero

	for _, seat := range selection.Seats {
		code, err := newTicketCode()
		if err != nil {
			return nil, err
		}

		price := selection.PriceOf(seat)
		total = total.Add(price)

		booking.Tickets = append(booking.Tickets, Ticket{
			UserID: userID,
			ShowID: show.ID,
			SeatID: seat.ID,
			Price:  price,
			Code:   code,
			Status: TicketActive,
		})
	}

	booking.TotalPrice = total

	return booking, nil
}

func newTicketCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// CanTransitionTo reports whether an externally requested status change is
// legal. Expiry is owned by the sweeper and is reachable from pending only.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	switch s {
	case BookingPending:
		return target == BookingPaid || target == BookingCancelled || target == BookingExpired
	case BookingPaid:
		return target == BookingCancelled || target == BookingRefunded
	default:
		return false
	}
}

// TicketStatusFor maps a booking status change onto the ticket cascade.
func TicketStatusFor(status BookingStatus) TicketStatus {
	switch status {
	case BookingPaid:
		return TicketActive
	case BookingRefunded:
		return TicketRefunded
	default:
		return TicketCancelled
	}
}

// Releasable reports whether a booking in this status no longer owns its
// ledger rows, so the seats must return to the sellable pool.
func (s BookingStatus) Releasable() bool {
	return s == BookingCancelled || s == BookingExpired || s == BookingRefunded
}

type BookingRepository interface {
	// CreateDirect persists a pending booking, its tickets and its ledger
	// rows in one atomic unit. A uniqueness violation on any (show, seat)
	// aborts the whole unit and surfaces as SeatConflictError.
	CreateDirect(ctx context.Context, booking *Booking) error

	// CreatePaid persists a paid booking and its tickets, attaching the
	// ledger rows the caller already claimed. The claim itself happened
	// outside this call; see the hold-confirm saga.
	CreatePaid(ctx context.Context, booking *Booking) error

	GetByIDAndUser(ctx context.Context, bookingID, userID int64) (*Booking, error)

	GetSummariesByUser(ctx context.Context, userID int64, pagination Pagination) ([]BookingSummary, *Metadata, error)

	// UpdateStatus applies an external transition (e.g. pending to paid),
	// cascading ticket statuses and releasing ledger rows when the target
	// status is releasable. ErrInvalidTransition when the move is illegal.
	UpdateStatus(ctx context.Context, bookingID int64, status BookingStatus) (*Booking, error)

	// DeletePending removes a still-pending booking with its tickets and
	// ledger rows. ErrBookingNotPending once payment state has moved on.
	DeletePending(ctx context.Context, bookingID, userID int64) error

	// ExpirePending flips pending bookings created before the cutoff to
	// expired, cancels their active tickets and releases their ledger
	// rows. Idempotent: rows already expired no longer match.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)

	GetTicketByCode(ctx context.Context, code string) (*Ticket, error)
}
