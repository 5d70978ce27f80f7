package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ShowStatus string

const (
	ShowScheduled ShowStatus = "scheduled"
	ShowCancelled ShowStatus = "cancelled"
	ShowFinished  ShowStatus = "finished"
)

// Show is catalog data, read-only for this core. BasePrice is the
// per-show price every seat starts from before seat-type surcharges.
type Show struct {
	ID        int64
	HallID    int64
	Title     string
	StartTime time.Time
	EndTime   time.Time
	BasePrice decimal.Decimal
	Status    ShowStatus
}

// Sellable reports whether seats of this show may still be held or booked.
func (s *Show) Sellable(now time.Time) bool {
	return s.Status == ShowScheduled && now.Before(s.StartTime)
}

type ShowRepository interface {
	GetByID(ctx context.Context, showID int64) (*Show, error)
}
