package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

// PostgresReservationLedger backs the exclusivity ledger with a table
// whose primary key is (show_id, seat_id). Every race over a seat is
// decided by that constraint, one row per seat, no transaction spanning
// the batch.
type PostgresReservationLedger struct {
	db             *pgxpool.Pool
	claimCounter   metric.Int64Counter
	rejectCounter  metric.Int64Counter
	releaseCounter metric.Int64Counter
}

func NewPostgresReservationLedger(db *pgxpool.Pool) *PostgresReservationLedger {
	meter := otel.Meter("reservation-ledger")

	claimCounter, _ := meter.Int64Counter(
		"ledger.seats.claimed",
		metric.WithDescription("Number of seats successfully claimed in the ledger"))
	rejectCounter, _ := meter.Int64Counter(
		"ledger.seats.rejected",
		metric.WithDescription("Number of seat claims lost to an existing ledger row"))
	releaseCounter, _ := meter.Int64Counter(
		"ledger.seats.released",
		metric.WithDescription("Number of seats released back to the sellable pool"))

	return &PostgresReservationLedger{
		db:             db,
		claimCounter:   claimCounter,
		rejectCounter:  rejectCounter,
		releaseCounter: releaseCounter,
	}
}

func (p *PostgresReservationLedger) TryClaim(ctx context.Context, showID int64, seatIDs []int64) ([]int64, error) {
	query := `
		INSERT INTO seat_reservations (show_id, seat_id)
		VALUES ($1, $2)
		ON CONFLICT (show_id, seat_id) DO NOTHING
	`

	claimed := make([]int64, 0, len(seatIDs))

	// Each seat is claimed independently so a lost seat never voids the
	// claims already won. The caller decides what a partial win means.
	for _, seatID := range seatIDs {
		tag, err := p.db.Exec(ctx, query, showID, seatID)
		if err != nil {
			return claimed, err
		}

		if tag.RowsAffected() > 0 {
			claimed = append(claimed, seatID)
		}
	}

	p.claimCounter.Add(ctx, int64(len(claimed)))
	p.rejectCounter.Add(ctx, int64(len(seatIDs)-len(claimed)))

	return claimed, nil
}

func (p *PostgresReservationLedger) Release(ctx context.Context, showID int64, seatIDs []int64) error {
	query := `
		DELETE FROM seat_reservations
		WHERE show_id = $1 AND seat_id = ANY($2)
	`

	tag, err := p.db.Exec(ctx, query, showID, seatIDs)
	if err != nil {
		return err
	}

	p.releaseCounter.Add(ctx, tag.RowsAffected())

	return nil
}

func (p *PostgresReservationLedger) SeatsByShow(ctx context.Context, showID int64) ([]domain.SeatReservation, error) {
	query := `
		SELECT show_id, seat_id, booking_id
		FROM seat_reservations
		WHERE show_id = $1
		ORDER BY seat_id
	`

	rows, err := p.db.Query(ctx, query, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.SeatReservation

	for rows.Next() {
		var r domain.SeatReservation

		err = rows.Scan(&r.ShowID, &r.SeatID, &r.BookingID)
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, r)
	}

	return reservations, rows.Err()
}

func (p *PostgresReservationLedger) ReleaseOrphaned(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM seat_reservations
		WHERE booking_id IS NULL AND created_at < $1
	`

	tag, err := p.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	p.releaseCounter.Add(ctx, tag.RowsAffected())

	return tag.RowsAffected(), nil
}
