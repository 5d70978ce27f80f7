package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) GetSeatsByShow(ctx context.Context, showID int64) (*domain.ShowSeats, error) {
	query := `
		SELECT
			sh.id,
			sh.hall_id,
			sh.base_price,
			se.id,
			se.hall_id,
			se.seat_row,
			se.seat_col,
			se.label,
			se.seat_type,
			se.extra_price,
			se.disabled
		FROM shows sh
		JOIN seats se
			ON se.hall_id = sh.hall_id AND se.deleted_at IS NULL
		WHERE sh.id = $1
		ORDER BY se.seat_row, se.seat_col
	`

	return p.querySeats(ctx, query, showID)
}

func (p *PostgresSeatRepository) GetSeatsByShowAndSeatIDs(
	ctx context.Context,
	showID int64,
	seatIDs []int64) (*domain.ShowSeats, error) {

	query := `
		SELECT
			sh.id,
			sh.hall_id,
			sh.base_price,
			se.id,
			se.hall_id,
			se.seat_row,
			se.seat_col,
			se.label,
			se.seat_type,
			se.extra_price,
			se.disabled
		FROM shows sh
		JOIN seats se
			ON se.hall_id = sh.hall_id AND se.deleted_at IS NULL
		WHERE sh.id = $1 AND se.id = ANY($2) AND NOT se.disabled
		ORDER BY se.seat_row, se.seat_col
	`

	return p.querySeats(ctx, query, showID, seatIDs)
}

func (p *PostgresSeatRepository) querySeats(ctx context.Context, query string, args ...any) (*domain.ShowSeats, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var showSeats domain.ShowSeats

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&showSeats.ShowID,
			&showSeats.HallID,
			&showSeats.BasePrice,
			&seat.ID,
			&seat.HallID,
			&seat.Row,
			&seat.Col,
			&seat.Label,
			&seat.Type,
			&seat.ExtraPrice,
			&seat.Disabled,
		)
		if err != nil {
			return nil, err
		}

		showSeats.Seats = append(showSeats.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(showSeats.Seats) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return &showSeats, nil
}
