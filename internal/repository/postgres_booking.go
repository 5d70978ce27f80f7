package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *PostgresBookingRepository) CreateDirect(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := p.insertBookingTx(ctx, tx, booking)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO seat_reservations (show_id, seat_id, booking_id)
			VALUES ($1, $2, $3)
		`

		// A plain insert, not an upsert: losing any seat aborts the whole
		// booking, and the violating seat names the loser.
		for _, seatID := range booking.SeatIDs {
			_, err = tx.Exec(ctx, query, booking.ShowID, seatID, booking.ID)
			if err != nil {
				if isUniqueViolation(err) {
					return &domain.SeatConflictError{ShowID: booking.ShowID, SeatIDs: []int64{seatID}}
				}

				return err
			}
		}

		return nil
	})
}

func (p *PostgresBookingRepository) CreatePaid(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := p.insertBookingTx(ctx, tx, booking)
		if err != nil {
			return err
		}

		query := `
			UPDATE seat_reservations
			SET booking_id = $1
			WHERE show_id = $2 AND seat_id = ANY($3) AND booking_id IS NULL
		`

		tag, err := tx.Exec(ctx, query, booking.ID, booking.ShowID, booking.SeatIDs)
		if err != nil {
			return err
		}

		// Every claimed row must still be ours and unattached. Anything
		// else means the claim was tampered with between claim and attach.
		if tag.RowsAffected() != int64(len(booking.SeatIDs)) {
			return domain.ErrEditConflict
		}

		return nil
	})
}

func (p *PostgresBookingRepository) insertBookingTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (user_id, show_id, total_price, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		booking.UserID,
		booking.ShowID,
		booking.TotalPrice,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return err
	}

	query = `
		INSERT INTO tickets (booking_id, user_id, show_id, seat_id, price, code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	for i := range booking.Tickets {
		ticket := &booking.Tickets[i]
		ticket.BookingID = booking.ID

		err = tx.QueryRow(ctx, query,
			ticket.BookingID,
			ticket.UserID,
			ticket.ShowID,
			ticket.SeatID,
			ticket.Price,
			ticket.Code,
			ticket.Status,
		).Scan(&ticket.ID, &ticket.CreatedAt)

		if err != nil {
			if isUniqueViolation(err) {
				return &domain.SeatConflictError{ShowID: booking.ShowID, SeatIDs: []int64{ticket.SeatID}}
			}

			return err
		}
	}

	return nil
}

func (p *PostgresBookingRepository) GetByIDAndUser(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, show_id, total_price, status, created_at, updated_at
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	var booking domain.Booking

	err := p.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowID,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	err = p.loadTickets(ctx, p.db, &booking)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) loadTickets(ctx context.Context, q querier, booking *domain.Booking) error {
	query := `
		SELECT id, booking_id, user_id, show_id, seat_id, price, code, status, created_at
		FROM tickets
		WHERE booking_id = $1
		ORDER BY seat_id
	`

	rows, err := q.Query(ctx, query, booking.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	booking.Tickets = nil
	booking.SeatIDs = nil

	for rows.Next() {
		var ticket domain.Ticket

		err = rows.Scan(
			&ticket.ID,
			&ticket.BookingID,
			&ticket.UserID,
			&ticket.ShowID,
			&ticket.SeatID,
			&ticket.Price,
			&ticket.Code,
			&ticket.Status,
			&ticket.CreatedAt,
		)
		if err != nil {
			return err
		}

		booking.Tickets = append(booking.Tickets, ticket)
		booking.SeatIDs = append(booking.SeatIDs, ticket.SeatID)
	}

	return rows.Err()
}

func (p *PostgresBookingRepository) GetSummariesByUser(
	ctx context.Context,
	userID int64,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id,
			b.show_id,
			s.title,
			s.start_time,
			(SELECT COUNT(*) FROM tickets t WHERE t.booking_id = b.id),
			b.total_price,
			b.status,
			b.created_at
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		summaries    []domain.BookingSummary
		totalRecords int
	)

	for rows.Next() {
		var s domain.BookingSummary

		err = rows.Scan(
			&totalRecords,
			&s.BookingID,
			&s.ShowID,
			&s.ShowTitle,
			&s.ShowStart,
			&s.SeatCount,
			&s.TotalPrice,
			&s.Status,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return summaries, metadata, nil
}

func (p *PostgresBookingRepository) UpdateStatus(
	ctx context.Context,
	bookingID int64,
	status domain.BookingStatus) (*domain.Booking, error) {

	var booking domain.Booking

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT id, user_id, show_id, total_price, status, created_at
			FROM bookings
			WHERE id = $1
			FOR UPDATE
		`

		err := tx.QueryRow(ctx, query, bookingID).Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ShowID,
			&booking.TotalPrice,
			&booking.Status,
			&booking.CreatedAt,
		)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if !booking.Status.CanTransitionTo(status) {
			return domain.ErrInvalidTransition
		}

		query = `
			UPDATE bookings
			SET status = $2, updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`

		err = tx.QueryRow(ctx, query, bookingID, status).Scan(&booking.UpdatedAt)
		if err != nil {
			return err
		}

		booking.Status = status

		if ticketStatus := domain.TicketStatusFor(status); ticketStatus != domain.TicketActive {
			query = `
				UPDATE tickets
				SET status = $2
				WHERE booking_id = $1 AND status = 'active'
			`

			_, err = tx.Exec(ctx, query, bookingID, ticketStatus)
			if err != nil {
				return err
			}
		}

		if status.Releasable() {
			query = `
				DELETE FROM seat_reservations
				WHERE booking_id = $1
			`

			_, err = tx.Exec(ctx, query, bookingID)
			if err != nil {
				return err
			}
		}

		return p.loadTickets(ctx, tx, &booking)
	})

	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) DeletePending(ctx context.Context, bookingID, userID int64) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT status
			FROM bookings
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`

		var status domain.BookingStatus

		err := tx.QueryRow(ctx, query, bookingID, userID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if status != domain.BookingPending {
			return domain.ErrBookingNotPending
		}

		statements := []string{
			`DELETE FROM seat_reservations WHERE booking_id = $1`,
			`DELETE FROM tickets WHERE booking_id = $1`,
			`DELETE FROM bookings WHERE id = $1`,
		}

		for _, stmt := range statements {
			_, err = tx.Exec(ctx, stmt, bookingID)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (p *PostgresBookingRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	var expired int64

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = 'expired', updated_at = now()
			WHERE status = 'pending' AND created_at < $1
			RETURNING id
		`

		rows, err := tx.Query(ctx, query, cutoff)
		if err != nil {
			return err
		}

		var bookingIDs []int64

		for rows.Next() {
			var id int64

			if err = rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}

			bookingIDs = append(bookingIDs, id)
		}

		rows.Close()

		if err = rows.Err(); err != nil {
			return err
		}

		if len(bookingIDs) == 0 {
			return nil
		}

		query = `
			UPDATE tickets
			SET status = 'cancelled'
			WHERE booking_id = ANY($1) AND status = 'active'
		`

		_, err = tx.Exec(ctx, query, bookingIDs)
		if err != nil {
			return err
		}

		query = `
			DELETE FROM seat_reservations
			WHERE booking_id = ANY($1)
		`

		_, err = tx.Exec(ctx, query, bookingIDs)
		if err != nil {
			return err
		}

		expired = int64(len(bookingIDs))

		return nil
	})

	if err != nil {
		return 0, err
	}

	return expired, nil
}

func (p *PostgresBookingRepository) GetTicketByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := `
		SELECT id, booking_id, user_id, show_id, seat_id, price, code, status, created_at
		FROM tickets
		WHERE code = $1
	`

	var ticket domain.Ticket

	err := p.db.QueryRow(ctx, query, code).Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.UserID,
		&ticket.ShowID,
		&ticket.SeatID,
		&ticket.Price,
		&ticket.Code,
		&ticket.Status,
		&ticket.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &ticket, nil
}
