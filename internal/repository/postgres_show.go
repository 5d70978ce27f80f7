package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) GetByID(ctx context.Context, showID int64) (*domain.Show, error) {
	query := `
		SELECT id, hall_id, title, start_time, end_time, base_price, status
		FROM shows
		WHERE id = $1
	`

	var show domain.Show

	err := p.db.QueryRow(ctx, query, showID).Scan(
		&show.ID,
		&show.HallID,
		&show.Title,
		&show.StartTime,
		&show.EndTime,
		&show.BasePrice,
		&show.Status,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &show, nil
}
