package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/app"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/clock"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/event"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/mailer"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Mailer *mailer.MockMailer
	Clock  *clock.Fake
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mockMailer := mailer.NewMockMailer()
	fakeClock := clock.NewFake(time.Now().UTC())

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		mockMailer,
		event.NoopPublisher{},
		fakeClock,
	)

	return &TestApp{
		App:    application,
		DB:     db,
		Redis:  redisClient,
		Mailer: mockMailer,
		Clock:  fakeClock,
	}, nil
}
