package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/app"
)

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
	server         *httptest.Server
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	redisContainer, err := getCacheContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			Dsn:          postgresContainer.ConnectionString,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			Url:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Hold: app.HoldConfig{
			DefaultTTL: 5 * time.Minute,
			MaxSeats:   8,
		},
		Sweep: app.SweepConfig{
			Interval:   time.Minute,
			PendingTTL: 15 * time.Minute,
			OrphanTTL:  30 * time.Minute,
		},
	}

	testApp, err := newTestApp(cfg)
	if err != nil {
		log.Printf("cannot initialize app: %s", err)
		return
	}

	s.app = testApp
	s.server = httptest.NewServer(testApp.App.Routes())
}

func (s *BaseSuite) TearDownSuite() {
	s.server.Close()
	if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

// resetState truncates all booking data, restarts the id sequences so
// seeded rows get predictable ids, clears Redis and reseeds the catalog.
func (s *BaseSuite) resetState() {
	ctx := context.Background()

	_, err := s.app.DB.Exec(ctx,
		`TRUNCATE seat_reservations, tickets, bookings, shows, seats, halls RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	s.Require().NoError(s.app.Redis.FlushAll(ctx).Err())

	s.app.Mailer.Reset()

	// The show starts far in the future because the fake clock only moves
	// forward across tests.
	seedStatements := []string{
		`INSERT INTO halls (name) VALUES ('Hall 1')`,
		`INSERT INTO seats (hall_id, seat_row, seat_col, label, seat_type, extra_price, disabled) VALUES
			(1, 1, 1, 'A1', 'standard', 0, false),
			(1, 1, 2, 'A2', 'standard', 0, false),
			(1, 1, 3, 'A3', 'vip', 15, false),
			(1, 2, 1, 'B1', 'standard', 0, true),
			(1, 2, 2, 'B2', 'couple', 10, false)`,
		`INSERT INTO shows (hall_id, title, start_time, end_time, base_price, status) VALUES
			(1, 'Test Show', now() + interval '1000 hours', now() + interval '1002 hours', 50, 'scheduled')`,
	}

	for _, stmt := range seedStatements {
		_, err = s.app.DB.Exec(ctx, stmt)
		s.Require().NoError(err)
	}
}

// do executes a request against the router as the given user and returns
// the response.
func (s *BaseSuite) do(method, path string, body any, userID int64) *http.Response {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	headers := map[string]string{}
	if userID > 0 {
		headers["X-User-Id"] = strconv.FormatInt(userID, 10)
		headers["X-User-Email"] = TestUserEmail
	}

	req, err := prepareRequest(method, path, reader, headers)
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(rec, req)

	return rec.Result()
}
