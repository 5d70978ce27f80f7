package integration_test

const (
	dbName         = "ticket_booking"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"

	// Seeded catalog: one hall, five seats (B1 disabled), one show.
	TestShowId       = 1
	TestShowTitle    = "Test Show"
	TestDisabledSeat = int64(4)

	TestUserId      = int64(1)
	TestOtherUserId = int64(2)
	TestUserEmail   = "test@example.com"
)
