package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kaing615/movie-ticket-booking-sub000/api"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/clock"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/event"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/mailer"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/validator"
)

const (
	testShowID = int64(1)
	testUserID = int64(7)
	maxSeats   = 8
)

var (
	testNow = time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)

	testShow = &domain.Show{
		ID:        testShowID,
		HallID:    1,
		Title:     "Interstellar",
		StartTime: testNow.Add(2 * time.Hour),
		EndTime:   testNow.Add(5 * time.Hour),
		BasePrice: decimal.NewFromInt(50),
		Status:    domain.ShowScheduled,
	}

	testSeatIDs = []int64{1, 2, 3}

	testSeats = []domain.Seat{
		{ID: 1, HallID: 1, Row: 1, Col: 1, Label: "A1", Type: domain.SeatStandard, ExtraPrice: decimal.Zero},
		{ID: 2, HallID: 1, Row: 1, Col: 2, Label: "A2", Type: domain.SeatVIP, ExtraPrice: decimal.NewFromInt(15)},
		{ID: 3, HallID: 1, Row: 1, Col: 3, Label: "A3", Type: domain.SeatCouple, ExtraPrice: decimal.NewFromInt(10)},
	}
)

func testSelection(seats ...domain.Seat) *domain.ShowSeats {
	if len(seats) == 0 {
		seats = testSeats
	}

	return &domain.ShowSeats{
		ShowID:    testShowID,
		HallID:    1,
		BasePrice: testShow.BasePrice,
		Seats:     seats,
	}
}

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config: Config{
			Env: "test",
			Hold: HoldConfig{
				DefaultTTL: 5 * time.Minute,
				MaxSeats:   maxSeats,
			},
		},
		validator: validator.NewValidator(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:     clock.NewFake(testNow),
		publisher: event.NoopPublisher{},
		mailer:    mailer.NewMockMailer(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func authenticatedRequest(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), SessionKeyUserId, userID)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}

	rctx.URLParams.Add(key, value)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}
