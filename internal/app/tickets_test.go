package app

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/mocks"
)

func TestGetTicketQRHandler(t *testing.T) {
	tests := []struct {
		name       string
		ticket     *domain.Ticket
		ticketErr  error
		wantStatus int
	}{
		{
			name:       "should fail when the code is unknown",
			ticketErr:  domain.ErrRecordNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "should hide tickets of other users",
			ticket:     &domain.Ticket{ID: 1, UserID: testUserID + 1, Code: "AB12CD34EF56AB78"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "should render the owner's ticket as a PNG",
			ticket:     &domain.Ticket{ID: 1, UserID: testUserID, Code: "AB12CD34EF56AB78"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := new(mocks.MockBookingRepository)
			bookingRepo.On("GetTicketByCode", mock.Anything, "AB12CD34EF56AB78").
				Return(tt.ticket, tt.ticketErr)

			app := newTestApplication(func(a *Application) {
				a.bookingRepo = bookingRepo
			})

			w, r := executeRequest(t, http.MethodGet, "/tickets/AB12CD34EF56AB78/qr", nil)
			r = authenticatedRequest(r, testUserID)
			r = withURLParam(r, "code", "AB12CD34EF56AB78")

			app.GetTicketQRHandler(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
				assert.NotEmpty(t, w.Body.Bytes())
			}
		})
	}
}
