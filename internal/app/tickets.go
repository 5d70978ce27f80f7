package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

// GetTicketQRHandler renders the ticket code as a PNG QR image for the
// entrance scanner. Only the ticket owner can fetch it; anyone else sees
// not found so codes cannot be probed.
func (app *Application) GetTicketQRHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		app.badRequestResponse(w, r, errors.New("missing ticket code"))
		return
	}

	userID := app.contextGetUserId(r)

	ticket, err := app.bookingRepo.GetTicketByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	if ticket.UserID != userID {
		app.notFoundResponse(w, r)
		return
	}

	png, err := qrcode.Encode(ticket.Code, qrcode.Medium, 256)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
