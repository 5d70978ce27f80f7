package app

import (
	"errors"
	"net/http"

	"github.com/kaing615/movie-ticket-booking-sub000/api"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

// GetShowSeatsHandler returns the seat map of a show with three layers of
// availability: the physical seats, the seats sold (ledger rows) and the
// seats held right now. The snapshot is advisory; only the ledger decides.
func (app *Application) GetShowSeatsHandler(w http.ResponseWriter, r *http.Request) {
	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showSeats, err := app.seatRepo.GetSeatsByShow(r.Context(), showID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	reservations, err := app.ledger.SeatsByShow(r.Context(), showID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	heldSeats, err := app.holdStore.HeldSeats(r.Context(), showID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	sold := make([]int64, len(reservations))
	unavailable := make(map[int64]bool, len(reservations)+len(heldSeats))

	for i, reservation := range reservations {
		sold[i] = reservation.SeatID
		unavailable[reservation.SeatID] = true
	}

	for _, seatID := range heldSeats {
		unavailable[seatID] = true
	}

	resp := api.SeatMapResponse{
		ShowId:     showID,
		Seats:      toApiSeats(showSeats, unavailable),
		Sold:       sold,
		Held:       heldSeats,
		ServerTime: app.clock.Now().UTC(),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiSeats(showSeats *domain.ShowSeats, unavailable map[int64]bool) []api.Seat {
	apiSeats := make([]api.Seat, len(showSeats.Seats))

	for i, seat := range showSeats.Seats {
		apiSeats[i] = api.Seat{
			Id:        seat.ID,
			Row:       seat.Row,
			Column:    seat.Col,
			Label:     seat.Label,
			Type:      string(seat.Type),
			Price:     showSeats.PriceOf(seat),
			Disabled:  seat.Disabled,
			Available: !seat.Disabled && !unavailable[seat.ID],
		}
	}

	return apiSeats
}
