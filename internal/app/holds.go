package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kaing615/movie-ticket-booking-sub000/api"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
)

var errShowNotOnSale = errors.New("show is not on sale")

// CreateHoldHandler creates or replaces the caller's hold on a show. A hold
// is a soft claim: it keeps other buyers away from the seats for its
// duration but reserves nothing in the ledger, so the booking step
// revalidates everything.
func (app *Application) CreateHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateHoldRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	_, err = app.loadSellableShow(r.Context(), showID)
	if err != nil {
		app.showErrorResponse(w, r, err)
		return
	}

	_, err = app.selectSeats(r.Context(), showID, input.SeatIdList)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	soldSeats, err := app.soldSeatsAmong(r.Context(), showID, input.SeatIdList)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(soldSeats) > 0 {
		logger.Warn("hold rejected: seats already sold", "show_id", showID, "seat_ids", soldSeats)
		app.editConflictResponseWithErr(w, r, &domain.SeatConflictError{ShowID: showID, SeatIDs: soldSeats})
		return
	}

	ttl := app.holdTTL(input.TtlSeconds)

	hold := &domain.SeatHold{
		ShowID:  showID,
		UserID:  userID,
		SeatIDs: input.SeatIdList,
	}

	err = app.holdStore.CreateOrReplace(r.Context(), hold, ttl)
	if err != nil {
		var conflictErr *domain.SeatConflictError

		if errors.As(err, &conflictErr) {
			logger.Warn("hold rejected: seats held by another user", "show_id", showID, "seat_ids", conflictErr.SeatIDs)
			app.editConflictResponseWithErr(w, r, conflictErr)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.HoldResponse{
		Hold: toApiHold(hold, ttl),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// RefreshHoldHandler extends the caller's live hold. An expired or missing
// hold cannot be refreshed; the buyer has to reselect.
func (app *Application) RefreshHoldHandler(w http.ResponseWriter, r *http.Request) {
	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.RefreshHoldRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)
	ttl := app.holdTTL(input.TtlSeconds)

	hold, err := app.holdStore.Refresh(r.Context(), showID, userID, ttl)
	if err != nil {
		var conflictErr *domain.SeatConflictError

		switch {
		case errors.Is(err, domain.ErrHoldNotFound):
			app.notFoundResponse(w, r)
		case errors.As(err, &conflictErr):
			app.editConflictResponseWithErr(w, r, conflictErr)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.HoldResponse{
		Hold: toApiHold(hold, ttl),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ReleaseHoldHandler drops the caller's hold. Releasing a hold that does
// not exist succeeds; the outcome is the same.
func (app *Application) ReleaseHoldHandler(w http.ResponseWriter, r *http.Request) {
	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	err = app.holdStore.Release(r.Context(), showID, userID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) holdTTL(ttlSeconds int) time.Duration {
	if ttlSeconds > 0 {
		return time.Duration(ttlSeconds) * time.Second
	}

	return app.config.Hold.DefaultTTL
}

func (app *Application) loadSellableShow(ctx context.Context, showID int64) (*domain.Show, error) {
	show, err := app.showRepo.GetByID(ctx, showID)
	if err != nil {
		return nil, err
	}

	if !show.Sellable(app.clock.Now()) {
		return nil, errShowNotOnSale
	}

	return show, nil
}

func (app *Application) showErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, errShowNotOnSale):
		app.editConflictResponseWithErr(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// selectSeats resolves the requested seats against the show's hall. Seats
// that do not exist there, are disabled or are soft-deleted make the whole
// selection invalid, named one by one.
func (app *Application) selectSeats(ctx context.Context, showID int64, seatIDs []int64) (*domain.ShowSeats, error) {
	selection, err := app.seatRepo.GetSeatsByShowAndSeatIDs(ctx, showID, seatIDs)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("seat(s) %v cannot be selected for this show", seatIDs)
		}

		return nil, err
	}

	if len(selection.Seats) != len(seatIDs) {
		invalid := missingSeats(seatIDs, selection.SeatIDs())
		return nil, fmt.Errorf("seat(s) %v cannot be selected for this show", invalid)
	}

	return selection, nil
}

func (app *Application) soldSeatsAmong(ctx context.Context, showID int64, seatIDs []int64) ([]int64, error) {
	reservations, err := app.ledger.SeatsByShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	sold := make(map[int64]bool, len(reservations))
	for _, reservation := range reservations {
		sold[reservation.SeatID] = true
	}

	var conflicting []int64

	for _, seatID := range seatIDs {
		if sold[seatID] {
			conflicting = append(conflicting, seatID)
		}
	}

	return conflicting, nil
}

// missingSeats returns the requested seats absent from the obtained set,
// preserving request order.
func missingSeats(requested, obtained []int64) []int64 {
	got := make(map[int64]bool, len(obtained))
	for _, seatID := range obtained {
		got[seatID] = true
	}

	var missing []int64

	for _, seatID := range requested {
		if !got[seatID] {
			missing = append(missing, seatID)
		}
	}

	return missing
}

func toApiHold(hold *domain.SeatHold, ttl time.Duration) api.Hold {
	return api.Hold{
		ShowId:    hold.ShowID,
		SeatIds:   hold.SeatIDs,
		ExpiresAt: hold.ExpiresAt,
		HoldTime:  int(ttl.Seconds()),
	}
}
