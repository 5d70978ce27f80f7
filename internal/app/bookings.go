package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kaing615/movie-ticket-booking-sub000/api"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/event"
)

// CreateBookingHandler is the direct purchase path: no hold, one atomic
// attempt. The booking, its tickets and its ledger rows commit together or
// not at all, so losing any seat leaves nothing behind.
func (app *Application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateBookingRequest

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

	show, err := app.loadSellableShow(r.Context(), showID)
	if err != nil {
		app.showErrorResponse(w, r, err)
		return
	}

	selection, err := app.selectSeats(r.Context(), showID, input.SeatIdList)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := domain.NewBooking(userID, show, selection, domain.BookingPending)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.bookingRepo.CreateDirect(r.Context(), booking)
	if err != nil {
		var conflictErr *domain.SeatConflictError

		if errors.As(err, &conflictErr) {
			logger.Warn("booking rejected: seats lost to a concurrent buyer",
				"show_id", showID,
				"seat_ids", conflictErr.SeatIDs)
			app.editConflictResponseWithErr(w, r, conflictErr)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("booking created", "booking_id", booking.ID, "show_id", showID, "status", booking.Status)

	app.publishBookingEvent(event.TypeBookingCreated, booking)

	resp := api.BookingResponse{
		Booking: toApiBooking(booking),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ConfirmHoldHandler promotes the caller's hold into a paid booking. The
// ledger claim and the booking insert are separate steps, so any failure
// after a partial or full claim releases exactly the seats this call
// claimed, never rows owned by someone else.
func (app *Application) ConfirmHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	hold, err := app.holdStore.Get(r.Context(), showID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			app.holdExpiredResponse(w, r, domain.ErrHoldExpired)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	show, err := app.loadSellableShow(r.Context(), showID)
	if err != nil {
		app.showErrorResponse(w, r, err)
		return
	}

	selection, err := app.selectSeats(r.Context(), showID, hold.SeatIDs)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claimed, err := app.ledger.TryClaim(r.Context(), showID, hold.SeatIDs)
	if err != nil {
		app.releaseClaims(showID, claimed)
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(claimed) != len(hold.SeatIDs) {
		lost := missingSeats(hold.SeatIDs, claimed)

		logger.Warn("hold confirmation lost seats to a concurrent buyer",
			"show_id", showID,
			"seat_ids", lost)

		app.releaseClaims(showID, claimed)
		app.editConflictResponseWithErr(w, r, &domain.SeatConflictError{ShowID: showID, SeatIDs: lost})
		return
	}

	booking, err := domain.NewBooking(userID, show, selection, domain.BookingPaid)
	if err != nil {
		app.releaseClaims(showID, claimed)
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.bookingRepo.CreatePaid(r.Context(), booking)
	if err != nil {
		app.releaseClaims(showID, claimed)
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.holdStore.Release(r.Context(), showID, userID)
	if err != nil {
		// The booking is committed; a lingering hold only blocks the
		// buyer's own seats until its TTL runs out.
		logger.Warn("failed to release hold after confirmation", "show_id", showID, "error", err)
	}

	logger.Info("hold confirmed into booking", "booking_id", booking.ID, "show_id", showID)

	app.publishBookingEvent(event.TypeBookingPaid, booking)

	if email := app.contextGetUserEmail(r); email != "" {
		app.sendBookingConfirmation(email, booking, show.Title)
	}

	resp := api.BookingResponse{
		Booking: toApiBooking(booking),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// releaseClaims undoes a compensable claim on a fresh context; the request
// context may already be cancelled when compensation runs.
func (app *Application) releaseClaims(showID int64, seatIDs []int64) {
	if len(seatIDs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := app.ledger.Release(ctx, showID, seatIDs)
	if err != nil {
		app.logger.Error("failed to release claimed seats",
			"show_id", showID,
			"seat_ids", seatIDs,
			"error", err)
	}
}

func (app *Application) GetUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	pagination, err := app.readPagination(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	summaries, metadata, err := app.bookingRepo.GetSummariesByUser(r.Context(), userID, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	apiSummaries := make([]api.BookingSummary, len(summaries))
	for i, summary := range summaries {
		apiSummaries[i] = api.BookingSummary{
			Id:         summary.BookingID,
			ShowId:     summary.ShowID,
			ShowTitle:  summary.ShowTitle,
			ShowStart:  summary.ShowStart,
			SeatCount:  summary.SeatCount,
			TotalPrice: summary.TotalPrice,
			Status:     string(summary.Status),
			CreatedAt:  summary.CreatedAt,
		}
	}

	resp := api.UserBookingsResponse{
		Bookings: apiSummaries,
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := app.readIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	booking, err := app.bookingRepo.GetByIDAndUser(r.Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingResponse{
		Booking: toApiBooking(booking),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// UpdateBookingStatusHandler applies the payment outcome reported by the
// payment collaborator: paid, cancelled or refunded. Cancelling or
// refunding releases the seats back to the sellable pool atomically with
// the status change.
func (app *Application) UpdateBookingStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	bookingID, err := app.readIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.UpdateBookingStatusRequest

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

	_, err = app.bookingRepo.GetByIDAndUser(r.Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.UpdateStatus(r.Context(), bookingID, domain.BookingStatus(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrInvalidTransition):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	logger.Info("booking status updated", "booking_id", bookingID, "status", booking.Status)

	switch booking.Status {
	case domain.BookingPaid:
		app.publishBookingEvent(event.TypeBookingPaid, booking)

		if email := app.contextGetUserEmail(r); email != "" {
			show, err := app.showRepo.GetByID(r.Context(), booking.ShowID)
			if err != nil {
				logger.Error("failed to load show for confirmation email", "error", err)
			} else {
				app.sendBookingConfirmation(email, booking, show.Title)
			}
		}
	case domain.BookingCancelled, domain.BookingRefunded:
		app.publishBookingEvent(event.TypeBookingCancelled, booking)
	}

	resp := api.BookingResponse{
		Booking: toApiBooking(booking),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// DeleteBookingHandler abandons a still-pending booking, releasing its
// seats. Bookings that progressed past pending must go through the status
// transitions instead.
func (app *Application) DeleteBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := app.readIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	err = app.bookingRepo.DeletePending(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrBookingNotPending):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) publishBookingEvent(eventType string, booking *domain.Booking) {
	bookingEvent := event.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		ShowID:     booking.ShowID,
		SeatIDs:    booking.SeatIDs,
		OccurredAt: app.clock.Now().UTC(),
	}

	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := app.publisher.PublishBookingEvent(ctx, bookingEvent)
		if err != nil {
			app.logger.Error("failed to publish booking event", "type", eventType, "error", err)
		}
	})
}

func (app *Application) sendBookingConfirmation(recipient string, booking *domain.Booking, showTitle string) {
	ticketCodes := make([]string, len(booking.Tickets))
	for i, ticket := range booking.Tickets {
		ticketCodes[i] = ticket.Code
	}

	data := map[string]any{
		"bookingId":   booking.ID,
		"showTitle":   showTitle,
		"seatCount":   len(booking.SeatIDs),
		"totalPrice":  booking.TotalPrice.StringFixed(2),
		"ticketCodes": ticketCodes,
	}

	app.background(func() {
		err := app.mailer.Send(recipient, "booking_confirmation.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send booking confirmation email", "error", err)
		}
	})
}

func toApiBooking(booking *domain.Booking) api.Booking {
	tickets := make([]api.Ticket, len(booking.Tickets))

	for i, ticket := range booking.Tickets {
		tickets[i] = api.Ticket{
			Id:     ticket.ID,
			SeatId: ticket.SeatID,
			Price:  ticket.Price,
			Code:   ticket.Code,
			Status: string(ticket.Status),
		}
	}

	return api.Booking{
		Id:         booking.ID,
		ShowId:     booking.ShowID,
		SeatIds:    booking.SeatIDs,
		TotalPrice: booking.TotalPrice,
		Status:     string(booking.Status),
		Tickets:    tickets,
		CreatedAt:  booking.CreatedAt,
	}
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
