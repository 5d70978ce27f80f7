package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With("request_id", middleware.GetReqID(r.Context()))

		ctx := context.WithValue(r.Context(), contextKeyLogger, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuthentication resolves the caller identity. Authentication itself
// happens upstream: the session carries the user id once established, and
// the X-User-Id header is trusted as set by the gateway in front of this
// service.
func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId := int64(app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String()))

		if userId == 0 {
			if header := r.Header.Get("X-User-Id"); header != "" {
				if id, err := strconv.ParseInt(header, 10, 64); err == nil && id > 0 {
					userId = id
				}
			}
		}

		if userId == 0 {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKeyUserId, userId)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}
