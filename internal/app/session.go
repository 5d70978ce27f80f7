package app

import (
	"log/slog"
	"net/http"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")

	contextKeyLogger = sessionKey("logger")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) contextGetUserId(r *http.Request) int64 {
	userId, ok := r.Context().Value(SessionKeyUserId).(int64)
	if !ok {
		panic("missing user id from context")
	}

	return userId
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(contextKeyLogger).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}

// contextGetUserEmail returns the caller's email when the upstream gateway
// forwarded one, or empty. Email side effects are skipped without it.
func (app *Application) contextGetUserEmail(r *http.Request) string {
	return r.Header.Get("X-User-Email")
}
