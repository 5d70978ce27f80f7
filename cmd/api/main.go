package main

import (
	"log/slog"
	"os"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
