package pihole

import (
	"log/slog"
	"os"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(url string) *Client {
	return New(Config{BaseURL: url, Password: "secret"}, newTestLogger())
}
