package impl

import (
	"io"
	"log/slog"

	"postly/config"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(maxFileSize int64) *config.Config {
	return &config.Config{
		Auth:  &config.AuthConfig{BcryptCost: 4},
		Media: &config.MediaConfig{MaxFileSize: maxFileSize},
	}
}
