package announce

import (
	"context"
	"log/slog"
)

// Log is the dry-run announcer: it only writes the post to the logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Announce(_ context.Context, a Announcement) error {
	l.logger.Info("announcing",
		"id", a.ID,
		"label", a.Label,
		"timestamp", a.Timestamp,
		"status", a.Status(),
		"image_bytes", len(a.Image),
		"image_key", a.ImageKey,
	)
	return nil
}
