package tcp

import "log/slog"

const (
	// MaxBytes caps every single read(2) issued by a Stream.
	MaxBytes = 8192

	DefaultBacklog = 16
)

type Options struct {
	// Logger defaults to discarding everything.
	Logger *slog.Logger
	// Metrics is optional.
	Metrics *Metrics
	// Backlog is only used by Listen. Zero means DefaultBacklog.
	Backlog int
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o Options) backlog() int {
	if o.Backlog <= 0 {
		return DefaultBacklog
	}
	return o.Backlog
}
