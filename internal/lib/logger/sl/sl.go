package sl

import (
	"log/slog"
)

// Err creates a slog.Attr with the given error. A nil error logs as an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// With derives a logger tagged with the operation and the division it belongs to.
func With(log *slog.Logger, op, division string) *slog.Logger {
	return log.With(slog.String("op", op), slog.String("division", division))
}

// Discard is a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
