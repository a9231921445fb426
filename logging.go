package dataverb

import (
	"io"
	"log/slog"
)

// logger receives informational notices (Summarise regrouping decisions,
// Nesting temporary names). Discarded by default.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger directs the package's notices to the given logger. Pass nil to
// silence them again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	logger = l
}
