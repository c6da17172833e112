package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

const (
	// DefaultCommandTimeout bounds commands that render a single document.
	DefaultCommandTimeout = 30 * time.Second
	// DirectoryCommandTimeout bounds commands that walk a content tree.
	DirectoryCommandTimeout = 5 * time.Minute
)

// boundedContext returns ctx, or Background when nil, limited by timeout. A
// timeout of zero or less leaves the context unbounded.
func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger returns logger, or a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
