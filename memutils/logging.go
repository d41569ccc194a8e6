package memutils

import "golang.org/x/exp/slog"

// LoggingAllocator wraps another Allocator and traces its traffic at Debug
// level.
type LoggingAllocator struct {
	inner  Allocator
	logger *slog.Logger
}

// NewLoggingAllocator wraps inner in a LoggingAllocator writing to logger.
// A nil inner wraps DefaultAllocator; a nil logger uses slog.Default.
func NewLoggingAllocator(inner Allocator, logger *slog.Logger) *LoggingAllocator {
	if inner == nil {
		inner = DefaultAllocator
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingAllocator{
		inner:  inner,
		logger: logger,
	}
}

func (a *LoggingAllocator) Allocate(size int, construct func() any) (any, error) {
	a.logger.Debug("LoggingAllocator::Allocate", slog.Int("size", size))

	v, err := a.inner.Allocate(size, construct)
	if err != nil {
		a.logger.Error("LoggingAllocator::Allocate failed", slog.Int("size", size), slog.Any("error", err))
		return nil, err
	}

	return v, nil
}

func (a *LoggingAllocator) Deallocate(v any, size int) {
	a.logger.Debug("LoggingAllocator::Deallocate", slog.Int("size", size))

	a.inner.Deallocate(v, size)
}
