package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

const defaultDrainTimeout = 5 * time.Second

// ErrBufferFull is returned when the buffer cannot take another event.
var ErrBufferFull = errors.New("audit buffer is full")

// Buffer is a Sink that queues events for a background worker so request
// handling never waits on the downstream sink.
type Buffer struct {
	inbox        chan Event
	logger       *slog.Logger
	drainTimeout time.Duration
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithDrainTimeout bounds how long Run keeps flushing after cancellation.
func WithDrainTimeout(d time.Duration) BufferOption {
	return func(b *Buffer) {
		if d > 0 {
			b.drainTimeout = d
		}
	}
}

// NewBuffer creates a buffer holding up to size pending events.
func NewBuffer(size int, logger *slog.Logger, opts ...BufferOption) *Buffer {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := &Buffer{inbox: make(chan Event, size), logger: logger, drainTimeout: defaultDrainTimeout}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Append queues the event without blocking.
func (b *Buffer) Append(_ context.Context, event Event) error {
	select {
	case b.inbox <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Run drains queued events into sink until ctx is cancelled, then flushes
// what is left for at most the drain timeout. Events still queued after
// that are dropped and counted in the log.
func (b *Buffer) Run(ctx context.Context, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.drainTimeout)
			b.drain(drainCtx, sink)
			cancel()
			return nil
		case event := <-b.inbox:
			b.forward(ctx, sink, event)
		}
	}
}

func (b *Buffer) drain(ctx context.Context, sink Sink) {
	for {
		if ctx.Err() != nil {
			if n := len(b.inbox); n > 0 {
				b.logger.Warn("dropping audit events after drain timeout", "dropped", n)
			}
			return
		}
		select {
		case event := <-b.inbox:
			b.forward(ctx, sink, event)
		default:
			return
		}
	}
}

func (b *Buffer) forward(ctx context.Context, sink Sink, event Event) {
	if err := sink.Append(ctx, event); err != nil {
		b.logger.Error("failed to forward audit event",
			"event_id", event.ID,
			"action", event.Action,
			"error", err,
		)
	}
}
