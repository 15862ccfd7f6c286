package stream

import (
	"context"
	"log/slog"

	"github.com/poiesic/metasearch/events"
)

// Normalizer consumes a session's event channel, converts each event to its
// client-facing update, and feeds the throttled writer.
type Normalizer struct {
	writer *ThrottledWriter
	logger *slog.Logger
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithNormalizerLogger sets a custom logger.
// Default is slog.Default().
func WithNormalizerLogger(logger *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		if logger == nil {
			logger = slog.Default()
		}
		n.logger = logger
	}
}

// NewNormalizer creates a normalizer writing through the given writer.
func NewNormalizer(writer *ThrottledWriter, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		writer: writer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run consumes the channel until it closes or ctx is cancelled. Events with
// no client representation are dropped; everything else is written in
// arrival order.
func (n *Normalizer) Run(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if update := ConvertEventToUpdate(event, n.logger); update != nil {
				n.writer.Write(*update)
			}
		}
	}
}
