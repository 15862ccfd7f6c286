// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stream

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultWriteInterval is the minimum time between two writes to the sink.
const DefaultWriteInterval = 100 * time.Millisecond

// ThrottledWriter writes updates to a sink as newline-delimited JSON,
// enforcing a minimum interval between writes. The throttle sleeps while
// holding the writer lock, so concurrent writers queue in FIFO order and the
// sink never sees updates out of order or above the configured rate.
//
// A nil sink, a closed writer, or a sink write failure is logged and treated
// as a no-op. This supports dry runs and tests with no client attached.
type ThrottledWriter struct {
	mu        sync.Mutex
	sink      io.Writer
	interval  time.Duration
	lastWrite time.Time
	closed    bool
	logger    *slog.Logger
}

// WriterOption configures a ThrottledWriter.
type WriterOption func(*ThrottledWriter)

// WithInterval overrides the minimum inter-write interval.
func WithInterval(interval time.Duration) WriterOption {
	return func(w *ThrottledWriter) {
		w.interval = interval
	}
}

// WithWriterLogger sets a custom logger.
// Default is slog.Default().
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *ThrottledWriter) {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
	}
}

// NewThrottledWriter creates a throttled writer over sink. A nil sink is
// allowed; every write becomes a logged no-op.
func NewThrottledWriter(sink io.Writer, opts ...WriterOption) *ThrottledWriter {
	w := &ThrottledWriter{
		sink:     sink,
		interval: DefaultWriteInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write emits one update as a JSON line, sleeping first if the previous
// write was less than the configured interval ago.
func (w *ThrottledWriter) Write(update Update) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.sink == nil {
		w.logger.Debug("dropping update, no sink attached", "type", update.Type)
		return
	}

	if !w.lastWrite.IsZero() {
		if elapsed := time.Since(w.lastWrite); elapsed < w.interval {
			time.Sleep(w.interval - elapsed)
		}
	}

	line, err := json.Marshal(update)
	if err != nil {
		w.logger.Error("marshaling update failed", "type", update.Type, "error", err)
		return
	}
	line = append(line, '\n')

	if _, err := w.sink.Write(line); err != nil {
		w.logger.Warn("writing update failed", "type", update.Type, "error", err)
	}
	w.lastWrite = time.Now()
}

// Close marks the writer closed and closes the sink when it supports it.
// Close is idempotent and tolerates an already-closed sink.
func (w *ThrottledWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true

	if closer, ok := w.sink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			w.logger.Debug("closing sink", "error", err)
		}
	}
}
