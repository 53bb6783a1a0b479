// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/metrics"
)

// maxBatch bounds how many events Serve holds before writing.
const maxBatch = 64

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled"`

	// BufferSize is the size of the async write buffer.
	BufferSize int `json:"buffer_size"`

	// FlushInterval is how often Serve writes a partial batch.
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		BufferSize:    1000,
		FlushInterval: time.Second,
	}
}

// Logger buffers audit events and writes them to a Store.
// Serve runs the background writer; it is meant to be supervised.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	mu        sync.RWMutex
	writeMu   sync.Mutex
}

// NewLogger creates a new audit logger.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = DefaultConfig().FlushInterval
	}

	return &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
	}
}

// Log queues an audit event. When the buffer is full the event is dropped.
func (l *Logger) Log(event *Event) {
	if !l.Enabled() {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case l.eventChan <- event:
		metrics.RecordAuditEvent(string(event.Type))
	default:
		metrics.RecordAuditDropped()
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).
			Msg("Audit event buffer full, dropping event")
	}
}

// Serve writes buffered events in batches until ctx is cancelled, then
// drains whatever is left.
func (l *Logger) Serve(ctx context.Context) error {
	l.mu.RLock()
	interval := l.config.FlushInterval
	l.mu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	batch := make([]*Event, 0, maxBatch)
	for {
		select {
		case <-ctx.Done():
			batch = l.drain(batch)
			l.writeBatch(batch)
			return ctx.Err()
		case event := <-l.eventChan:
			batch = append(batch, event)
			if len(batch) >= maxBatch {
				l.writeBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				l.writeBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

// String names the service in supervisor logs.
func (l *Logger) String() string {
	return "audit-logger"
}

// Flush synchronously writes every queued event. It is used when Serve is
// not running, e.g. from the CLI and in tests.
func (l *Logger) Flush(ctx context.Context) error {
	batch := l.drain(nil)
	if len(batch) == 0 {
		return nil
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	for _, event := range batch {
		if err := l.store.Save(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// drain appends every event currently buffered to batch.
func (l *Logger) drain(batch []*Event) []*Event {
	for {
		select {
		case event := <-l.eventChan:
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

func (l *Logger) writeBatch(batch []*Event) {
	if len(batch) == 0 || l.store == nil {
		return
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, event := range batch {
		if err := l.store.Save(ctx, event); err != nil {
			logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
		}
	}
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// Get retrieves a single event.
func (l *Logger) Get(ctx context.Context, id string) (*Event, error) {
	return l.store.Get(ctx, id)
}

// SetEnabled enables or disables audit logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Enabled = enabled
}

// Enabled returns whether audit logging is enabled.
func (l *Logger) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Enabled
}

// Pending returns the number of queued events not yet written.
func (l *Logger) Pending() int {
	return len(l.eventChan)
}
