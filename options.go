package tokenfilter

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Option is a function that configures a FilteringCursor at construction.
// This functional options pattern provides several key benefits:
// 1. Backwards compatibility - new options don't break existing callers
// 2. Optional parameters - callers only specify what they want to change
// 3. Self-documenting - option names clearly indicate their purpose
// 4. Validation - each option can validate its input independently
type Option func(*FilteringCursor)

// WithInclusionMode sets the InclusionMode governing path and null
// treatment. Default: OnlyIncludeAll.
func WithInclusionMode(mode InclusionMode) Option {
	return func(c *FilteringCursor) {
		c.inclusion = mode
	}
}

// WithMultipleMatches controls whether more than one IncludeAll acceptance
// is allowed before NextToken starts returning NoToken early (Phase A).
// Default: false (single-match contract).
func WithMultipleMatches(allow bool) Option {
	return func(c *FilteringCursor) {
		c.allowMultipleMatches = allow
	}
}

// WithLogger sets a custom slog.Logger for the cursor. This enables
// structured logging for operational observability in production.
//
// Logging strategy: the cursor logs at DEBUG level only, for context
// push/pop and for a match rejected because multi-match is disabled.
// Replay drains are not logged, and internal errors are returned without
// being logged.
//
// If no logger is provided, a no-op logger is used so the cursor never
// panics on a nil logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *FilteringCursor) {
		if logger == nil {
			c.logger = noopLogger()
			return
		}
		c.logger = logger
	}
}

// WithMetricsCallback sets a callback invoked with typed metric event data
// as the cursor runs. The callback is invoked synchronously from within
// NextToken, so it should be fast; expensive work belongs on a background
// goroutine or queue.
//
// Example usage:
//
//	cursor := tokenfilter.New(upstream, filter,
//	    tokenfilter.WithMetricsCallback(func(data tokenfilter.MetricEventData) {
//	        switch ev := data.(type) {
//	        case tokenfilter.MatchAcceptedData:
//	            myMetrics.Matches.Add(float64(ev.MatchCount))
//	        }
//	    }),
//	)
func WithMetricsCallback(callback func(MetricEventData)) Option {
	return func(c *FilteringCursor) {
		c.metricsCallback = callback
	}
}

// WithInstanceID overrides the cursor's correlation ID, normally a random
// uuid.UUID generated at construction. Useful for tests that need a
// deterministic ID, or for propagating a request ID from an upstream
// context.
func WithInstanceID(id string) Option {
	return func(c *FilteringCursor) {
		c.instanceID = id
	}
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1, // effectively disable all logging
	}))
}

func newInstanceID() string {
	return uuid.NewString()
}
