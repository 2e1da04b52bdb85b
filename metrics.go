package tokenfilter

import "time"

// MetricEvent identifies the kind of metric event being emitted. Each event
// corresponds to a significant moment in a FilteringCursor's lifetime.
type MetricEvent string

const (
	// MetricEventMatchAccepted fires every time a filter decision resolves
	// to IncludeAll and is accepted against the match budget.
	MetricEventMatchAccepted MetricEvent = "match_accepted"

	// MetricEventReplayDrained identifies a ReplayDrainedData event.
	// FilteringCursor does not emit it: replay drains produce no metric
	// event.
	MetricEventReplayDrained MetricEvent = "replay_drained"

	// MetricEventDocumentClosed fires when a top-level container closes,
	// leaving only the root context frame on the stack. A top-level scalar
	// document produces no such event.
	MetricEventDocumentClosed MetricEvent = "document_closed"
)

// MetricEventData is implemented by all metric event payload types. It
// lets a single callback signature handle every event kind type-safely.
type MetricEventData interface {
	EventType() MetricEvent
}

// PerformanceMetrics carries timing information alongside most events.
//
// Thread Safety: PerformanceMetrics instances are immutable after creation
// and SubOperations is never mutated after the metric is emitted, so it is
// safe for a callback to read concurrently even if it hands the value off
// to another goroutine.
type PerformanceMetrics struct {
	// ProcessingDuration is the wall-clock time measured for the operation
	// that produced this event; for MatchAcceptedData it covers only the
	// match-budget check, not the whole NextToken call.
	ProcessingDuration time.Duration `json:"processing_duration"`

	// SubOperations breaks the duration down further, e.g. "filter_call"
	// vs "replay_drain". Created fresh per event; never modified after.
	SubOperations map[string]time.Duration `json:"sub_operations,omitempty"`
}

// MatchAcceptedData reports a single IncludeAll acceptance.
type MatchAcceptedData struct {
	// InstanceID identifies the FilteringCursor that produced this event.
	InstanceID string `json:"instance_id"`
	// MatchCount is the cursor's running total after this acceptance.
	MatchCount int `json:"match_count"`
	// Depth is the shadow-stack depth at the moment of acceptance.
	Depth int `json:"depth"`
	// Performance contains timing for the match-budget check.
	Performance PerformanceMetrics `json:"performance"`
}

func (d MatchAcceptedData) EventType() MetricEvent { return MetricEventMatchAccepted }

// ReplayDrainedData reports a completed replay of a buffered path.
type ReplayDrainedData struct {
	InstanceID     string             `json:"instance_id"`
	TokensReplayed int                `json:"tokens_replayed"`
	Performance    PerformanceMetrics `json:"performance"`
}

func (d ReplayDrainedData) EventType() MetricEvent { return MetricEventReplayDrained }

// DocumentClosedData reports that a cursor has finished its document.
type DocumentClosedData struct {
	InstanceID  string             `json:"instance_id"`
	MatchCount  int                `json:"match_count"`
	Performance PerformanceMetrics `json:"performance"`
}

func (d DocumentClosedData) EventType() MetricEvent { return MetricEventDocumentClosed }
