package tokenfilter_test

import (
	"bytes"
	"log/slog"
	"testing"

	tf "github.com/glyphstream/tokenfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	events := []mockEvent{tSO(), tEO()}
	cur := tf.New(newMockCursor(events), tf.IncludeAll)
	assert.Equal(t, 0, cur.GetMatchCount())
}

func TestOptions_WithInstanceIDOverride(t *testing.T) {
	events := []mockEvent{tSO(), tEO()}
	cur := tf.New(newMockCursor(events), tf.IncludeAll, tf.WithInstanceID("fixed-id"))
	out := cur.DumpContextTree()
	assert.Contains(t, out, "fixed-id")
}

func TestOptions_WithLogger_NilFallsBackToNoop(t *testing.T) {
	events := []mockEvent{tSO(), tEO()}
	cur := tf.New(newMockCursor(events), tf.IncludeAll, tf.WithLogger(nil))

	_, _, err := drain(cur)
	require.NoError(t, err)
}

func TestOptions_WithLogger_ReceivesDebugLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	events := []mockEvent{tSO(), tName("a"), tSO(), tEO(), tEO()}
	cur := tf.New(newMockCursor(events), tf.IncludeAll, tf.WithLogger(logger))

	_, _, err := drain(cur)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "tokenfilter:")
}

func TestOptions_WithMetricsCallback_FiresOnMatchAndClose(t *testing.T) {
	var seen []tf.MetricEventData
	events := []mockEvent{tSA(), tNum("1"), tNum("2"), tNum("3"), tEA()}
	cur := tf.New(newMockCursor(events), newEvenIndexFilter(), tf.WithMultipleMatches(true),
		tf.WithMetricsCallback(func(d tf.MetricEventData) {
			seen = append(seen, d)
		}))

	_, _, err := drain(cur)
	require.NoError(t, err)

	var sawMatch, sawClosed bool
	for _, e := range seen {
		switch e.EventType() {
		case tf.MetricEventMatchAccepted:
			sawMatch = true
		case tf.MetricEventDocumentClosed:
			sawClosed = true
		}
	}
	assert.True(t, sawMatch)
	assert.True(t, sawClosed)
}

func TestOptions_WithMultipleMatches_AllowsSeveralAcceptances(t *testing.T) {
	events := []mockEvent{tSA(), tNum("1"), tNum("2"), tNum("3"), tEA()}
	cur := tf.New(newMockCursor(events), newEvenIndexFilter(), tf.WithMultipleMatches(true))

	toks, _, err := drain(cur)
	require.NoError(t, err)
	assert.Len(t, toks, 2)
	assert.Equal(t, 2, cur.GetMatchCount())
}
