package tokenfilter_test

import (
	"strings"
	"testing"

	tf "github.com/glyphstream/tokenfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpContextTree_ShowsPendingReplayEntries(t *testing.T) {
	events := scenario12Events()
	cur := tf.New(newMockCursor(events), &bcRootFilter{},
		tf.WithInclusionMode(tf.IncludeAllAndPath), tf.WithInstanceID("dump-test"))

	// The first NextToken already fires the replay and returns the
	// replayed root StartObject; property name "b" is still buffered.
	tok, err := cur.NextToken()
	require.NoError(t, err)
	require.NotEqual(t, tf.NoToken, tok)

	out := cur.DumpContextTree()
	assert.Contains(t, out, "dump-test")
	assert.Contains(t, out, "pending: PropertyName(b)")
}

func TestFrameLabel_DistinguishesObjectAndArray(t *testing.T) {
	events := []mockEvent{
		tSA(),
		tSO(), tName("x"), tNum("1"), tEO(),
		tEA(),
	}
	cur := tf.New(newMockCursor(events), &aArrayFilter{}, tf.WithInclusionMode(tf.IncludeAllAndPath))

	// The first dump is taken while the array and object frames are open.
	var firstDump string
	for {
		tok, err := cur.NextToken()
		require.NoError(t, err)
		if tok == tf.NoToken {
			break
		}
		if firstDump == "" {
			firstDump = cur.DumpContextTree()
		}
	}
	assert.True(t, strings.Contains(firstDump, "object") || strings.Contains(firstDump, "array"))
}
