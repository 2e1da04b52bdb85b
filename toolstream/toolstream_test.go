package toolstream_test

import (
	"context"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphstream/tokenfilter/toolstream"
)

// fakeSource is a scripted toolstream.ChunkSource over a fixed chunk list,
// the role the teacher's mock_stream_test.go NewMockStream plays for
// ChatCompletionStreamInterface.
type fakeSource struct {
	chunks []openai.ChatCompletionChunk
	pos    int
	err    error
	closed bool
}

func (f *fakeSource) Next() bool {
	if f.pos >= len(f.chunks) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeSource) Current() openai.ChatCompletionChunk { return f.chunks[f.pos-1] }
func (f *fakeSource) Err() error                          { return f.err }
func (f *fakeSource) Close() error                        { f.closed = true; return nil }

func contentChunk(content string) openai.ChatCompletionChunk {
	return openai.ChatCompletionChunk{
		Choices: []openai.ChatCompletionChunkChoice{
			{Delta: openai.ChatCompletionChunkChoiceDelta{Content: content, Role: "assistant"}},
		},
	}
}

func toolCallChunk(index int64, id, name, argsFragment string) openai.ChatCompletionChunk {
	return openai.ChatCompletionChunk{
		Choices: []openai.ChatCompletionChunkChoice{
			{
				Delta: openai.ChatCompletionChunkChoiceDelta{
					Role: "assistant",
					ToolCalls: []openai.ChatCompletionChunkChoiceDeltaToolCall{
						{
							Index: index,
							ID:    id,
							Type:  "function",
							Function: openai.ChatCompletionChunkChoiceDeltaToolCallFunction{
								Name:      name,
								Arguments: argsFragment,
							},
						},
					},
				},
				FinishReason: "tool_calls",
			},
		},
	}
}

func TestExtractor_ContentOnlyChunkYieldsNoFragments(t *testing.T) {
	src := &fakeSource{chunks: []openai.ChatCompletionChunk{contentChunk("hello")}}
	ex := toolstream.New(context.Background(), src)

	frags, err := ex.Next()
	require.NoError(t, err)
	assert.Empty(t, frags)
}

func TestExtractor_ToolCallChunkYieldsFragment(t *testing.T) {
	src := &fakeSource{chunks: []openai.ChatCompletionChunk{
		toolCallChunk(0, "call_1", "get_weather", `{"city":"Paris"}`),
	}}
	ex := toolstream.New(context.Background(), src)

	frags, err := ex.Next()
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, int64(0), frags[0].Index)
	assert.Equal(t, "call_1", frags[0].ID)
	assert.Equal(t, "get_weather", frags[0].Name)
	assert.Equal(t, `{"city":"Paris"}`, frags[0].ArgumentsFragment)
	assert.Equal(t, 1, frags[0].ChunkIndex)
	assert.NotEmpty(t, frags[0].CorrelationID)
}

func TestExtractor_MultipleChunksGetDistinctCorrelationIDs(t *testing.T) {
	src := &fakeSource{chunks: []openai.ChatCompletionChunk{
		toolCallChunk(0, "call_1", "f", `{}`),
		toolCallChunk(0, "call_1", "f", `,"x":1}`),
	}}
	ex := toolstream.New(context.Background(), src)

	first, err := ex.Next()
	require.NoError(t, err)
	second, err := ex.Next()
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].CorrelationID, second[0].CorrelationID)
	assert.Equal(t, 1, first[0].ChunkIndex)
	assert.Equal(t, 2, second[0].ChunkIndex)
}

func TestExtractor_NextReturnsNilAtEndOfStream(t *testing.T) {
	src := &fakeSource{chunks: []openai.ChatCompletionChunk{contentChunk("a")}}
	ex := toolstream.New(context.Background(), src)

	_, err := ex.Next()
	require.NoError(t, err)

	frags, err := ex.Next()
	require.NoError(t, err)
	assert.Nil(t, frags)
}

func TestExtractor_ContextCancellationStopsIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{chunks: []openai.ChatCompletionChunk{contentChunk("a")}}
	ex := toolstream.New(ctx, src)

	_, err := ex.Next()
	assert.Error(t, err)
}

func TestExtractor_CloseClosesUnderlyingSource(t *testing.T) {
	src := &fakeSource{}
	ex := toolstream.New(context.Background(), src)
	require.NoError(t, ex.Close())
	assert.True(t, src.closed)
}
