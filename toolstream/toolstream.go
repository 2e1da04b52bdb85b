// Package toolstream applies a tokenfilter.FilteringCursor to a live OpenAI
// chat-completion stream to project each chunk's /choices/*/delta/tool_calls
// path, the direct domain successor to the teacher's own StreamAdapter: the
// teacher transforms chunks in place to intercept and reshape tool calls,
// this package instead surfaces them as a side channel for callers who want
// to observe tool-call deltas as they stream in without altering the chunks
// themselves.
package toolstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"

	tf "github.com/glyphstream/tokenfilter"
	"github.com/glyphstream/tokenfilter/jsontokens"
	"github.com/glyphstream/tokenfilter/pathfilter"
)

// ChunkSource is the subset of the OpenAI SDK's streaming iterator this
// package drives. It matches the shape of client.Chat.Completions.NewStreaming()'s
// return value so a *ssestream.Stream[openai.ChatCompletionChunk] satisfies
// it directly.
type ChunkSource interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

// ToolCallFragment is one tool-call delta observed in a single chunk. Models
// stream tool call arguments incrementally, so ArgumentsFragment is a
// partial JSON string that must be concatenated across fragments sharing
// the same Index to reconstruct the full arguments payload, mirroring the
// teacher's functionCall accumulation in adapter.go.
type ToolCallFragment struct {
	CorrelationID     string
	ChunkIndex        int
	Index             int64
	ID                string
	Name              string
	ArgumentsFragment string
}

var toolCallsPath = pathfilter.MustCompile("/choices/*/delta/tool_calls")

// Extractor pulls chunks from a ChunkSource and reports the tool-call
// deltas found in each, one call to Next per upstream chunk.
type Extractor struct {
	source ChunkSource
	ctx    context.Context
	logger *slog.Logger

	chunkIndex int
}

// Option configures an Extractor at construction.
type Option func(*Extractor)

// WithLogger sets a structured logger for per-chunk scan tracing. A no-op
// logger is used if none is given.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = noopLogger()
		}
		e.logger = logger
	}
}

// New constructs an Extractor driving source, honoring ctx cancellation the
// same way the teacher's TransformStreamingResponseWithContext does.
func New(ctx context.Context, source ChunkSource, opts ...Option) *Extractor {
	e := &Extractor{source: source, ctx: ctx, logger: noopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Next pulls the next chunk from the upstream source and returns the
// tool-call fragments found in its /choices/*/delta/tool_calls, which may
// be empty for a content-only chunk. It returns (nil, nil) once the
// upstream source is exhausted.
func (e *Extractor) Next() ([]ToolCallFragment, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	if !e.source.Next() {
		return nil, e.source.Err()
	}
	e.chunkIndex++
	chunk := e.source.Current()

	body, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("toolstream: marshal chunk %d: %w", e.chunkIndex, err)
	}

	correlationID := uuid.NewString()
	cur := jsontokens.New(bytes.NewReader(body))
	// A chunk can carry more than one choice, each with its own tool_calls
	// array (n>1 sampling), so every tool_calls array in the chunk must
	// survive, not just the first.
	fc := tf.New(cur, toolCallsPath,
		tf.WithInstanceID(correlationID),
		tf.WithLogger(e.logger),
		tf.WithMultipleMatches(true))

	e.logger.Debug("scanning chunk for tool call deltas",
		"chunk_index", e.chunkIndex, "correlation_id", correlationID)

	frags, err := decodeToolCallArrays(fc)
	if err != nil {
		return nil, fmt.Errorf("toolstream: chunk %d: %w", e.chunkIndex, err)
	}
	for i := range frags {
		frags[i].ChunkIndex = e.chunkIndex
		frags[i].CorrelationID = correlationID
	}
	return frags, nil
}

// Err returns the upstream source's terminal error, if any.
func (e *Extractor) Err() error { return e.source.Err() }

// Close closes the underlying source.
func (e *Extractor) Close() error { return e.source.Close() }

// decodeToolCallArrays reads every /delta/tool_calls array the filtered
// stream surfaces for one chunk (there may be zero, one per choice, or
// more under n>1 sampling), in source order.
func decodeToolCallArrays(fc *tf.FilteringCursor) ([]ToolCallFragment, error) {
	var all []ToolCallFragment
	for {
		tok, err := fc.NextToken()
		if err != nil {
			return nil, err
		}
		if tok == tf.NoToken {
			return all, nil
		}
		if tok != tf.StartArray {
			return nil, fmt.Errorf("expected tool_calls array, got %v", tok)
		}
		frags, err := decodeToolCallElements(fc)
		if err != nil {
			return nil, err
		}
		all = append(all, frags...)
	}
}

// decodeToolCallElements reads the objects of one already-opened tool_calls
// array through its matching EndArray.
func decodeToolCallElements(fc *tf.FilteringCursor) ([]ToolCallFragment, error) {
	var frags []ToolCallFragment
	for {
		tok, err := fc.NextToken()
		if err != nil {
			return nil, err
		}
		if tok == tf.EndArray {
			return frags, nil
		}
		if tok != tf.StartObject {
			return nil, fmt.Errorf("expected tool call object, got %v", tok)
		}
		frag, err := decodeToolCallObject(fc)
		if err != nil {
			return nil, err
		}
		frags = append(frags, frag)
	}
}

func decodeToolCallObject(fc *tf.FilteringCursor) (ToolCallFragment, error) {
	var frag ToolCallFragment
	for {
		tok, err := fc.NextToken()
		if err != nil {
			return frag, err
		}
		if tok == tf.EndObject {
			return frag, nil
		}
		if tok != tf.PropertyName {
			return frag, fmt.Errorf("expected property name, got %v", tok)
		}
		name, err := fc.GetText()
		if err != nil {
			return frag, err
		}
		switch name {
		case "index":
			text, err := nextScalarText(fc)
			if err != nil {
				return frag, err
			}
			n, convErr := strconv.ParseInt(text, 10, 64)
			if convErr == nil {
				frag.Index = n
			}
		case "id":
			text, err := nextScalarText(fc)
			if err != nil {
				return frag, err
			}
			frag.ID = text
		case "function":
			if err := decodeFunctionObject(fc, &frag); err != nil {
				return frag, err
			}
		default:
			if err := skipValue(fc); err != nil {
				return frag, err
			}
		}
	}
}

func decodeFunctionObject(fc *tf.FilteringCursor, frag *ToolCallFragment) error {
	tok, err := fc.NextToken()
	if err != nil {
		return err
	}
	if tok != tf.StartObject {
		return fmt.Errorf("expected function object, got %v", tok)
	}
	for {
		tok, err = fc.NextToken()
		if err != nil {
			return err
		}
		if tok == tf.EndObject {
			return nil
		}
		if tok != tf.PropertyName {
			return fmt.Errorf("expected property name, got %v", tok)
		}
		name, err := fc.GetText()
		if err != nil {
			return err
		}
		text, err := nextScalarText(fc)
		if err != nil {
			return err
		}
		switch name {
		case "name":
			frag.Name = text
		case "arguments":
			frag.ArgumentsFragment = text
		}
	}
}

func nextScalarText(fc *tf.FilteringCursor) (string, error) {
	tok, err := fc.NextToken()
	if err != nil {
		return "", err
	}
	switch tok {
	case tf.String, tf.Number, tf.Boolean, tf.Null:
		return fc.GetText()
	case tf.StartObject, tf.StartArray:
		return "", fc.SkipChildren()
	default:
		return "", nil
	}
}

func skipValue(fc *tf.FilteringCursor) error {
	tok, err := fc.NextToken()
	if err != nil {
		return err
	}
	if tok == tf.StartObject || tok == tf.StartArray {
		return fc.SkipChildren()
	}
	return nil
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}
