package tokenfilter

import (
	"log/slog"
	"time"
)

// FilteringCursor drives an upstream TokenCursor through a TokenFilter,
// re-exposing the upstream token sequence minus whatever the filter
// rejects. It is the state machine described in spec §4.3: a single-
// threaded, pull-driven wrapper with no internal goroutines.
//
// THREAD SAFETY: a FilteringCursor is NOT safe for concurrent use. It is a
// single-consumer cursor, exactly like the upstream TokenCursor it wraps.
type FilteringCursor struct {
	upstream TokenCursor

	// stack is the shadow context stack; stack[0] is always the root
	// frame and lives for the cursor's entire lifetime. stack[len-1] is
	// the head context, mirroring the upstream cursor's true depth.
	stack []*filterContext

	// exposedIdx indexes into stack the frame currently being drained for
	// replay, or -1 when forwarding live.
	exposedIdx int

	// itemFilter is the filter that applies to the very next value,
	// carrying decisions across the PROPERTY_NAME -> value gap and
	// between array siblings.
	itemFilter TokenFilter

	currentToken     Token
	hasCurrentToken  bool
	lastClearedToken Token

	matchCount           int
	allowMultipleMatches bool
	inclusion            InclusionMode

	instanceID      string
	logger          *slog.Logger
	metricsCallback func(MetricEventData)
}

// New constructs a FilteringCursor over upstream, governed at the root by
// filter. Defaults: InclusionMode OnlyIncludeAll, single-match
// (allowMultipleMatches=false), a no-op logger, no metrics callback, and a
// random uuid-based instance ID — override any of these with Option
// values.
func New(upstream TokenCursor, filter TokenFilter, opts ...Option) *FilteringCursor {
	root := acquireFilterContext(contextRoot, filter)
	root.startHandled = true // the document itself has no start marker to buffer
	c := &FilteringCursor{
		upstream:   upstream,
		stack:      []*filterContext{root},
		exposedIdx: -1,
		itemFilter: filter,
		inclusion:  OnlyIncludeAll,
		logger:     noopLogger(),
		instanceID: newInstanceID(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FilteringCursor) head() *filterContext {
	return c.stack[len(c.stack)-1]
}

func (c *FilteringCursor) exposed() *filterContext {
	if c.exposedIdx < 0 {
		return nil
	}
	return c.stack[c.exposedIdx]
}

func (c *FilteringCursor) setExposed(fc *filterContext) {
	if fc == nil {
		c.exposedIdx = -1
		return
	}
	for i, f := range c.stack {
		if f == fc {
			c.exposedIdx = i
			return
		}
	}
	c.exposedIdx = -1
}

func (c *FilteringCursor) pushContext(kind contextKind, filter TokenFilter) *filterContext {
	fc := acquireFilterContext(kind, filter)
	c.stack = append(c.stack, fc)
	c.logger.Debug("tokenfilter: pushed context", "instance_id", c.instanceID, "kind", kind, "depth", len(c.stack))
	return fc
}

func (c *FilteringCursor) popContext() {
	top := len(c.stack) - 1
	fc := c.stack[top]
	c.stack = c.stack[:top]
	c.logger.Debug("tokenfilter: popped context", "instance_id", c.instanceID, "depth", len(c.stack))
	if len(c.stack) == 1 {
		c.emitMetric(DocumentClosedData{InstanceID: c.instanceID, MatchCount: c.matchCount})
	}
	releaseFilterContext(fc)
}

// findChildOf returns the immediate child frame of ctxt along the shadow
// stack. A broken chain (ctxt not found, or ctxt is the current head) is a
// fatal internal-consistency error.
func (c *FilteringCursor) findChildOf(ctxt *filterContext) (*filterContext, error) {
	for i, f := range c.stack {
		if f == ctxt {
			if i+1 < len(c.stack) {
				return c.stack[i+1], nil
			}
			return nil, internalErrorf("findChildOf", ErrBrokenReplayChain)
		}
	}
	return nil, internalErrorf("findChildOf", ErrBrokenReplayChain)
}

func (c *FilteringCursor) emitMetric(data MetricEventData) {
	if c.metricsCallback == nil {
		return
	}
	c.metricsCallback(data)
}

// acceptMatch increments the match budget after an IncludeAll acceptance
// and reports whether the acceptance is allowed to stand given
// allowMultipleMatches.
func (c *FilteringCursor) acceptMatch(start time.Time) bool {
	if !c.allowMultipleMatches && c.matchCount >= 1 {
		c.logger.Debug("tokenfilter: rejecting additional match, multi-match disabled", "instance_id", c.instanceID)
		return false
	}
	c.matchCount++
	c.emitMetric(MatchAcceptedData{
		InstanceID: c.instanceID,
		MatchCount: c.matchCount,
		Depth:      len(c.stack),
		Performance: PerformanceMetrics{
			ProcessingDuration: time.Since(start),
		},
	})
	return true
}

func (c *FilteringCursor) setCurrent(tok Token) {
	c.currentToken = tok
	c.hasCurrentToken = tok != NoToken
}

// --- Public accessors that don't involve the phase state machine ---

// CurrentToken reports the last token returned by NextToken, or NoToken.
func (c *FilteringCursor) CurrentToken() Token { return c.currentToken }

// HasCurrentToken reports whether CurrentToken is meaningful.
func (c *FilteringCursor) HasCurrentToken() bool { return c.hasCurrentToken }

// CurrentTokenID is an alias for CurrentToken provided for parity with
// cursor APIs that distinguish a token value from its id.
func (c *FilteringCursor) CurrentTokenID() Token { return c.currentToken }

// HasTokenID reports whether CurrentToken equals id.
func (c *FilteringCursor) HasTokenID(id Token) bool { return c.currentToken == id }

// HasToken is an alias for HasTokenID.
func (c *FilteringCursor) HasToken(t Token) bool { return c.currentToken == t }

// ClearCurrentToken nulls CurrentToken, preserving its previous value as
// LastClearedToken.
func (c *FilteringCursor) ClearCurrentToken() {
	c.lastClearedToken = c.currentToken
	c.currentToken = NoToken
	c.hasCurrentToken = false
}

// LastClearedToken returns the token saved by the most recent
// ClearCurrentToken call.
func (c *FilteringCursor) LastClearedToken() Token { return c.lastClearedToken }

// CurrentName reports the shadow stack's current property name: the name
// itself when the current token is a property name or a value directly
// under one, or the parent frame's name when the current token is a
// container start.
func (c *FilteringCursor) CurrentName() (string, error) {
	ctxt := c.streamReadContextFrame()
	if ctxt.kind == contextObject && c.currentToken != StartObject && c.currentToken != StartArray {
		return ctxt.currentName, nil
	}
	if len(c.stack) > 1 {
		idx := c.indexOf(ctxt)
		if idx > 0 {
			return c.stack[idx-1].currentName, nil
		}
	}
	return "", nil
}

// OverrideCurrentName is not supported: the current name always comes from
// the shadow stack. It returns ErrNameOverrideUnsupported.
func (c *FilteringCursor) OverrideCurrentName(string) error {
	return ErrNameOverrideUnsupported
}

// streamReadContextFrame returns the exposed context if one is active,
// else the head context.
func (c *FilteringCursor) streamReadContextFrame() *filterContext {
	if e := c.exposed(); e != nil {
		return e
	}
	return c.head()
}

func (c *FilteringCursor) indexOf(fc *filterContext) int {
	for i, f := range c.stack {
		if f == fc {
			return i
		}
	}
	return -1
}

// StreamReadContext exposes the frame currently governing reads: the
// exposed context while draining replay, else the head context. Returned
// as an opaque ReadContext so callers cannot reach into filter internals.
func (c *FilteringCursor) StreamReadContext() ReadContext {
	return ReadContext{fc: c.streamReadContextFrame()}
}

// ReadContext is a read-only view of a shadow stack frame.
type ReadContext struct {
	fc *filterContext
}

// CurrentName reports the frame's current property name.
func (r ReadContext) CurrentName() string { return r.fc.currentName }

// CurrentIndex reports the frame's current array index, or -1 outside an
// array context.
func (r ReadContext) CurrentIndex() int { return r.fc.currentIndex }

// InArray reports whether this frame shadows an array container.
func (r ReadContext) InArray() bool { return r.fc.kind == contextArray }

// InObject reports whether this frame shadows an object container.
func (r ReadContext) InObject() bool { return r.fc.kind == contextObject }

// GetMatchCount returns the total number of IncludeAll acceptances
// counted against the match budget so far.
func (c *FilteringCursor) GetMatchCount() int { return c.matchCount }
