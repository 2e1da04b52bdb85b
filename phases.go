package tokenfilter

import (
	"reflect"
	"time"
)

// NextToken is the filtering state machine's single entry point (spec
// §4.3). It proceeds through up to three phases per call: early
// termination (Phase A), replay drain (Phase B), and a live read loop
// that can itself tentatively push containers and, once a descendant
// earns inclusion, hand off to replay (the source's Phase D folded into
// the same live loop — see dispatch).
func (c *FilteringCursor) NextToken() (Token, error) {
	if c.phaseATerminate() {
		c.setCurrent(NoToken)
		return NoToken, nil
	}
	if tok, err, handled := c.phaseBDrain(); handled {
		return tok, err
	}
	return c.runLive(NoToken, false)
}

// phaseATerminate implements the early-termination check: once the sole
// match has been emitted under the single-match, OnlyIncludeAll contract
// and no ancestor container above the (virtual) root is still open and
// started, further calls return end-of-stream without consulting
// upstream at all.
func (c *FilteringCursor) phaseATerminate() bool {
	if c.allowMultipleMatches {
		return false
	}
	if c.inclusion != OnlyIncludeAll {
		return false
	}
	if !c.hasCurrentToken || !c.currentToken.isScalar() {
		return false
	}
	if c.matchCount < 1 {
		return false
	}
	return !c.anyOpenStartedContainer()
}

// anyOpenStartedContainer reports whether any frame above the root has
// had its start marker emitted downstream and not yet closed.
func (c *FilteringCursor) anyOpenStartedContainer() bool {
	for _, fc := range c.stack[1:] {
		if fc.startHandled {
			return true
		}
	}
	return false
}

// outermostUnhandled returns the shallowest frame above the root whose
// start marker has not yet been emitted downstream — the buffer root
// replay would begin from — or nil if every open container is already
// live.
func (c *FilteringCursor) outermostUnhandled() *filterContext {
	for _, fc := range c.stack[1:] {
		if !fc.startHandled {
			return fc
		}
	}
	return nil
}

// phaseBDrain drains the exposed context's replay queue, if one is
// active. handled reports whether NextToken should return (tok, err)
// immediately; handled == false means there was nothing to drain and the
// caller should proceed to the live read loop.
func (c *FilteringCursor) phaseBDrain() (tok Token, err error, handled bool) {
	exp := c.exposed()
	for exp != nil {
		if entry, ok := exp.nextTokenToRead(); ok {
			if entry.token == PropertyName {
				exp.currentName = entry.name
			}
			c.setCurrent(entry.token)
			return entry.token, nil, true
		}
		if exp == c.head() {
			// This frame's own buffered entries are exhausted and it is
			// the current head: replay has caught up to live ground.
			c.setExposed(nil)
			upTok := c.upstream.CurrentToken()
			if upTok == PropertyName {
				// This PropertyName is the one whose IncludeAll resolution
				// triggered the replay cascade in the first place
				// (dispatchPropertyName defers to triggerReplay without ever
				// advancing upstream past it); it was already consulted and
				// already re-emitted from this frame's own buffered queue
				// above. Redispatching it here would re-run IncludeProperty
				// and double-count the match, so fetch the value that
				// actually follows instead.
				tok, err = c.runLive(NoToken, false)
				return tok, err, true
			}
			if upTok.isScalar() || upTok == StartObject || upTok == StartArray {
				// An accepted scalar or an included container start that
				// triggered the replay has already been dispatched; emit it
				// as is rather than running the filter (and match budget)
				// over it a second time.
				c.setCurrent(upTok)
				return upTok, nil, true
			}
			tok, err = c.runLive(upTok, true)
			return tok, err, true
		}
		child, ferr := c.findChildOf(exp)
		if ferr != nil {
			return NoToken, ferr, true
		}
		c.setExposed(child)
		exp = child
	}
	return NoToken, nil, false
}

// runLive is the live-read loop. If have is true it dispatches tok
// without consulting upstream first (used when resuming after a replay
// drain caught up to an already-fetched upstream token); otherwise it
// pulls a fresh token from upstream before every dispatch. It loops
// internally — pulling/dispatching further tokens — until something is
// actually emitted downstream or upstream reports end of stream.
func (c *FilteringCursor) runLive(tok Token, have bool) (Token, error) {
	for {
		if !have {
			var err error
			tok, err = c.upstream.NextToken()
			if err != nil {
				return NoToken, err
			}
		}
		have = false
		if tok == NoToken {
			c.setCurrent(NoToken)
			return NoToken, nil
		}
		result, emitted, err := c.dispatch(tok)
		if err != nil {
			return NoToken, err
		}
		if emitted {
			return result, nil
		}
	}
}

// dispatch handles exactly one upstream token already in hand, mirroring
// spec §4.3's Phase C switch. It returns emitted == true when the
// FilteringCursor has something to hand back to the caller this call;
// emitted == false tells runLive to pull (or, just once, re-dispatch) the
// next token.
func (c *FilteringCursor) dispatch(tok Token) (Token, bool, error) {
	switch {
	case tok == StartObject || tok == StartArray:
		return c.dispatchStart(tok)
	case tok == EndObject || tok == EndArray:
		return c.dispatchEnd(tok)
	case tok == PropertyName:
		return c.dispatchPropertyName()
	default:
		return c.dispatchScalar(tok)
	}
}

func (c *FilteringCursor) dispatchStart(tok Token) (Token, bool, error) {
	kind := contextObject
	if tok == StartArray {
		kind = contextArray
	}
	f := c.itemFilter
	switch {
	case f == IncludeAll:
		child := c.pushContext(kind, IncludeAll)
		child.startHandled = true
		c.itemFilter = IncludeAll
		c.setCurrent(tok)
		return tok, true, nil
	case f == nil:
		if err := c.upstream.SkipChildren(); err != nil {
			return NoToken, false, err
		}
		return NoToken, false, nil
	}

	refined := c.head().checkValue(f)
	if refined == nil {
		if err := c.upstream.SkipChildren(); err != nil {
			return NoToken, false, err
		}
		return NoToken, false, nil
	}

	var started TokenFilter
	if kind == contextArray {
		started = refined.FilterStartArray()
	} else {
		started = refined.FilterStartObject()
	}
	// A FilterStart* method promoted from an embedded DefaultTokenFilter
	// returns the embedded value; the outer filter keeps governing instead.
	if v := reflect.ValueOf(refined); started != nil && v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Struct {
		if sf, ok := v.Elem().Type().FieldByName("DefaultTokenFilter"); ok {
			if d, err := v.Elem().FieldByIndexErr(sf.Index); err == nil && d.CanAddr() && d.Addr().CanInterface() && d.Addr().Interface() == any(started) {
				started = refined
			}
		}
	}

	if started == IncludeAll || (started != nil && c.inclusion == IncludeNonNull) {
		// ambiguous: per spec Design Notes §9, buffered START_OBJECT
		// under IncludeNonNull is documented as creating a child ARRAY
		// context in the source; preserved here rather than corrected.
		pushKind := kind
		if c.inclusion == IncludeNonNull && tok == StartObject {
			pushKind = contextArray
		}
		child := c.pushContext(pushKind, started)
		child.startHandled = true
		c.itemFilter = started
		if c.inclusion.wantsPath() && c.outermostUnhandled() != nil {
			// The enclosing path is still buffered: replay it first; the
			// catch-up in phaseBDrain then emits this start marker.
			return c.triggerReplay()
		}
		c.setCurrent(tok)
		return tok, true, nil
	}

	child := c.pushContext(kind, started)
	if c.inclusion.wantsPath() {
		child.enqueueStart(tok)
	}
	c.itemFilter = started
	return NoToken, false, nil
}

func (c *FilteringCursor) dispatchEnd(tok Token) (Token, bool, error) {
	head := c.head()
	returnEnd := head.startHandled
	f := head.filter

	if f != nil && f != IncludeAll {
		if head.kind == contextArray {
			f.FilterFinishArray()
		} else {
			f.FilterFinishObject()
		}
	}

	if !head.startHandled && f != nil && f != IncludeAll {
		// ambiguous: per spec Design Notes §9, the end-of-object path in
		// the source calls IncludeEmptyArray where IncludeEmptyObject
		// would be expected; preserved here rather than corrected.
		if f.IncludeEmptyArray(hasSeenChild(head)) {
			head.needToHandleName = false
			tok, emitted, err := c.triggerReplay()
			if err != nil {
				return NoToken, false, err
			}
			if emitted {
				return tok, true, nil
			}
		}
	}

	c.popContext()
	// The next sibling is governed by the frame the container closed into.
	c.itemFilter = c.head().filter
	if returnEnd {
		c.setCurrent(tok)
		return tok, true, nil
	}
	return NoToken, false, nil
}

// hasSeenChild reports whether the about-to-close frame saw at least one
// array element or property name, for the IncludeEmptyArray/Object
// hasIndex/hasName argument.
func hasSeenChild(fc *filterContext) bool {
	return fc.sawAnyElement || fc.currentName != ""
}

func (c *FilteringCursor) dispatchPropertyName() (Token, bool, error) {
	name, err := c.upstream.GetText()
	if err != nil {
		return NoToken, false, err
	}
	head := c.head()
	f := head.setPropertyName(name)

	switch {
	case f == IncludeAll:
		c.itemFilter = IncludeAll
		c.setCurrent(PropertyName)
		return PropertyName, true, nil
	case f == nil:
		if err := c.skipUpstreamValue(); err != nil {
			return NoToken, false, err
		}
		return NoToken, false, nil
	}

	refined := f.IncludeProperty(name)
	switch {
	case refined == nil:
		if err := c.skipUpstreamValue(); err != nil {
			return NoToken, false, err
		}
		return NoToken, false, nil
	case refined == IncludeAll:
		start := time.Now()
		if !c.acceptMatch(start) {
			// Match-budget reset edge case (Design Notes §9): restore
			// itemFilter by re-seeding the property name so the next
			// iteration is not mis-seeded, then drop this value.
			c.itemFilter = head.setPropertyName(name)
			if err := c.skipUpstreamValue(); err != nil {
				return NoToken, false, err
			}
			return NoToken, false, nil
		}
		c.itemFilter = IncludeAll
		if !c.inclusion.wantsPath() {
			return NoToken, false, nil
		}
		if root := c.outermostUnhandled(); root != nil {
			tok, emitted, err := c.triggerReplay()
			return tok, emitted, err
		}
		head.currentName = name
		c.setCurrent(PropertyName)
		return PropertyName, true, nil
	default:
		c.itemFilter = refined
		return NoToken, false, nil
	}
}

func (c *FilteringCursor) dispatchScalar(tok Token) (Token, bool, error) {
	if c.itemFilter == IncludeAll {
		if c.inclusion == IncludeNonNull && tok == Null {
			return NoToken, false, nil
		}
		c.setCurrent(tok)
		return tok, true, nil
	}
	if c.itemFilter == nil {
		return NoToken, false, nil
	}

	refined := c.head().checkValue(c.itemFilter)
	accessor := upstreamAccessor{cursor: c.upstream, tok: tok}

	accepted := refined == IncludeAll || (refined != nil && refined.IncludeValue(accessor))
	if !accepted {
		return NoToken, false, nil
	}
	if c.inclusion == IncludeNonNull && tok == Null {
		return NoToken, false, nil
	}

	start := time.Now()
	if !c.acceptMatch(start) {
		return NoToken, false, nil
	}
	if !c.inclusion.wantsPath() {
		c.setCurrent(tok)
		return tok, true, nil
	}
	if root := c.outermostUnhandled(); root != nil {
		return c.triggerReplay()
	}
	c.setCurrent(tok)
	return tok, true, nil
}

// skipUpstreamValue discards the value following a rejected property
// name or array element: a container's entire subtree via SkipChildren,
// or a scalar by simply reading past it.
func (c *FilteringCursor) skipUpstreamValue() error {
	tok, err := c.upstream.NextToken()
	if err != nil {
		return err
	}
	if tok == StartObject || tok == StartArray {
		return c.upstream.SkipChildren()
	}
	return nil
}

// triggerReplay starts draining the outermost still-tentative ancestor's
// buffered path tokens, emitting the first one now. Phase B continues the
// drain on subsequent NextToken calls until it catches back up to live
// ground.
func (c *FilteringCursor) triggerReplay() (Token, bool, error) {
	root := c.outermostUnhandled()
	if root == nil {
		return NoToken, false, internalErrorf("triggerReplay", ErrMissingBufferedToken)
	}
	c.setExposed(root)
	entry, ok := root.nextTokenToRead()
	if !ok {
		return NoToken, false, internalErrorf("triggerReplay", ErrMissingBufferedToken)
	}
	if entry.token == PropertyName {
		root.currentName = entry.name
	}
	c.setCurrent(entry.token)
	return entry.token, true, nil
}

// upstreamAccessor adapts the upstream cursor to ScalarAccessor for a
// single scalar dispatch.
type upstreamAccessor struct {
	cursor TokenCursor
	tok    Token
}

func (a upstreamAccessor) Token() Token { return a.tok }

func (a upstreamAccessor) Text() (string, error) { return a.cursor.GetText() }
