package tokenfilter

import "sync"

// contextKind identifies what kind of container a filterContext frame
// shadows.
type contextKind int

const (
	contextRoot contextKind = iota
	contextObject
	contextArray
)

// replayEntry is one buffered token awaiting possible emission: either a
// container start-marker or a property name. Scalars and entire skipped
// subtrees are never buffered — the decision to drop them is already
// final by the time they are seen, so there is nothing to replay.
type replayEntry struct {
	token Token
	name  string // valid when token == PropertyName
}

// filterContext is one frame per open container on the shadow stack that
// mirrors the upstream cursor's true depth. See spec §3 for the field
// semantics; this implementation keeps the stack as an explicit slice on
// FilteringCursor rather than linking frames with parent pointers, so
// findChildOf is a forward index walk instead of a reverse pointer chase.
type filterContext struct {
	kind             contextKind
	filter           TokenFilter
	startHandled     bool
	needToHandleName bool
	currentName      string
	currentIndex     int
	sawAnyElement    bool // for IncludeEmptyArray/Object's hasIndex/hasName arg bookkeeping at this level

	// pendingStart/startToken hold this frame's own start-marker while it
	// awaits possible replay. A frame's entire buffered state is this one
	// start-marker plus whatever property name currentName/needToHandleName
	// currently holds — never a growing queue. Once startHandled flips to
	// true, earlier pending names have already been superseded by
	// overwriting currentName, so nothing is lost by not having kept them.
	pendingStart bool
	startToken   Token
}

// filterContextPool recycles filterContext frames to reduce allocation
// pressure across many short-lived documents, the same role the teacher's
// candidatePool plays for JSONCandidate in a hot parsing loop.
var filterContextPool = sync.Pool{
	New: func() any {
		return &filterContext{}
	},
}

func acquireFilterContext(kind contextKind, filter TokenFilter) *filterContext {
	fc := filterContextPool.Get().(*filterContext)
	fc.kind = kind
	fc.filter = filter
	fc.startHandled = false
	fc.needToHandleName = false
	fc.currentName = ""
	fc.currentIndex = -1
	fc.sawAnyElement = false
	fc.pendingStart = false
	fc.startToken = NoToken
	return fc
}

func releaseFilterContext(fc *filterContext) {
	fc.filter = nil
	filterContextPool.Put(fc)
}

// setPropertyName records the path component for the upcoming child and
// returns the filter that should govern it. Per spec §4.2 this always
// resolves to the frame's own current filter; the "non-null and not
// IncludeAll" condition in the source is preserved here even though both
// branches return the same value, since that is what the source does.
func (fc *filterContext) setPropertyName(name string) TokenFilter {
	fc.currentName = name
	fc.needToHandleName = true
	if fc.filter != nil && fc.filter != IncludeAll {
		return fc.filter
	}
	return fc.filter
}

// checkValue refines filter for the value about to be processed. For
// array elements it advances currentIndex and asks the filter to narrow
// to that element; for object properties the property-name step has
// already narrowed the filter, so this is a pass-through.
func (fc *filterContext) checkValue(filter TokenFilter) TokenFilter {
	if fc.kind != contextArray {
		return filter
	}
	fc.currentIndex++
	fc.sawAnyElement = true
	switch {
	case filter == IncludeAll:
		return IncludeAll
	case filter == nil:
		return nil
	default:
		return filter.IncludeElement(fc.currentIndex)
	}
}

// enqueueStart buffers this frame's own start-marker for possible replay.
// Called once, right after the frame is created, when inclusion demands
// path emission and the frame's filter has not already resolved to
// IncludeAll.
func (fc *filterContext) enqueueStart(tok Token) {
	fc.pendingStart = true
	fc.startToken = tok
}

// nextTokenToRead pops this frame's next buffered replay token — its own
// start-marker first, then its currently pending property name — flipping
// startHandled when the start-marker is popped. ok is false once both are
// drained.
func (fc *filterContext) nextTokenToRead() (entry replayEntry, ok bool) {
	if fc.pendingStart {
		fc.pendingStart = false
		fc.startHandled = true
		return replayEntry{token: fc.startToken}, true
	}
	if fc.needToHandleName {
		fc.needToHandleName = false
		return replayEntry{token: PropertyName, name: fc.currentName}, true
	}
	return replayEntry{}, false
}

// hasBufferedReplay reports whether this frame still has an unread
// start-marker or property name awaiting replay.
func (fc *filterContext) hasBufferedReplay() bool {
	return fc.pendingStart || fc.needToHandleName
}
