// Package tokenfilter implements a streaming token-filtering cursor: a
// pull-based wrapper around an upstream TokenCursor that re-exposes the
// upstream token sequence minus whatever a TokenFilter predicate tree
// rejects, buffering and replaying suppressed path tokens (container
// starts and property names) when a descendant later earns inclusion.
package tokenfilter
