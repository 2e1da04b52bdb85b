package tokenfilter

// accessors.go forwards the textual-payload side of TokenCursor to
// upstream, with one override: when the current token is a buffered (or
// live) PropertyName, the shadow frame's name is authoritative, since
// upstream's own cursor may already have raced ahead of what has been
// shown downstream (spec §4.4).

// GetText returns the current token's textual payload: the shadow
// frame's current name for PropertyName, otherwise upstream's GetText.
func (c *FilteringCursor) GetText() (string, error) {
	if c.currentToken == PropertyName {
		return c.streamReadContextFrame().currentName, nil
	}
	return c.upstream.GetText()
}

// GetTextLength returns the length of GetText's result.
func (c *FilteringCursor) GetTextLength() (int, error) {
	if c.currentToken == PropertyName {
		return len(c.streamReadContextFrame().currentName), nil
	}
	return c.upstream.GetTextLength()
}

// GetTextOffset forwards to upstream. A replayed property name has no
// offset of its own in the upstream source text once buffered, so this
// is only meaningful while forwarding live.
func (c *FilteringCursor) GetTextOffset() (int, error) {
	return c.upstream.GetTextOffset()
}

// GetValueAsString returns the current token's value as a string, or
// defaultValue if there is none. A buffered PropertyName reports its
// shadow name rather than consulting upstream.
func (c *FilteringCursor) GetValueAsString(defaultValue string) (string, error) {
	if c.currentToken == PropertyName {
		name := c.streamReadContextFrame().currentName
		if name == "" {
			return defaultValue, nil
		}
		return name, nil
	}
	if !c.hasCurrentToken {
		return defaultValue, nil
	}
	return c.upstream.GetValueAsString(defaultValue)
}

// HasTextCharacters reports whether GetText would return upstream's own
// character buffer rather than a synthesized value. A replayed
// PropertyName is always synthesized from the shadow frame, never from
// upstream's live buffer, so this is unconditionally false for it.
func (c *FilteringCursor) HasTextCharacters() bool {
	if c.currentToken == PropertyName {
		return false
	}
	return c.hasCurrentToken
}
