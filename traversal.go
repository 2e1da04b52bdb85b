package tokenfilter

// NextValue is NextToken, skipping over a lone PropertyName so callers
// that only care about values don't have to special-case it themselves.
func (c *FilteringCursor) NextValue() (Token, error) {
	tok, err := c.NextToken()
	if err != nil || tok != PropertyName {
		return tok, err
	}
	return c.NextToken()
}

// SkipChildren advances past the matching end-marker of the current
// START_OBJECT/START_ARRAY without reporting the tokens in between. It
// deliberately does not delegate to the upstream cursor's own
// SkipChildren: buffered lookahead may have already moved upstream ahead
// of what has been shown downstream, so the only safe way to skip is to
// keep pulling filtered tokens from this cursor until depth returns to
// zero.
func (c *FilteringCursor) SkipChildren() error {
	if c.currentToken != StartObject && c.currentToken != StartArray {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := c.NextToken()
		if err != nil {
			return err
		}
		switch tok {
		case StartObject, StartArray:
			depth++
		case EndObject, EndArray:
			depth--
		case NoToken:
			return internalErrorf("SkipChildren", ErrBrokenReplayChain)
		}
	}
	return nil
}

// NextName advances to the next token and reports whether it is a
// PropertyName, returning its text.
func (c *FilteringCursor) NextName() (string, bool, error) {
	tok, err := c.NextToken()
	if err != nil || tok != PropertyName {
		return "", false, err
	}
	name, err := c.GetText()
	return name, err == nil, err
}

// NextNameEquals advances to the next token and reports whether it is a
// PropertyName exactly equal to name.
func (c *FilteringCursor) NextNameEquals(name string) (bool, error) {
	got, isName, err := c.NextName()
	if err != nil || !isName {
		return false, err
	}
	return got == name, nil
}

// NameMatcher decides whether a property name is of interest, for use
// with NextNameMatch.
type NameMatcher interface {
	MatchName(name string) bool
}

// NameMatcherFunc adapts a plain function to NameMatcher.
type NameMatcherFunc func(name string) bool

// MatchName implements NameMatcher.
func (f NameMatcherFunc) MatchName(name string) bool { return f(name) }

// NextNameMatch advances to the next token and reports whether it is a
// PropertyName whose text satisfies matcher.
func (c *FilteringCursor) NextNameMatch(matcher NameMatcher) (bool, error) {
	_, isName, err := c.NextName()
	if err != nil || !isName {
		return false, err
	}
	name, err := c.GetText()
	if err != nil {
		return false, err
	}
	return matcher.MatchName(name), nil
}
