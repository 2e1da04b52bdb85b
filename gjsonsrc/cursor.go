// Package gjsonsrc adapts an already-parsed github.com/tidwall/gjson tree
// into the tokenfilter.TokenCursor interface, for callers who already hold
// a parsed gjson.Result (or want zero-copy field access into a raw JSON
// string) instead of driving a byte stream through encoding/json.
//
// Each container level is materialized into an ordered item list lazily,
// only once the cursor actually descends into it, via gjson.Result.ForEach
// (which — unlike Result.Map — preserves source order).
package gjsonsrc

import (
	"github.com/tidwall/gjson"

	tf "github.com/glyphstream/tokenfilter"
)

type item struct {
	name  string // property key; "" for array elements
	value gjson.Result
}

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type frame struct {
	kind       frameKind
	items      []item
	idx        int
	pendingKey bool // object only: true once the key at idx has been emitted but not its value
	ownName    string
}

// Cursor is a tf.TokenCursor walking a parsed gjson.Result tree.
type Cursor struct {
	root    gjson.Result
	started bool
	stack   []frame

	current     tf.Token
	hasCurrent  bool
	currentText string
	currentName string
}

// New constructs a Cursor over an already-parsed root value, e.g. from
// gjson.Parse or gjson.ParseBytes.
func New(root gjson.Result) *Cursor {
	return &Cursor{root: root}
}

func (c *Cursor) NextToken() (tf.Token, error) {
	if !c.started {
		c.started = true
		return c.emitValue(c.root, ""), nil
	}
	if len(c.stack) == 0 {
		c.current = tf.NoToken
		c.hasCurrent = false
		return tf.NoToken, nil
	}

	top := &c.stack[len(c.stack)-1]
	switch top.kind {
	case frameObject:
		return c.nextObjectToken(top), nil
	default:
		return c.nextArrayToken(top), nil
	}
}

func (c *Cursor) nextObjectToken(top *frame) tf.Token {
	if top.pendingKey {
		top.pendingKey = false
		it := top.items[top.idx]
		return c.emitValue(it.value, it.name)
	}
	if top.idx < len(top.items) {
		name := top.items[top.idx].name
		top.pendingKey = true
		return c.setCurrent(tf.PropertyName, name, name)
	}
	return c.closeFrame(tf.EndObject)
}

func (c *Cursor) nextArrayToken(top *frame) tf.Token {
	if top.idx < len(top.items) {
		return c.emitValue(top.items[top.idx].value, "")
	}
	return c.closeFrame(tf.EndArray)
}

// closeFrame pops the current top frame, advances its new parent's idx
// past it, and returns the matching end-marker.
func (c *Cursor) closeFrame(end tf.Token) tf.Token {
	closed := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.advanceAfterValue()
	return c.setCurrent(end, "", closed.ownName)
}

// advanceAfterValue increments the (new) top frame's idx, marking its
// current item fully consumed, now that either a scalar was just emitted
// for it or its container value was just closed.
func (c *Cursor) advanceAfterValue() {
	if len(c.stack) == 0 {
		return
	}
	c.stack[len(c.stack)-1].idx++
}

// emitValue processes one value (a container value at the start of its
// life, or a scalar in full), found under name in whatever frame is
// currently on top (or the document root if the stack is empty).
func (c *Cursor) emitValue(v gjson.Result, name string) tf.Token {
	switch {
	case v.IsObject():
		c.stack = append(c.stack, frame{kind: frameObject, items: materialize(v), ownName: name})
		return c.setCurrent(tf.StartObject, "", name)
	case v.IsArray():
		c.stack = append(c.stack, frame{kind: frameArray, items: materialize(v), ownName: name})
		return c.setCurrent(tf.StartArray, "", name)
	default:
		tok, text := scalarToken(v)
		c.advanceAfterValue()
		return c.setCurrent(tok, text, name)
	}
}

func materialize(v gjson.Result) []item {
	var items []item
	v.ForEach(func(key, value gjson.Result) bool {
		items = append(items, item{name: key.String(), value: value})
		return true
	})
	return items
}

func scalarToken(v gjson.Result) (tf.Token, string) {
	switch v.Type {
	case gjson.String:
		return tf.String, v.String()
	case gjson.Number:
		return tf.Number, v.Raw
	case gjson.True:
		return tf.Boolean, "true"
	case gjson.False:
		return tf.Boolean, "false"
	default:
		return tf.Null, "null"
	}
}

func (c *Cursor) setCurrent(tok tf.Token, text, name string) tf.Token {
	c.current = tok
	c.hasCurrent = true
	c.currentText = text
	c.currentName = name
	return tok
}

// CurrentToken reports the last token returned by NextToken.
func (c *Cursor) CurrentToken() tf.Token { return c.current }

// CurrentName reports the key governing the current position, mirroring
// jsontokens.Cursor's semantics: the key itself for a PropertyName, the
// key a container start/end was itself found under, or the key of the
// enclosing object for a scalar. Empty for array elements and the root.
func (c *Cursor) CurrentName() (string, error) { return c.currentName, nil }

// SkipChildren discards tokens until the matching end-marker of the
// current START_OBJECT/START_ARRAY.
func (c *Cursor) SkipChildren() error {
	if c.current != tf.StartObject && c.current != tf.StartArray {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := c.NextToken()
		if err != nil {
			return err
		}
		switch tok {
		case tf.StartObject, tf.StartArray:
			depth++
		case tf.EndObject, tf.EndArray:
			depth--
		}
	}
	return nil
}

// GetText returns the current token's textual payload.
func (c *Cursor) GetText() (string, error) { return c.currentText, nil }

// GetTextLength returns the length of GetText's result.
func (c *Cursor) GetTextLength() (int, error) { return len(c.currentText), nil }

// GetTextOffset returns 0: a parsed gjson.Result tree carries no live
// read cursor over the original text once walked frame by frame the way
// this cursor does, unlike jsontokens.Cursor's live decoder offset.
func (c *Cursor) GetTextOffset() (int, error) { return 0, nil }

// GetValueAsString returns the current token's text, or defaultValue if
// there is no current token.
func (c *Cursor) GetValueAsString(defaultValue string) (string, error) {
	if !c.hasCurrent {
		return defaultValue, nil
	}
	return c.currentText, nil
}
