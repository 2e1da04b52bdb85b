// Package jsontokens adapts encoding/json.Decoder's token stream into the
// tokenfilter.TokenCursor interface, so a FilteringCursor can drive a live
// JSON byte stream directly.
package jsontokens

import (
	"encoding/json"
	"fmt"
	"io"

	tf "github.com/glyphstream/tokenfilter"
)

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type frame struct {
	kind      frameKind
	expectKey bool   // object only: true when the next string token is a property name
	activeKey string // object only: the most recently read property name at this level
	ownName   string // the key (or "" for array elements/root) this frame's own container was found under
}

// Cursor is a tf.TokenCursor over encoding/json.Decoder.Token(). It decodes
// numbers as json.Number so large integers and precise decimals survive
// round-tripping through the filter unmodified.
type Cursor struct {
	dec   *json.Decoder
	stack []frame

	current     tf.Token
	hasCurrent  bool
	currentText string
	currentName string
}

// New constructs a Cursor reading from r.
func New(r io.Reader) *Cursor {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Cursor{dec: dec}
}

func (c *Cursor) NextToken() (tf.Token, error) {
	if len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if top.kind == frameObject && top.expectKey {
			raw, err := c.dec.Token()
			if err != nil {
				return c.endOfStream(err)
			}
			if d, isDelim := raw.(json.Delim); isDelim && d == '}' {
				return c.dispatchDelim(d)
			}
			name, ok := raw.(string)
			if !ok {
				return tf.NoToken, fmt.Errorf("jsontokens: expected object key, got %T", raw)
			}
			top.expectKey = false
			top.activeKey = name
			return c.setCurrent(tf.PropertyName, name, name)
		}
	}

	raw, err := c.dec.Token()
	if err != nil {
		return c.endOfStream(err)
	}

	switch v := raw.(type) {
	case json.Delim:
		return c.dispatchDelim(v)
	case string:
		return c.setScalar(tf.String, v)
	case json.Number:
		return c.setScalar(tf.Number, v.String())
	case bool:
		text := "false"
		if v {
			text = "true"
		}
		return c.setScalar(tf.Boolean, text)
	case nil:
		return c.setScalar(tf.Null, "null")
	default:
		return tf.NoToken, fmt.Errorf("jsontokens: unexpected token type %T", raw)
	}
}

// childName reports the name a value directly inside the current top
// frame would be found under: the frame's active key for an object, or ""
// for an array element or the document root.
func (c *Cursor) childName() string {
	if len(c.stack) == 0 {
		return ""
	}
	top := &c.stack[len(c.stack)-1]
	if top.kind == frameObject {
		return top.activeKey
	}
	return ""
}

func (c *Cursor) dispatchDelim(d json.Delim) (tf.Token, error) {
	switch d {
	case '{':
		name := c.childName()
		c.stack = append(c.stack, frame{kind: frameObject, expectKey: true, ownName: name})
		return c.setCurrent(tf.StartObject, "", name)
	case '[':
		name := c.childName()
		c.stack = append(c.stack, frame{kind: frameArray, ownName: name})
		return c.setCurrent(tf.StartArray, "", name)
	case '}':
		name := c.popFrame()
		return c.setCurrent(tf.EndObject, "", name)
	case ']':
		name := c.popFrame()
		return c.setCurrent(tf.EndArray, "", name)
	default:
		return tf.NoToken, fmt.Errorf("jsontokens: unexpected delimiter %q", d)
	}
}

func (c *Cursor) setScalar(tok tf.Token, text string) (tf.Token, error) {
	name := c.childName()
	c.afterValue()
	return c.setCurrent(tok, text, name)
}

// afterValue re-arms the parent object frame to expect its next key, once
// the value it was waiting on (scalar or just-closed container) is done.
func (c *Cursor) afterValue() {
	if len(c.stack) == 0 {
		return
	}
	top := &c.stack[len(c.stack)-1]
	if top.kind == frameObject {
		top.expectKey = true
	}
}

// popFrame pops the closing frame and returns the name it was itself
// found under (its own ownName), then re-arms its parent.
func (c *Cursor) popFrame() string {
	if len(c.stack) == 0 {
		return ""
	}
	closed := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.afterValue()
	return closed.ownName
}

func (c *Cursor) setCurrent(tok tf.Token, text, name string) (tf.Token, error) {
	c.current = tok
	c.hasCurrent = true
	c.currentText = text
	c.currentName = name
	return tok, nil
}

func (c *Cursor) endOfStream(err error) (tf.Token, error) {
	if err == io.EOF {
		c.current = tf.NoToken
		c.hasCurrent = false
		return tf.NoToken, nil
	}
	return tf.NoToken, err
}

// CurrentToken reports the last token returned by NextToken.
func (c *Cursor) CurrentToken() tf.Token { return c.current }

// CurrentName reports the name of the object property governing the
// current position: the name itself for a PropertyName, the key a
// container start or end was found under, or the key of the enclosing
// object for a scalar value. Empty for array elements and the document
// root.
func (c *Cursor) CurrentName() (string, error) { return c.currentName, nil }

// SkipChildren discards upstream tokens until the matching end-marker of
// the current START_OBJECT/START_ARRAY, via repeated NextToken calls
// rather than json.Decoder's own (unavailable at this abstraction level)
// skip support.
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
		case tf.NoToken:
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}

// GetText returns the current token's textual payload.
func (c *Cursor) GetText() (string, error) { return c.currentText, nil }

// GetTextLength returns the length of GetText's result.
func (c *Cursor) GetTextLength() (int, error) { return len(c.currentText), nil }

// GetTextOffset returns the decoder's current byte offset into the input.
func (c *Cursor) GetTextOffset() (int, error) { return int(c.dec.InputOffset()), nil }

// GetValueAsString returns the current token's text, or defaultValue if
// there is no current token.
func (c *Cursor) GetValueAsString(defaultValue string) (string, error) {
	if !c.hasCurrent {
		return defaultValue, nil
	}
	return c.currentText, nil
}
