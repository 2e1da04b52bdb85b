package tokenfilter_test

import tf "github.com/glyphstream/tokenfilter"

// mockEvent is one upstream token in a scripted test stream.
type mockEvent struct {
	tok  tf.Token
	text string // property name or scalar text; unused for container/markers
}

// mockCursor is a scripted tf.TokenCursor over a fixed event list, the
// role the teacher's NewMockStream/NewMockControlledStream constructors
// play for openai.ChatCompletionStreamInterface in adapter_test.go and
// context_test.go.
type mockCursor struct {
	events []mockEvent
	pos    int
}

func newMockCursor(events []mockEvent) *mockCursor {
	return &mockCursor{events: events, pos: -1}
}

func (m *mockCursor) NextToken() (tf.Token, error) {
	m.pos++
	if m.pos >= len(m.events) {
		return tf.NoToken, nil
	}
	return m.events[m.pos].tok, nil
}

func (m *mockCursor) CurrentToken() tf.Token {
	if m.pos < 0 || m.pos >= len(m.events) {
		return tf.NoToken
	}
	return m.events[m.pos].tok
}

func (m *mockCursor) CurrentName() (string, error) {
	for i := m.pos; i >= 0; i-- {
		if m.events[i].tok == tf.PropertyName {
			return m.events[i].text, nil
		}
	}
	return "", nil
}

func (m *mockCursor) SkipChildren() error {
	if cur := m.CurrentToken(); cur != tf.StartObject && cur != tf.StartArray {
		return nil
	}
	depth := 1
	for depth > 0 {
		m.pos++
		if m.pos >= len(m.events) {
			return nil
		}
		switch m.events[m.pos].tok {
		case tf.StartObject, tf.StartArray:
			depth++
		case tf.EndObject, tf.EndArray:
			depth--
		}
	}
	return nil
}

func (m *mockCursor) GetText() (string, error) {
	if m.pos < 0 || m.pos >= len(m.events) {
		return "", nil
	}
	return m.events[m.pos].text, nil
}

func (m *mockCursor) GetTextLength() (int, error) {
	text, err := m.GetText()
	return len(text), err
}

func (m *mockCursor) GetTextOffset() (int, error) { return m.pos, nil }

func (m *mockCursor) GetValueAsString(defaultValue string) (string, error) {
	text, err := m.GetText()
	if err != nil {
		return defaultValue, err
	}
	if text == "" {
		return defaultValue, nil
	}
	return text, nil
}

// --- scripted-event builders, mirroring JSON shorthand used in spec scenarios ---

func tSO() mockEvent        { return mockEvent{tok: tf.StartObject} }
func tEO() mockEvent        { return mockEvent{tok: tf.EndObject} }
func tSA() mockEvent        { return mockEvent{tok: tf.StartArray} }
func tEA() mockEvent        { return mockEvent{tok: tf.EndArray} }
func tName(s string) mockEvent { return mockEvent{tok: tf.PropertyName, text: s} }
func tNum(s string) mockEvent  { return mockEvent{tok: tf.Number, text: s} }
func tStr(s string) mockEvent  { return mockEvent{tok: tf.String, text: s} }
func tBool(s string) mockEvent { return mockEvent{tok: tf.Boolean, text: s} }
func tNull() mockEvent         { return mockEvent{tok: tf.Null, text: "null"} }

// drain pulls every remaining token from c, returning the (token, name-or-text)
// pairs it observed, in order. It stops at the first NoToken or error.
func drain(c *tf.FilteringCursor) ([]tf.Token, []string, error) {
	var toks []tf.Token
	var texts []string
	for {
		tok, err := c.NextToken()
		if err != nil {
			return toks, texts, err
		}
		if tok == tf.NoToken {
			return toks, texts, nil
		}
		text, _ := c.GetText()
		toks = append(toks, tok)
		texts = append(texts, text)
	}
}
