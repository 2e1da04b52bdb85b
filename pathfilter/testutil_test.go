package pathfilter_test

import tf "github.com/glyphstream/tokenfilter"

// mockEvent is one upstream token in a scripted test stream, mirroring the
// root package's own testutil_test.go (separate package, so not reusable
// directly).
type mockEvent struct {
	tok  tf.Token
	text string
}

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

func startObject() mockEvent        { return mockEvent{tok: tf.StartObject} }
func endObject() mockEvent          { return mockEvent{tok: tf.EndObject} }
func startArray() mockEvent         { return mockEvent{tok: tf.StartArray} }
func endArray() mockEvent           { return mockEvent{tok: tf.EndArray} }
func propertyName(s string) mockEvent { return mockEvent{tok: tf.PropertyName, text: s} }
func number(s string) mockEvent       { return mockEvent{tok: tf.Number, text: s} }
