// Package pathfilter compiles a slash-separated path expression, with
// tidwall/match glob segments, into a tokenfilter.TokenFilter that accepts
// only the value found at that path (and, depending on the cursor's
// InclusionMode, the enclosing path leading to it).
//
// A path is a sequence of segments separated by "/": "/a/*/x" matches
// property "a", any element of the array (or any property of the object)
// found there, then property "x" within it. Each segment is matched against
// property names and stringified array indices using tidwall/match's glob
// semantics (`*` and `?` only; there are no character classes), so "/items/*" matches every
// element of "items" and "/users/user-?" matches "user-1".."user-9".
package pathfilter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/match"

	tf "github.com/glyphstream/tokenfilter"
)

// Compile parses path into a TokenFilter. path must start with "/"; an
// empty path ("/" or "") matches the root value itself.
func Compile(path string) (tf.TokenFilter, error) {
	if path == "" || path == "/" {
		return tf.IncludeAll, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("pathfilter: path %q must start with \"/\"", path)
	}
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for _, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("pathfilter: path %q contains an empty segment", path)
		}
	}
	return &segmentFilter{segments: segments}, nil
}

// MustCompile is Compile, panicking on error. Intended for package-level
// filter variables built from constant path literals.
func MustCompile(path string) tf.TokenFilter {
	f, err := Compile(path)
	if err != nil {
		panic(err)
	}
	return f
}

// segmentFilter governs one not-yet-fully-matched position on a compiled
// path. segments[0] is the pattern this level must satisfy; segments[1:]
// governs whatever is found beneath a match.
type segmentFilter struct {
	tf.DefaultTokenFilter
	segments []string
}

func (f *segmentFilter) child(matched bool) tf.TokenFilter {
	if !matched {
		return nil
	}
	if len(f.segments) == 1 {
		return tf.IncludeAll
	}
	return &segmentFilter{segments: f.segments[1:]}
}

func (f *segmentFilter) IncludeProperty(name string) tf.TokenFilter {
	return f.child(match.Match(name, f.segments[0]))
}

func (f *segmentFilter) IncludeElement(index int) tf.TokenFilter {
	return f.child(match.Match(strconv.Itoa(index), f.segments[0]))
}
