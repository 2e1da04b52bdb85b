package tokenfilter_test

import (
	"testing"

	tf "github.com/glyphstream/tokenfilter"
	"github.com/stretchr/testify/assert"
)

func TestIncludeAll_IdentityUnderPointerComparison(t *testing.T) {
	assert.Same(t, tf.IncludeAll, tf.IncludeAll.IncludeElement(0))
	assert.Same(t, tf.IncludeAll, tf.IncludeAll.IncludeProperty("x"))
	assert.Same(t, tf.IncludeAll, tf.IncludeAll.FilterStartArray())
	assert.Same(t, tf.IncludeAll, tf.IncludeAll.FilterStartObject())
	assert.True(t, tf.IncludeAll.IncludeValue(nil))
	assert.True(t, tf.IncludeAll.IncludeEmptyArray(false))
	assert.True(t, tf.IncludeAll.IncludeEmptyObject(true))
}

func TestDefaultTokenFilter_KeepsDecidingByDefault(t *testing.T) {
	f := &tf.DefaultTokenFilter{}
	assert.Same(t, tf.TokenFilter(f), f.IncludeElement(0))
	assert.Same(t, tf.TokenFilter(f), f.IncludeProperty("x"))
	assert.Same(t, tf.TokenFilter(f), f.FilterStartArray())
	assert.Same(t, tf.TokenFilter(f), f.FilterStartObject())
	assert.False(t, f.IncludeValue(nil))
	assert.False(t, f.IncludeEmptyArray(false))
	assert.False(t, f.IncludeEmptyObject(false))
}

func TestInclusionMode_String(t *testing.T) {
	assert.Equal(t, "OnlyIncludeAll", tf.OnlyIncludeAll.String())
	assert.Equal(t, "IncludeAllAndPath", tf.IncludeAllAndPath.String())
	assert.Equal(t, "IncludeNonNull", tf.IncludeNonNull.String())
	assert.Equal(t, "InclusionMode(unknown)", tf.InclusionMode(99).String())
}

func TestToken_String(t *testing.T) {
	assert.Equal(t, "StartObject", tf.StartObject.String())
	assert.Equal(t, "Number", tf.Number.String())
	assert.Equal(t, "Token(unknown)", tf.Token(99).String())
}
