package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRegistryOpenResolveClose(t *testing.T) {
	reg := NewFileRegistry()
	v := reg.Open("fake-handle")
	assert.Equal(t, File, v.Tag)

	h, ok := reg.Resolve(v)
	require.True(t, ok)
	assert.Equal(t, "fake-handle", h)

	assert.True(t, reg.Close(v))
	_, ok = reg.Resolve(v)
	assert.False(t, ok)
	assert.False(t, reg.Close(v))
}

func TestFileRegistryMintsDistinctIds(t *testing.T) {
	reg := NewFileRegistry()
	a := reg.Open("one")
	b := reg.Open("two")
	assert.NotEqual(t, a.Body, b.Body)
}
