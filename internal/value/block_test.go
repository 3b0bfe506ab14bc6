package value

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBlockHexLine(t *testing.T) {
	b := NewBlock(4)
	b.Data = []byte{0xde, 0xad, 0xbe, 0xef}
	got := FormatBlock(b, 16, "line", true)
	assert.Equal(t, "de ad be ef", got)
}

func TestFormatBlockHdStyleHeaderAndCollapse(t *testing.T) {
	b := NewBlock(32)
	got := FormatBlock(b, 16, "hd_style", false)
	assert.True(t, strings.HasPrefix(got, "32 bytes ("))
	// an all-zero block collapses every repeated line after the first to "*".
	assert.Equal(t, 1, strings.Count(got, "*"))
}

func TestFormatBlockRespectsMaxPrint(t *testing.T) {
	b := NewBlock(10)
	b.MaxPrint = 4
	b.Data = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := FormatBlock(b, 16, "string", true)
	assert.Equal(t, "01 02 03 04", got)
}

func TestFormatBlockRawCharRadix(t *testing.T) {
	b := NewBlock(3)
	b.Data = []byte("a\x01b")
	got := FormatBlock(b, 256, "string", true)
	assert.Equal(t, "a . b", got)
}
