package value

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Block is a resizable, initially-zeroed byte buffer (the "octet string"
// arm), addressable a byte at a time via Octet addresses (§3.2, §4.2.4).
type Block struct {
	Data     []byte
	MaxPrint int // blkmaxprint snapshot at creation, 0 means config default
	Verbose  bool
}

// NewBlock allocates a zeroed block of the given size.
func NewBlock(size int) *Block {
	return &Block{Data: make([]byte, size)}
}

// Clone deep-copies the block for copy-on-write.
func (b Block) Clone() Block {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return Block{Data: out, MaxPrint: b.MaxPrint, Verbose: b.Verbose}
}

// Len returns the current block size in bytes.
func (b *Block) Len() int { return len(b.Data) }

// Resize grows or truncates the block in place, zero-filling new bytes.
// A block carrying NoReallocate must be rejected by the caller before
// reaching here.
func (b *Block) Resize(n int) {
	if n <= len(b.Data) {
		b.Data = b.Data[:n]
		return
	}
	grown := make([]byte, n)
	copy(grown, b.Data)
	b.Data = grown
}

// At returns the byte at index i.
func (b *Block) At(i int) (byte, error) {
	if i < 0 || i >= len(b.Data) {
		return 0, fmt.Errorf("value: block index out of range")
	}
	return b.Data[i], nil
}

// SetAt stores the low 8 bits of val at index i.
func (b *Block) SetAt(i int, val byte) error {
	if i < 0 || i >= len(b.Data) {
		return fmt.Errorf("value: block index out of range")
	}
	b.Data[i] = val
	return nil
}

// String renders a block the way calc prints octet strings: a bounded
// hex dump, honoring MaxPrint the way blkmaxprint truncates output.
func (b *Block) String() string {
	limit := len(b.Data)
	if b.MaxPrint > 0 && b.MaxPrint < limit {
		limit = b.MaxPrint
	}
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 0, limit*2+8)
	out = append(out, '*', '(')
	for i := 0; i < limit; i++ {
		c := b.Data[i]
		out = append(out, hexDigits[c>>4], hexDigits[c&0xf])
	}
	if limit < len(b.Data) {
		out = append(out, '.', '.', '.')
	}
	out = append(out, ')')
	return string(out)
}

// FormatBlock renders a block per §6's byte-block output format: radix
// selects the digit base a byte is printed in (2, 8, 16, or 256 for a
// raw/char dump); format selects the layout ("hd_style", "od_style",
// "line", or "string"). verbose=false collapses consecutive identical
// lines to a single "*", the way hexdump(1)-style tools do.
func FormatBlock(b *Block, radix int64, format string, verbose bool) string {
	data := b.Data
	if b.MaxPrint > 0 && b.MaxPrint < len(data) {
		data = data[:b.MaxPrint]
	}
	switch format {
	case "hd_style":
		return formatHexDump(data, verbose)
	case "od_style":
		return formatOctalDump(data, radix, verbose)
	case "string":
		return formatByteRadix(data, radix)
	default: // "line"
		return wrapColumns(formatByteRadix(data, radix), 79)
	}
}

func formatByteRadix(data []byte, radix int64) string {
	var sb strings.Builder
	for i, c := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch radix {
		case 2:
			fmt.Fprintf(&sb, "%08b", c)
		case 8:
			fmt.Fprintf(&sb, "%03o", c)
		case 256: // raw/char
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				sb.WriteByte('.')
			}
		default: // 16, hex
			fmt.Fprintf(&sb, "%02x", c)
		}
	}
	return sb.String()
}

func wrapColumns(s string, width int) string {
	var sb strings.Builder
	for len(s) > width {
		sb.WriteString(s[:width])
		sb.WriteByte('\n')
		s = s[width:]
	}
	sb.WriteString(s)
	return sb.String()
}

// formatHexDump renders 16 bytes per line, offset-prefixed, with an ASCII
// sidebar — od -Ax x -tx1z's layout. The header reports the block's total
// size in both bytes and a human-readable unit via humanize.
func formatHexDump(data []byte, verbose bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d bytes (%s)\n", len(data), humanize.Bytes(uint64(len(data))))
	var lastLine string
	collapsed := false
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]
		line := fmt.Sprintf("%08x  %-47s  |%s|", off, hexColumns(chunk), asciiSidebar(chunk))
		if !verbose && line[9:] == lastLine {
			if !collapsed {
				sb.WriteString("*\n")
				collapsed = true
			}
			continue
		}
		collapsed = false
		lastLine = line[9:]
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func hexColumns(chunk []byte) string {
	var sb strings.Builder
	for i, c := range chunk {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

func asciiSidebar(chunk []byte) string {
	out := make([]byte, len(chunk))
	for i, c := range chunk {
		if c >= 0x20 && c < 0x7f {
			out[i] = c
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

func formatOctalDump(data []byte, radix int64, verbose bool) string {
	var sb strings.Builder
	var lastLine string
	collapsed := false
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		body := formatByteRadix(data[off:end], radix)
		line := fmt.Sprintf("%07o %s", off, body)
		if !verbose && body == lastLine {
			if !collapsed {
				sb.WriteString("*\n")
				collapsed = true
			}
			continue
		}
		collapsed = false
		lastLine = body
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// NamedBlockRegistry is the process-wide table of named blocks (§6),
// mapping a user-chosen name to its shared Block handle so multiple
// variables can alias the same backing storage by name.
type NamedBlockRegistry struct {
	blocks map[string]*Ref[Block]
}

// NewNamedBlockRegistry returns an empty registry.
func NewNamedBlockRegistry() *NamedBlockRegistry {
	return &NamedBlockRegistry{blocks: make(map[string]*Ref[Block])}
}

// Lookup finds a previously named block by name.
func (r *NamedBlockRegistry) Lookup(name string) (Ref[Block], bool) {
	ref, ok := r.blocks[name]
	if !ok {
		return Ref[Block]{}, false
	}
	return *ref, true
}

// Create registers a new named block of the given size, replacing any
// prior block under the same name (the old handle stays valid for
// whoever still holds it, per COW semantics).
func (r *NamedBlockRegistry) Create(name string, size int) Ref[Block] {
	ref := NewRef(*NewBlock(size))
	r.blocks[name] = &ref
	return ref
}

// Names returns the registry's names in no particular order.
func (r *NamedBlockRegistry) Names() []string {
	out := make([]string, 0, len(r.blocks))
	for n := range r.blocks {
		out = append(out, n)
	}
	return out
}

// NBlockRef is the NBlock Value body: a name plus the shared Block it
// currently resolves to in some NamedBlockRegistry.
type NBlockRef struct {
	Name  string
	Block Ref[Block]
}

// NewNBlock wraps a named block reference as a Value.
func NewNBlock(name string, block Ref[Block]) Value {
	return Value{Tag: NBlock, Body: &NBlockRef{Name: name, Block: block}}
}
