package buffer

import (
	"io"
	"math"
	"sync"

	"github.com/wippyai/asset-redirect/errors"
)

// ErrOutOfRange matches (via errors.Is) every seek that would leave the
// cursor outside [0, Len()].
var ErrOutOfRange = &errors.Error{Phase: errors.PhaseSeek, Kind: errors.KindOutOfRange}

// Buffer is a named, seekable reader over a Content.
// It is safe for concurrent use.
type Buffer struct {
	content Content
	name    string
	cursor  int64
	mu      sync.Mutex
}

// New creates a buffer positioned at offset zero.
func New(name string, content Content) *Buffer {
	return &Buffer{name: name, content: content}
}

// Name returns the logical path the buffer was opened as.
func (b *Buffer) Name() string {
	return b.name
}

// Content returns the backing store.
func (b *Buffer) Content() Content {
	return b.content
}

// Bytes returns the whole content regardless of the cursor.
func (b *Buffer) Bytes() []byte {
	return b.content.Bytes()
}

// Read copies up to len(dst) bytes from the cursor and advances it.
// Short reads are not errors; io.EOF is only returned when nothing is
// left and dst is non-empty.
func (b *Buffer) Read(dst []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := b.content.Bytes()
	if b.cursor >= int64(len(data)) {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(dst, data[b.cursor:])
	b.cursor += int64(n)
	return n, nil
}

// Seek moves the cursor. whence is one of io.SeekStart, io.SeekCurrent or
// io.SeekEnd. On failure the cursor is left unchanged.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := int64(len(b.content.Bytes()))

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = b.cursor
	case io.SeekEnd:
		base = size
	default:
		return 0, errors.InvalidInput(errors.PhaseSeek, "unknown seek origin")
	}

	if (offset > 0 && base > math.MaxInt64-offset) || (offset < 0 && base < math.MinInt64-offset) {
		return 0, errors.New(errors.PhaseSeek, errors.KindOutOfRange).
			Value(offset).
			Detail("offset %d from %d overflows int64", offset, base).
			Build()
	}
	pos := base + offset
	if pos < 0 || pos > size {
		return 0, errors.OutOfRange(errors.PhaseSeek, pos)
	}

	b.cursor = pos
	return pos, nil
}

// Len returns the total content length.
func (b *Buffer) Len() int64 {
	return int64(len(b.content.Bytes()))
}

// Remaining returns the number of bytes between the cursor and the end.
func (b *Buffer) Remaining() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.content.Bytes())) - b.cursor
}

// Position returns the cursor.
func (b *Buffer) Position() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// Rewind resets the cursor to zero. A cached buffer must be rewound before
// it is handed to a new reader.
func (b *Buffer) Rewind() {
	b.mu.Lock()
	b.cursor = 0
	b.mu.Unlock()
}
