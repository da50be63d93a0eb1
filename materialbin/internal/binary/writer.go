package binary

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer provides buffered little-endian writing utilities.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// NewWriterSize creates a new Writer with capacity preallocated.
func NewWriterSize(size int) *Writer {
	return &Writer{buf: bytes.NewBuffer(make([]byte, 0, size))}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// Bool writes 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU16LE writes a little-endian uint16.
func (w *Writer) WriteU16LE(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32LE writes a little-endian uint32.
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64LE writes a little-endian uint64.
func (w *Writer) WriteU64LE(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteF32LE writes a little-endian IEEE 754 float32.
func (w *Writer) WriteF32LE(v float32) {
	w.WriteU32LE(math.Float32bits(v))
}

// WriteString writes a u32 length-prefixed string.
func (w *Writer) WriteString(s string) {
	w.WriteU32LE(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteBlob writes a u32 length-prefixed byte sequence.
func (w *Writer) WriteBlob(data []byte) {
	w.WriteU32LE(uint32(len(data)))
	w.buf.Write(data)
}

// WriteShortString writes a u8 length-prefixed string.
// Callers must ensure len(s) <= 255.
func (w *Writer) WriteShortString(s string) {
	w.buf.WriteByte(byte(len(s)))
	w.buf.WriteString(s)
}
