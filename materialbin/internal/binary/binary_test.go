package binary

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Position() != 3 {
		t.Errorf("final position: got %d, want 3", r.Position())
	}

	_, err := r.ReadByte()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}

	_, err = r.ReadBytes(10)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
	if r.Position() != 3 {
		t.Errorf("failed read moved position to %d", r.Position())
	}
}

func TestReaderFixedWidth(t *testing.T) {
	w := NewWriter()
	w.WriteU16LE(0xBEEF)
	w.WriteU32LE(0xDEADBEEF)
	w.WriteU64LE(0x0A11DA1A)
	w.WriteF32LE(1.5)

	r := NewReader(w.Bytes())
	u16, err := r.ReadU16LE()
	if err != nil || u16 != 0xBEEF {
		t.Fatalf("ReadU16LE = %x %v", u16, err)
	}
	u32, err := r.ReadU32LE()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadU32LE = %x %v", u32, err)
	}
	u64, err := r.ReadU64LE()
	if err != nil || u64 != 0x0A11DA1A {
		t.Fatalf("ReadU64LE = %x %v", u64, err)
	}
	f, err := r.ReadF32LE()
	if err != nil || f != 1.5 {
		t.Fatalf("ReadF32LE = %v %v", f, err)
	}
	if err := r.ExpectEnd(); err != nil {
		t.Fatalf("ExpectEnd: %v", err)
	}
}

func TestWriterLittleEndianLayout(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x04030201)
	if !bytes.Equal(w.Bytes(), []byte{1, 2, 3, 4}) {
		t.Errorf("WriteU32LE layout = %v", w.Bytes())
	}
}

func TestReaderStrings(t *testing.T) {
	w := NewWriter()
	w.WriteString("RenderChunk")
	w.WriteShortString("u_viewRect")
	w.WriteBlob([]byte{9, 8, 7})
	w.WriteString("")

	r := NewReader(w.Bytes())
	s, err := r.ReadString()
	if err != nil || s != "RenderChunk" {
		t.Fatalf("ReadString = %q %v", s, err)
	}
	s, err = r.ReadShortString()
	if err != nil || s != "u_viewRect" {
		t.Fatalf("ReadShortString = %q %v", s, err)
	}
	b, err := r.ReadBlob()
	if err != nil || !bytes.Equal(b, []byte{9, 8, 7}) {
		t.Fatalf("ReadBlob = %v %v", b, err)
	}
	s, err = r.ReadString()
	if err != nil || s != "" {
		t.Fatalf("empty ReadString = %q %v", s, err)
	}
}

func TestReaderStringLengthPastEnd(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(math.MaxUint32)
	w.WriteBytes([]byte("abc"))

	r := NewReader(w.Bytes())
	if _, err := r.ReadString(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReaderBool(t *testing.T) {
	r := NewReader([]byte{0, 1, 2})
	if v, err := r.ReadBool(); err != nil || v {
		t.Fatalf("ReadBool(0) = %v %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool(1) = %v %v", v, err)
	}
	if _, err := r.ReadBool(); err == nil {
		t.Fatal("ReadBool(2) should fail")
	}

	w := NewWriter()
	w.Bool(true)
	w.Bool(false)
	if !bytes.Equal(w.Bytes(), []byte{1, 0}) {
		t.Errorf("Bool writes = %v", w.Bytes())
	}
}

func TestReaderExpectEnd(t *testing.T) {
	r := NewReader([]byte{1, 2})
	r.ReadByte()
	if err := r.ExpectEnd(); err == nil {
		t.Fatal("ExpectEnd should report trailing bytes")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestParseError(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	r.ReadBytes(2)

	cause := errors.New("bad magic")
	err := r.WrapError("header", cause)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Position != 2 || pe.Section != "header" {
		t.Errorf("ParseError = %+v", pe)
	}
	if !errors.Is(err, cause) {
		t.Error("ParseError should unwrap to cause")
	}
	if got := err.Error(); got != "materialbin: header at position 2: bad magic" {
		t.Errorf("Error() = %q", got)
	}

	plain := (&ParseError{Position: 5, Err: cause}).Error()
	if plain != "materialbin: at position 5: bad magic" {
		t.Errorf("Error() without section = %q", plain)
	}
}

func TestWriterSize(t *testing.T) {
	w := NewWriterSize(128)
	if w.Len() != 0 {
		t.Fatalf("Len = %d", w.Len())
	}
	w.Byte(0xFF)
	if w.Len() != 1 || w.Bytes()[0] != 0xFF {
		t.Errorf("Byte write = %v", w.Bytes())
	}
}
