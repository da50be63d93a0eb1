package buffer

// Content is the backing store of a Buffer. It is a closed sum type:
// the only implementations are Owned and Borrowed.
type Content interface {
	// Bytes returns the full content. Callers must not modify it.
	Bytes() []byte
	// IsOwned reports whether the bytes were produced by this module.
	IsOwned() bool

	sealed()
}

// Owned is content this module allocated, such as transform output.
type Owned []byte

func (o Owned) Bytes() []byte { return o }
func (Owned) IsOwned() bool   { return true }
func (Owned) sealed()         {}

// Borrowed is a read-only view of bytes whose lifetime is managed by
// whoever supplied them, typically the pack loader.
type Borrowed struct {
	view []byte
}

// Borrow wraps loader-supplied bytes without copying them.
func Borrow(view []byte) Borrowed {
	return Borrowed{view: view}
}

func (b Borrowed) Bytes() []byte { return b.view }
func (Borrowed) IsOwned() bool   { return false }
func (Borrowed) sealed()         {}
