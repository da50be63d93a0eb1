// Package buffer provides the seekable in-memory file that stands in for a
// redirected asset.
//
// A Buffer is named after the logical path the game asked for and reads
// from one of two interchangeable backing stores:
//
//	Owned     - bytes produced by this module (for example a patched material)
//	Borrowed  - a read-only view of bytes supplied by the pack loader
//
// Both are accessed through the Content interface, so cursor handling is
// written once:
//
//	buf := buffer.New("assets/renderer/foo.json", buffer.Borrow(data))
//	n, _ := buf.Read(dst)
//	pos, err := buf.Seek(-4, io.SeekEnd)
//
// Seek follows the native asset API rules: the resulting position must lie
// within [0, Len()], otherwise ErrOutOfRange is returned and the cursor does
// not move.
package buffer
