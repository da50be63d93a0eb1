// Package bgfx reads and writes bgfx shader binaries, the per-stage blobs
// embedded in compiled materials.
//
// Layout (little-endian):
//
//	u32   magic   "VSH"/"FSH"/"CSH" followed by a version byte
//	u32   input hash
//	u32   output hash
//	u16   uniform count, then per uniform:
//	        u8 name length, name, u8 type, u8 num, u16 reg index, u16 reg count
//	        [version >= 10] u8 tex component, u8 tex dimension, u16 tex format
//	u32   code size, code, u8 terminator (0)
//	u8    attribute count, u16 per attribute
//	u16   constant buffer size
//
// Parse followed by Encode reproduces the input byte for byte.
package bgfx

import (
	stderrors "errors"
	"fmt"
	"math"

	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/materialbin/internal/binary"
)

// Type is the shader stage encoded in the magic.
type Type uint8

const (
	TypeVertex Type = iota
	TypeFragment
	TypeCompute
)

var typeTags = [...][3]byte{
	TypeVertex:   {'V', 'S', 'H'},
	TypeFragment: {'F', 'S', 'H'},
	TypeCompute:  {'C', 'S', 'H'},
}

func (t Type) String() string {
	if int(t) < len(typeTags) {
		return string(typeTags[t][:])
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Uniform texture metadata grew in two steps: component and dimension
// from texInfoVersion, the texture format from texFormatVersion.
const (
	texInfoVersion   = 8
	texFormatVersion = 10
)

// ErrInvalidMagic is returned for blobs that are not bgfx shaders.
var ErrInvalidMagic = stderrors.New("invalid bgfx shader magic")

// Shader is a decoded bgfx shader binary.
type Shader struct {
	Uniforms     []Uniform
	Code         []byte
	Attributes   []uint16
	InputHash    uint32
	OutputHash   uint32
	ConstantSize uint16
	Type         Type
	Version      uint8
}

// Uniform is one entry of the shader uniform table.
type Uniform struct {
	Name         string
	Type         uint8
	Num          uint8
	RegIndex     uint16
	RegCount     uint16
	TexComponent uint8
	TexDimension uint8
	TexFormat    uint16
}

// Parse decodes a bgfx shader binary.
func Parse(data []byte) (*Shader, error) {
	r := binary.NewReader(data)
	s, err := parse(r)
	if err != nil {
		return nil, errors.ParseFailed("bgfx shader", err)
	}
	return s, nil
}

func parse(r *binary.Reader) (*Shader, error) {
	magic, err := r.ReadBytes(4)
	if err != nil {
		return nil, r.WrapError("header", err)
	}

	s := &Shader{Version: magic[3]}
	found := false
	for t, tag := range typeTags {
		if magic[0] == tag[0] && magic[1] == tag[1] && magic[2] == tag[2] {
			s.Type = Type(t)
			found = true
			break
		}
	}
	if !found {
		return nil, r.WrapError("header", ErrInvalidMagic)
	}

	if s.InputHash, err = r.ReadU32LE(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if s.OutputHash, err = r.ReadU32LE(); err != nil {
		return nil, r.WrapError("header", err)
	}

	count, err := r.ReadU16LE()
	if err != nil {
		return nil, r.WrapError("uniforms", err)
	}
	s.Uniforms = make([]Uniform, 0, count)
	for i := 0; i < int(count); i++ {
		u, err := parseUniform(r, s.Version)
		if err != nil {
			return nil, r.WrapError("uniforms", err)
		}
		s.Uniforms = append(s.Uniforms, u)
	}

	if s.Code, err = r.ReadBlob(); err != nil {
		return nil, r.WrapError("code", err)
	}
	term, err := r.ReadByte()
	if err != nil {
		return nil, r.WrapError("code", err)
	}
	if term != 0 {
		return nil, r.WrapError("code", fmt.Errorf("missing code terminator, got 0x%02x", term))
	}

	attrCount, err := r.ReadByte()
	if err != nil {
		return nil, r.WrapError("attributes", err)
	}
	s.Attributes = make([]uint16, attrCount)
	for i := range s.Attributes {
		if s.Attributes[i], err = r.ReadU16LE(); err != nil {
			return nil, r.WrapError("attributes", err)
		}
	}

	if s.ConstantSize, err = r.ReadU16LE(); err != nil {
		return nil, r.WrapError("constant size", err)
	}
	if err := r.ExpectEnd(); err != nil {
		return nil, r.WrapError("constant size", err)
	}
	return s, nil
}

func parseUniform(r *binary.Reader, version uint8) (Uniform, error) {
	var u Uniform
	var err error

	if u.Name, err = r.ReadShortString(); err != nil {
		return u, err
	}
	if u.Type, err = r.ReadByte(); err != nil {
		return u, err
	}
	if u.Num, err = r.ReadByte(); err != nil {
		return u, err
	}
	if u.RegIndex, err = r.ReadU16LE(); err != nil {
		return u, err
	}
	if u.RegCount, err = r.ReadU16LE(); err != nil {
		return u, err
	}
	if version >= texInfoVersion {
		if u.TexComponent, err = r.ReadByte(); err != nil {
			return u, err
		}
		if u.TexDimension, err = r.ReadByte(); err != nil {
			return u, err
		}
	}
	if version >= texFormatVersion {
		if u.TexFormat, err = r.ReadU16LE(); err != nil {
			return u, err
		}
	}
	return u, nil
}

// Encode serializes the shader.
func (s *Shader) Encode() ([]byte, error) {
	if int(s.Type) >= len(typeTags) {
		return nil, errors.InvalidEnum(errors.PhaseEncode, []string{"type"}, uint8(s.Type), "bgfx.Type")
	}
	if len(s.Uniforms) > math.MaxUint16 {
		return nil, errors.Overflow(errors.PhaseEncode, []string{"uniforms"}, len(s.Uniforms), "u16")
	}
	if len(s.Attributes) > math.MaxUint8 {
		return nil, errors.Overflow(errors.PhaseEncode, []string{"attributes"}, len(s.Attributes), "u8")
	}
	if uint64(len(s.Code)) > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseEncode, []string{"code"}, len(s.Code), "u32")
	}

	w := binary.NewWriterSize(len(s.Code) + 64)

	tag := typeTags[s.Type]
	w.WriteBytes(tag[:])
	w.Byte(s.Version)
	w.WriteU32LE(s.InputHash)
	w.WriteU32LE(s.OutputHash)

	w.WriteU16LE(uint16(len(s.Uniforms)))
	for _, u := range s.Uniforms {
		if len(u.Name) > math.MaxUint8 {
			return nil, errors.Overflow(errors.PhaseEncode, []string{"uniforms", u.Name}, len(u.Name), "u8")
		}
		w.WriteShortString(u.Name)
		w.Byte(u.Type)
		w.Byte(u.Num)
		w.WriteU16LE(u.RegIndex)
		w.WriteU16LE(u.RegCount)
		if s.Version >= texInfoVersion {
			w.Byte(u.TexComponent)
			w.Byte(u.TexDimension)
		}
		if s.Version >= texFormatVersion {
			w.WriteU16LE(u.TexFormat)
		}
	}

	w.WriteBlob(s.Code)
	w.Byte(0)

	w.Byte(byte(len(s.Attributes)))
	for _, a := range s.Attributes {
		w.WriteU16LE(a)
	}
	w.WriteU16LE(s.ConstantSize)

	return w.Bytes(), nil
}
