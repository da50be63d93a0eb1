package materialbin

import (
	"math"

	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/materialbin/internal/binary"
)

// Encode serializes the material using the layout of version v.
// Fields the layout lacks are dropped; fields the material was parsed
// without are written with zero defaults.
func (m *Material) Encode(v Version) ([]byte, error) {
	if !v.Valid() {
		return nil, errors.InvalidEnum(errors.PhaseEncode, nil, uint8(v), "Version")
	}
	if len(m.Samplers) > math.MaxUint8 {
		return nil, errors.Overflow(errors.PhaseEncode, []string{"samplers"}, len(m.Samplers), "u8")
	}
	if len(m.Properties) > math.MaxUint16 {
		return nil, errors.Overflow(errors.PhaseEncode, []string{"properties"}, len(m.Properties), "u16")
	}
	if len(m.UniformOverrides) > math.MaxUint16 {
		return nil, errors.Overflow(errors.PhaseEncode, []string{"uniform_overrides"}, len(m.UniformOverrides), "u16")
	}
	if len(m.Passes) > math.MaxUint16 {
		return nil, errors.Overflow(errors.PhaseEncode, []string{"passes"}, len(m.Passes), "u16")
	}

	w := binary.NewWriter()

	w.WriteU64LE(Magic)
	w.WriteString(DefinitionName)
	w.WriteU64LE(v.formatVersion())
	w.WriteU32LE(uint32(EncryptionNone))

	w.WriteString(m.Name)
	w.Bool(m.HasParent)
	if m.HasParent {
		w.WriteString(m.ParentName)
	}

	w.Byte(byte(len(m.Samplers)))
	for _, s := range m.Samplers {
		writeSampler(w, s, v)
	}

	w.WriteU16LE(uint16(len(m.Properties)))
	for _, p := range m.Properties {
		if err := writeProperty(w, p); err != nil {
			return nil, err
		}
	}

	if v.hasUniformOverrides() {
		w.WriteU16LE(uint16(len(m.UniformOverrides)))
		for _, o := range m.UniformOverrides {
			w.WriteString(o.Name)
			w.WriteString(o.Value)
		}
	}

	w.WriteU16LE(uint16(len(m.Passes)))
	for _, p := range m.Passes {
		if err := writePass(w, p, v); err != nil {
			return nil, err
		}
	}

	w.WriteU64LE(Magic)
	return w.Bytes(), nil
}

func writeSampler(w *binary.Writer, s SamplerDefinition, v Version) {
	w.WriteString(s.Name)
	w.WriteU16LE(s.Register)
	w.Byte(s.Access)
	w.Byte(s.Precision)
	w.Byte(s.AllowUnorderedAccess)
	w.Byte(s.Type)
	w.WriteString(s.TextureFormat)
	w.WriteU32LE(s.Unknown)
	w.Byte(s.UnknownByte)

	if v.hasSamplerState() {
		w.Bool(s.HasSamplerState)
		if s.HasSamplerState {
			w.Byte(s.Filter)
			w.Byte(s.Wrapping)
		}
	}

	w.Bool(s.HasDefaultTexture)
	if s.HasDefaultTexture {
		w.WriteString(s.DefaultTexture)
	}

	w.Bool(s.HasCustomType)
	if s.HasCustomType {
		w.WriteString(s.CustomTypeName)
		w.WriteU32LE(s.CustomTypeSize)
	}

	if v.hasSamplerArraySize() {
		w.WriteU32LE(s.ArraySize)
	}
}

func writeProperty(w *binary.Writer, p PropertyField) error {
	w.WriteString(p.Name)
	w.WriteU16LE(uint16(p.Type))
	w.WriteU32LE(p.Count)

	n := p.Type.components()
	if n == 0 {
		return nil
	}
	w.Bool(p.HasData)
	if p.HasData {
		if len(p.Data) != n {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path("properties", p.Name).
				Detail("%s expects %d components, have %d", p.Type, n, len(p.Data)).
				Build()
		}
		for _, f := range p.Data {
			w.WriteF32LE(f)
		}
	}
	return nil
}

func writeFlags(w *binary.Writer, flags []Flag, path ...string) error {
	if len(flags) > math.MaxUint16 {
		return errors.Overflow(errors.PhaseEncode, path, len(flags), "u16")
	}
	w.WriteU16LE(uint16(len(flags)))
	for _, f := range flags {
		w.WriteString(f.Name)
		w.WriteString(f.Value)
	}
	return nil
}

func writePass(w *binary.Writer, p Pass, v Version) error {
	w.WriteString(p.Name)
	w.WriteString(p.PlatformSupport)
	w.WriteString(p.FallbackPass)
	w.Bool(p.HasDefaultBlendMode)
	if p.HasDefaultBlendMode {
		w.WriteU16LE(p.DefaultBlendMode)
	}
	if err := writeFlags(w, p.DefaultFlags, "passes", p.Name, "default_flags"); err != nil {
		return err
	}

	if len(p.Variants) > math.MaxUint16 {
		return errors.Overflow(errors.PhaseEncode, []string{"passes", p.Name, "variants"}, len(p.Variants), "u16")
	}
	w.WriteU16LE(uint16(len(p.Variants)))
	for _, vr := range p.Variants {
		w.Bool(vr.Supported)
		if err := writeFlags(w, vr.Flags, "passes", p.Name, "flags"); err != nil {
			return err
		}
		if len(vr.Shaders) > math.MaxUint16 {
			return errors.Overflow(errors.PhaseEncode, []string{"passes", p.Name, "shaders"}, len(vr.Shaders), "u16")
		}
		w.WriteU16LE(uint16(len(vr.Shaders)))
		for _, s := range vr.Shaders {
			if err := writeShader(w, s, v, p.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeShader(w *binary.Writer, s Shader, v Version, pass string) error {
	w.WriteString(s.Key.StageName)
	w.WriteString(s.Key.PlatformName)
	w.Byte(byte(s.Key.Stage))
	w.Byte(byte(s.Key.Platform))

	if len(s.Inputs) > math.MaxUint16 {
		return errors.Overflow(errors.PhaseEncode, []string{"passes", pass, "inputs"}, len(s.Inputs), "u16")
	}
	w.WriteU16LE(uint16(len(s.Inputs)))
	for _, in := range s.Inputs {
		w.WriteString(in.Name)
		w.Byte(in.Type)
		w.Byte(in.Attribute)
		w.Byte(in.SubIndex)
		w.Bool(in.PerInstance)
		if v.hasInputQualifiers() {
			w.Bool(in.HasPrecision)
			if in.HasPrecision {
				w.Byte(in.Precision)
			}
			w.Bool(in.HasInterpolation)
			if in.HasInterpolation {
				w.Byte(in.Interpolation)
			}
		}
	}

	w.WriteU64LE(s.SourceHash)
	if uint64(len(s.Blob)) > math.MaxUint32 {
		return errors.Overflow(errors.PhaseEncode, []string{"passes", pass, "blob"}, len(s.Blob), "u32")
	}
	w.WriteBlob(s.Blob)
	return nil
}
