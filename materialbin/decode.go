package materialbin

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/materialbin/internal/binary"
)

// Parsing errors returned by Parse.
var (
	ErrInvalidMagic      = stderrors.New("invalid material magic")
	ErrInvalidDefinition = stderrors.New("invalid definition name")
	ErrFormatVersion     = stderrors.New("format version does not match layout")
)

// ErrEncrypted rejects SMPL and KYPR containers; decryption is not supported.
var ErrEncrypted = errors.Unsupported(errors.PhaseParse, "encrypted materials")

// Parse decodes data using the layout of version v. The whole input must
// be consumed; a material written for a different layout fails to parse.
func Parse(data []byte, v Version) (*Material, error) {
	if !v.Valid() {
		return nil, errors.InvalidEnum(errors.PhaseParse, nil, uint8(v), "Version")
	}

	r := binary.NewReader(data)
	m, err := parseMaterial(r, v)
	if err != nil {
		kind := errors.KindInvalidData
		if stderrors.Is(err, ErrEncrypted) {
			kind = errors.KindUnsupported
		}
		return nil, errors.New(errors.PhaseParse, kind).
			Version(v.String()).
			Cause(err).
			Detail("parse material").
			Build()
	}
	return m, nil
}

func parseMaterial(r *binary.Reader, v Version) (*Material, error) {
	magic, err := r.ReadU64LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, r.WrapError("header", ErrInvalidMagic)
	}

	def, err := r.ReadString()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if def != DefinitionName {
		return nil, r.WrapError("header", ErrInvalidDefinition)
	}

	format, err := r.ReadU64LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if format != v.formatVersion() {
		return nil, r.WrapError("header", fmt.Errorf("%w: got %d, want %d", ErrFormatVersion, format, v.formatVersion()))
	}

	enc, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if Encryption(enc) != EncryptionNone {
		return nil, r.WrapError("header", fmt.Errorf("%w: %s", ErrEncrypted, Encryption(enc)))
	}

	m := &Material{}
	if m.Name, err = r.ReadString(); err != nil {
		return nil, r.WrapError("name", err)
	}
	if m.HasParent, err = r.ReadBool(); err != nil {
		return nil, r.WrapError("parent", err)
	}
	if m.HasParent {
		if m.ParentName, err = r.ReadString(); err != nil {
			return nil, r.WrapError("parent", err)
		}
	}

	samplerCount, err := r.ReadByte()
	if err != nil {
		return nil, r.WrapError("samplers", err)
	}
	m.Samplers = make([]SamplerDefinition, 0, samplerCount)
	for i := 0; i < int(samplerCount); i++ {
		s, err := parseSampler(r, v)
		if err != nil {
			return nil, r.WrapError("samplers", err)
		}
		m.Samplers = append(m.Samplers, s)
	}

	propCount, err := r.ReadU16LE()
	if err != nil {
		return nil, r.WrapError("properties", err)
	}
	m.Properties = make([]PropertyField, 0, propCount)
	for i := 0; i < int(propCount); i++ {
		p, err := parseProperty(r)
		if err != nil {
			return nil, r.WrapError("properties", err)
		}
		m.Properties = append(m.Properties, p)
	}

	if v.hasUniformOverrides() {
		count, err := r.ReadU16LE()
		if err != nil {
			return nil, r.WrapError("uniform overrides", err)
		}
		m.UniformOverrides = make([]UniformOverride, 0, count)
		for i := 0; i < int(count); i++ {
			var o UniformOverride
			if o.Name, err = r.ReadString(); err != nil {
				return nil, r.WrapError("uniform overrides", err)
			}
			if o.Value, err = r.ReadString(); err != nil {
				return nil, r.WrapError("uniform overrides", err)
			}
			m.UniformOverrides = append(m.UniformOverrides, o)
		}
	}

	passCount, err := r.ReadU16LE()
	if err != nil {
		return nil, r.WrapError("passes", err)
	}
	m.Passes = make([]Pass, 0, passCount)
	for i := 0; i < int(passCount); i++ {
		p, err := parsePass(r, v)
		if err != nil {
			return nil, r.WrapError("passes", err)
		}
		m.Passes = append(m.Passes, p)
	}

	trailer, err := r.ReadU64LE()
	if err != nil {
		return nil, r.WrapError("trailer", err)
	}
	if trailer != Magic {
		return nil, r.WrapError("trailer", ErrInvalidMagic)
	}
	if err := r.ExpectEnd(); err != nil {
		return nil, r.WrapError("trailer", err)
	}

	return m, nil
}

func parseSampler(r *binary.Reader, v Version) (SamplerDefinition, error) {
	var s SamplerDefinition
	var err error

	if s.Name, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.Register, err = r.ReadU16LE(); err != nil {
		return s, err
	}
	if s.Access, err = r.ReadByte(); err != nil {
		return s, err
	}
	if s.Precision, err = r.ReadByte(); err != nil {
		return s, err
	}
	if s.AllowUnorderedAccess, err = r.ReadByte(); err != nil {
		return s, err
	}
	if s.Type, err = r.ReadByte(); err != nil {
		return s, err
	}
	if s.TextureFormat, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.Unknown, err = r.ReadU32LE(); err != nil {
		return s, err
	}
	if s.UnknownByte, err = r.ReadByte(); err != nil {
		return s, err
	}

	if v.hasSamplerState() {
		if s.HasSamplerState, err = r.ReadBool(); err != nil {
			return s, err
		}
		if s.HasSamplerState {
			if s.Filter, err = r.ReadByte(); err != nil {
				return s, err
			}
			if s.Wrapping, err = r.ReadByte(); err != nil {
				return s, err
			}
		}
	}

	if s.HasDefaultTexture, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.HasDefaultTexture {
		if s.DefaultTexture, err = r.ReadString(); err != nil {
			return s, err
		}
	}

	if s.HasCustomType, err = r.ReadBool(); err != nil {
		return s, err
	}
	if s.HasCustomType {
		if s.CustomTypeName, err = r.ReadString(); err != nil {
			return s, err
		}
		if s.CustomTypeSize, err = r.ReadU32LE(); err != nil {
			return s, err
		}
	}

	if v.hasSamplerArraySize() {
		if s.ArraySize, err = r.ReadU32LE(); err != nil {
			return s, err
		}
	}

	return s, nil
}

func parseProperty(r *binary.Reader) (PropertyField, error) {
	var p PropertyField
	var err error

	if p.Name, err = r.ReadString(); err != nil {
		return p, err
	}
	typ, err := r.ReadU16LE()
	if err != nil {
		return p, err
	}
	p.Type = PropertyType(typ)
	if p.Type > PropertyExternal {
		return p, errors.InvalidData(errors.PhaseParse, []string{p.Name, "type"}, fmt.Sprintf("unknown property type %d", typ))
	}
	if p.Count, err = r.ReadU32LE(); err != nil {
		return p, err
	}

	n := p.Type.components()
	if n == 0 {
		return p, nil
	}
	if p.HasData, err = r.ReadBool(); err != nil {
		return p, err
	}
	if p.HasData {
		p.Data = make([]float32, n)
		for i := range p.Data {
			if p.Data[i], err = r.ReadF32LE(); err != nil {
				return p, err
			}
		}
	}
	return p, nil
}

func parseFlags(r *binary.Reader) ([]Flag, error) {
	count, err := r.ReadU16LE()
	if err != nil {
		return nil, err
	}
	flags := make([]Flag, 0, count)
	for i := 0; i < int(count); i++ {
		var f Flag
		if f.Name, err = r.ReadString(); err != nil {
			return nil, err
		}
		if f.Value, err = r.ReadString(); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}

func parsePass(r *binary.Reader, v Version) (Pass, error) {
	var p Pass
	var err error

	if p.Name, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.PlatformSupport, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.FallbackPass, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.HasDefaultBlendMode, err = r.ReadBool(); err != nil {
		return p, err
	}
	if p.HasDefaultBlendMode {
		if p.DefaultBlendMode, err = r.ReadU16LE(); err != nil {
			return p, err
		}
	}
	if p.DefaultFlags, err = parseFlags(r); err != nil {
		return p, err
	}

	count, err := r.ReadU16LE()
	if err != nil {
		return p, err
	}
	p.Variants = make([]Variant, 0, count)
	for i := 0; i < int(count); i++ {
		variant, err := parseVariant(r, v)
		if err != nil {
			return p, fmt.Errorf("pass %q variant %d: %w", p.Name, i, err)
		}
		p.Variants = append(p.Variants, variant)
	}
	return p, nil
}

func parseVariant(r *binary.Reader, v Version) (Variant, error) {
	var vr Variant
	var err error

	if vr.Supported, err = r.ReadBool(); err != nil {
		return vr, err
	}
	if vr.Flags, err = parseFlags(r); err != nil {
		return vr, err
	}

	count, err := r.ReadU16LE()
	if err != nil {
		return vr, err
	}
	vr.Shaders = make([]Shader, 0, count)
	for i := 0; i < int(count); i++ {
		s, err := parseShader(r, v)
		if err != nil {
			return vr, err
		}
		vr.Shaders = append(vr.Shaders, s)
	}
	return vr, nil
}

func parseShader(r *binary.Reader, v Version) (Shader, error) {
	var s Shader
	var err error

	if s.Key.StageName, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.Key.PlatformName, err = r.ReadString(); err != nil {
		return s, err
	}
	stage, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	if ShaderStage(stage) > StageUnknown {
		return s, errors.InvalidData(errors.PhaseParse, []string{s.Key.StageName, "stage"}, fmt.Sprintf("unknown shader stage %d", stage))
	}
	s.Key.Stage = ShaderStage(stage)
	platform, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	if Platform(platform) >= platformCount {
		return s, errors.InvalidData(errors.PhaseParse, []string{s.Key.PlatformName, "platform"}, fmt.Sprintf("unknown shader platform %d", platform))
	}
	s.Key.Platform = Platform(platform)

	inputCount, err := r.ReadU16LE()
	if err != nil {
		return s, err
	}
	s.Inputs = make([]ShaderInput, 0, inputCount)
	for i := 0; i < int(inputCount); i++ {
		in, err := parseInput(r, v)
		if err != nil {
			return s, err
		}
		s.Inputs = append(s.Inputs, in)
	}

	if s.SourceHash, err = r.ReadU64LE(); err != nil {
		return s, err
	}
	if s.Blob, err = r.ReadBlob(); err != nil {
		return s, err
	}
	return s, nil
}

func parseInput(r *binary.Reader, v Version) (ShaderInput, error) {
	var in ShaderInput
	var err error

	if in.Name, err = r.ReadString(); err != nil {
		return in, err
	}
	if in.Type, err = r.ReadByte(); err != nil {
		return in, err
	}
	if in.Attribute, err = r.ReadByte(); err != nil {
		return in, err
	}
	if in.SubIndex, err = r.ReadByte(); err != nil {
		return in, err
	}
	if in.PerInstance, err = r.ReadBool(); err != nil {
		return in, err
	}

	if v.hasInputQualifiers() {
		if in.HasPrecision, err = r.ReadBool(); err != nil {
			return in, err
		}
		if in.HasPrecision {
			if in.Precision, err = r.ReadByte(); err != nil {
				return in, err
			}
		}
		if in.HasInterpolation, err = r.ReadBool(); err != nil {
			return in, err
		}
		if in.HasInterpolation {
			if in.Interpolation, err = r.ReadByte(); err != nil {
				return in, err
			}
		}
	}
	return in, nil
}
