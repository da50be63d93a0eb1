package materialbin

import "fmt"

// Magic opens and closes every compiled material.
const Magic uint64 = 0x0A11DA1A

// DefinitionName follows the leading magic.
const DefinitionName = "RenderDragon.CompiledMaterialDefinition"

// Encryption is the four-character code naming the payload encryption.
type Encryption uint32

const (
	EncryptionNone    Encryption = 0x454E4F4E // "NONE"
	EncryptionSimple  Encryption = 0x4C504D53 // "SMPL"
	EncryptionKeyPair Encryption = 0x5250594B // "KYPR"
)

func (e Encryption) String() string {
	b := [4]byte{byte(e), byte(e >> 8), byte(e >> 16), byte(e >> 24)}
	return string(b[:])
}

// Material is a parsed compiled material definition.
// Ordered sections keep their on-disk order so re-encoding is exact.
type Material struct {
	Name             string
	ParentName       string
	HasParent        bool
	Samplers         []SamplerDefinition
	Properties       []PropertyField
	UniformOverrides []UniformOverride
	Passes           []Pass
}

// Pass looks up a pass by name.
func (m *Material) Pass(name string) *Pass {
	for i := range m.Passes {
		if m.Passes[i].Name == name {
			return &m.Passes[i]
		}
	}
	return nil
}

// SamplerDefinition describes one texture binding.
type SamplerDefinition struct {
	Name                 string
	TextureFormat        string
	DefaultTexture       string
	CustomTypeName       string
	Register             uint16
	Access               uint8
	Precision            uint8
	AllowUnorderedAccess uint8
	Type                 uint8
	Unknown              uint32
	UnknownByte          uint8
	HasSamplerState      bool
	Filter               uint8
	Wrapping             uint8
	HasDefaultTexture    bool
	HasCustomType        bool
	CustomTypeSize       uint32
	ArraySize            uint32
}

// PropertyType is the kind of a material uniform property.
type PropertyType uint16

const (
	PropertyVec4 PropertyType = iota
	PropertyMat3
	PropertyMat4
	PropertyExternal
)

func (p PropertyType) components() int {
	switch p {
	case PropertyVec4:
		return 4
	case PropertyMat3:
		return 9
	case PropertyMat4:
		return 16
	default:
		return 0
	}
}

func (p PropertyType) String() string {
	switch p {
	case PropertyVec4:
		return "vec4"
	case PropertyMat3:
		return "mat3"
	case PropertyMat4:
		return "mat4"
	case PropertyExternal:
		return "external"
	default:
		return fmt.Sprintf("property(%d)", uint16(p))
	}
}

// PropertyField is a uniform declared by the material.
type PropertyField struct {
	Name    string
	Type    PropertyType
	Count   uint32
	HasData bool
	Data    []float32
}

// UniformOverride renames or rebinds a uniform.
type UniformOverride struct {
	Name  string
	Value string
}

// Flag is a name/value pair used for pass defaults and variant keys.
type Flag struct {
	Name  string
	Value string
}

// Pass is a named render pass with its shader variants.
type Pass struct {
	Name                string
	PlatformSupport     string
	FallbackPass        string
	HasDefaultBlendMode bool
	DefaultBlendMode    uint16
	DefaultFlags        []Flag
	Variants            []Variant
}

// Variant is one flag permutation of a pass.
type Variant struct {
	Supported bool
	Flags     []Flag
	Shaders   []Shader
}

// ShaderStage identifies the pipeline stage of a shader.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
	StageUnknown
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "Vertex"
	case StageFragment:
		return "Fragment"
	case StageCompute:
		return "Compute"
	case StageUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Platform identifies the shader backend a blob was compiled for.
type Platform uint8

const (
	PlatformDirect3DSM40 Platform = iota
	PlatformDirect3DSM50
	PlatformDirect3DSM60
	PlatformDirect3DSM65
	PlatformGLSL120
	PlatformGLSL430
	PlatformESSL100
	PlatformESSL300
	PlatformESSL310
	PlatformMetal
	PlatformVulkan
	PlatformNvn
	PlatformPssl
	platformCount
)

var platformNames = [...]string{
	"Direct3D_SM40", "Direct3D_SM50", "Direct3D_SM60", "Direct3D_SM65",
	"GLSL_120", "GLSL_430", "ESSL_100", "ESSL_300", "ESSL_310",
	"Metal", "Vulkan", "Nvn", "PSSL",
}

func (p Platform) String() string {
	if p < platformCount {
		return platformNames[p]
	}
	return fmt.Sprintf("platform(%d)", uint8(p))
}

// ShaderKey identifies a shader blob within a variant.
type ShaderKey struct {
	StageName    string
	PlatformName string
	Stage        ShaderStage
	Platform     Platform
}

// Shader is a compiled shader blob with its vertex inputs.
type Shader struct {
	Key        ShaderKey
	Inputs     []ShaderInput
	SourceHash uint64
	// Blob is the bgfx shader binary; see package bgfx.
	Blob []byte
}

// ShaderInput describes one vertex attribute consumed by a shader.
type ShaderInput struct {
	Name             string
	Type             uint8
	Attribute        uint8
	SubIndex         uint8
	PerInstance      bool
	HasPrecision     bool
	Precision        uint8
	HasInterpolation bool
	Interpolation    uint8
}
