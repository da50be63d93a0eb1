// Package materialtest builds compiled materials for tests.
package materialtest

import (
	"github.com/wippyai/asset-redirect/materialbin"
	"github.com/wippyai/asset-redirect/materialbin/bgfx"
)

// Shader sources used by the fixtures. Both contain "void main ()".
const (
	VertexCode = "attribute vec4 a_position;\n" +
		"attribute vec2 a_texcoord1;\n" +
		"varying vec2 v_lightmapUV;\n" +
		"void main ()\n{\n  v_lightmapUV = a_texcoord1;\n  gl_Position = a_position;\n}\n"
	FragmentCode = "uniform sampler2D s_MatTexture;\n" +
		"varying vec2 v_texcoord0;\n" +
		"void main ()\n{\n  gl_FragColor = texture2D(s_MatTexture, v_texcoord0);\n}\n"
)

// Blob encodes a bgfx shader around code. It panics on failure.
func Blob(typ bgfx.Type, code string) []byte {
	s := &bgfx.Shader{
		Type:       typ,
		Version:    11,
		InputHash:  0xCAFEBABE,
		OutputHash: 0x0BADF00D,
		Uniforms: []bgfx.Uniform{
			{Name: "u_viewRect", Type: 2, Num: 1, RegCount: 1},
			{Name: "s_MatTexture", Type: 0x10, Num: 1, RegIndex: 1, RegCount: 1, TexComponent: 1, TexDimension: 2},
		},
		Code:         []byte(code),
		Attributes:   []uint16{0x0001, 0x0011},
		ConstantSize: 32,
	}
	data, err := s.Encode()
	if err != nil {
		panic(err)
	}
	return data
}

func shader(stage materialbin.ShaderStage, platform materialbin.Platform) materialbin.Shader {
	typ, code := bgfx.TypeVertex, VertexCode
	if stage == materialbin.StageFragment {
		typ, code = bgfx.TypeFragment, FragmentCode
	}
	return materialbin.Shader{
		Key: materialbin.ShaderKey{
			StageName:    stage.String(),
			PlatformName: platform.String(),
			Stage:        stage,
			Platform:     platform,
		},
		Inputs: []materialbin.ShaderInput{
			{Name: "a_position", Type: 3, Attribute: 0, HasPrecision: true, Precision: 2},
			{Name: "a_texcoord1", Type: 2, Attribute: 10, HasInterpolation: true, Interpolation: 1},
		},
		SourceHash: 0x1234_5678_9ABC_DEF0,
		Blob:       Blob(typ, code),
	}
}

func variant() materialbin.Variant {
	return materialbin.Variant{
		Supported: true,
		Flags:     []materialbin.Flag{{Name: "Fog", Value: "On"}},
		Shaders: []materialbin.Shader{
			shader(materialbin.StageVertex, materialbin.PlatformESSL100),
			shader(materialbin.StageFragment, materialbin.PlatformESSL100),
			shader(materialbin.StageVertex, materialbin.PlatformESSL300),
			shader(materialbin.StageFragment, materialbin.PlatformESSL300),
		},
	}
}

// Material returns a material with three passes ("Opaque", "AlphaTest",
// "Transparent"), each with one variant holding vertex and fragment
// shaders for ESSL_100 and ESSL_300.
func Material(name string) *materialbin.Material {
	m := &materialbin.Material{
		Name: name,
		Samplers: []materialbin.SamplerDefinition{
			{
				Name: "s_MatTexture", Register: 0, Access: 1, Precision: 2, Type: 1,
				TextureFormat: "RGBA8", HasSamplerState: true, Filter: 1, Wrapping: 2,
				HasDefaultTexture: true, DefaultTexture: "textures/blocks/stone",
			},
			{
				Name: "s_LightMapTexture", Register: 1, Access: 1, Type: 1,
				TextureFormat: "RGBA8", HasCustomType: true, CustomTypeName: "LightMap", CustomTypeSize: 16,
			},
		},
		Properties: []materialbin.PropertyField{
			{Name: "FogColor", Type: materialbin.PropertyVec4, Count: 1, HasData: true, Data: []float32{0.5, 0.6, 0.7, 1}},
			{Name: "World", Type: materialbin.PropertyMat4, Count: 1},
			{Name: "LightData", Type: materialbin.PropertyExternal, Count: 2},
		},
		UniformOverrides: []materialbin.UniformOverride{{Name: "u_renderChunk", Value: "RenderChunk"}},
	}
	for _, pass := range []string{"Opaque", "AlphaTest", "Transparent"} {
		m.Passes = append(m.Passes, materialbin.Pass{
			Name:                pass,
			PlatformSupport:     "1111111111111",
			HasDefaultBlendMode: pass == "Transparent",
			DefaultBlendMode:    3,
			DefaultFlags:        []materialbin.Flag{{Name: "Fog", Value: "Off"}},
			Variants:            []materialbin.Variant{variant()},
		})
	}
	return m
}

// Downgrade clears the fields that v cannot represent so that Encode then
// Parse under v yields an equal material.
func Downgrade(m *materialbin.Material, v materialbin.Version) *materialbin.Material {
	if v < materialbin.V1_19_60 {
		for i := range m.Samplers {
			m.Samplers[i].HasSamplerState = false
			m.Samplers[i].Filter = 0
			m.Samplers[i].Wrapping = 0
		}
	}
	if v < materialbin.V1_20_80 {
		for pi := range m.Passes {
			for vi := range m.Passes[pi].Variants {
				shaders := m.Passes[pi].Variants[vi].Shaders
				for si := range shaders {
					for ii := range shaders[si].Inputs {
						in := &shaders[si].Inputs[ii]
						in.HasPrecision, in.Precision = false, 0
						in.HasInterpolation, in.Interpolation = false, 0
					}
				}
			}
		}
	}
	if v < materialbin.V1_21_20 {
		m.UniformOverrides = nil
	}
	if v < materialbin.V1_21_110 {
		for i := range m.Samplers {
			m.Samplers[i].ArraySize = 0
		}
	}
	return m
}

// Encode builds Material(name) and encodes it under v. It panics on failure.
func Encode(name string, v materialbin.Version) []byte {
	data, err := Material(name).Encode(v)
	if err != nil {
		panic(err)
	}
	return data
}
