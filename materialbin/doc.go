// Package materialbin reads and writes compiled RenderDragon material files
// (".material.bin").
//
// A material is a hierarchy: the container holds samplers, properties and
// named passes; each pass holds variants; each variant holds one compiled
// shader blob per stage and platform. The blob itself is a bgfx shader
// binary, handled by package bgfx.
//
// # Versions
//
// The on-disk layout changed across client releases. Every supported
// release is a Version, and both directions take one explicitly:
//
//	m, err := materialbin.Parse(data, materialbin.V1_19_60)
//	out, err := m.Encode(materialbin.V1_21_110)
//
// Parsing is strict (header, trailer and full consumption are checked), so
// the layout a file was written with can be detected by trying versions in
// turn:
//
//	v, m, err := materialbin.Probe(data)
//
// # Round Trip
//
// Parse followed by Encode under the same version reproduces the input
// byte for byte. Encoding under a different version converts the layout:
// fields the target lacks are dropped and fields the source lacked are
// written as zero.
package materialbin
