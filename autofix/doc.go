// Package autofix makes compiled materials built for one client release
// render on another.
//
// A Detector probes a built-in material once per process to learn the
// running client's layout version and whether its shaders carry the
// dithering feature. A Transformer then parses every material served
// from a resource pack, applies the lightmap and sampler fixes where they
// are needed, and re-encodes the result under the running client's
// layout. A material that needs nothing is passed through unchanged.
package autofix
