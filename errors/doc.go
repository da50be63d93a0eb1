// Package errors provides structured error types for the asset redirection layer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the asset path, the material format version involved,
// a field path inside the container, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindInvalidData).
//		Asset("renderer/materials/RenderChunk.material.bin").
//		Version("1.21.110").
//		Path("passes", "Opaque").
//		Detail("unexpected trailer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfRange(errors.PhaseSeek, -4)
//	err := errors.NotFound(errors.PhaseLoad, "pack", path, err)
//
// None of these errors ever cross an intercepted entry point; the hook layer
// turns them into the native sentinel values. All errors implement the
// standard error interface and support errors.Is/As.
package errors
