// Package errs defines the sentinel errors shared across lazpack packages.
//
// Errors fall into two categories:
//
//   - Data errors (ErrCorruptStream): the compressed stream cannot be decoded
//     from the current position onward. Already-decoded chunks remain valid.
//   - Caller errors (ErrInvalidChunkIndex, ErrInvalidPointIndex,
//     ErrUnsupportedPointFormat, ErrConfigurationMismatch): surfaced
//     immediately without side effects, typically at open or seek time.
//
// Callers should use errors.Is to test for these sentinels, since call sites
// wrap them with additional context via fmt.Errorf("...: %w", err).
package errs

import "errors"

var (
	// ErrCorruptStream indicates the compressed byte stream is unusable from
	// the current position: range coder underflow, a chunk whose declared
	// point count does not match its contents, or unexpected end of input.
	ErrCorruptStream = errors.New("corrupt compressed stream")

	// ErrInvalidChunkIndex indicates a chunk index outside the chunk table's
	// declared range.
	ErrInvalidChunkIndex = errors.New("chunk index out of range")

	// ErrInvalidPointIndex indicates a point index outside the stream's
	// declared point count.
	ErrInvalidPointIndex = errors.New("point index out of range")

	// ErrUnsupportedPointFormat indicates a point format id with no codec set.
	ErrUnsupportedPointFormat = errors.New("unsupported point format")

	// ErrConfigurationMismatch indicates the caller-supplied configuration
	// disagrees with what the stream declares (chunk size, extra-byte layout).
	ErrConfigurationMismatch = errors.New("configuration mismatch")

	// ErrInvalidConfig indicates an invalid configuration value at open time.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrWriterClosed indicates a write after Close.
	ErrWriterClosed = errors.New("writer is closed")
)
