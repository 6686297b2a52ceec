package format

import (
	"fmt"

	"github.com/arloliu/lazpack/errs"
)

// DefaultChunkSize is the number of points per chunk when the caller does not
// configure one. It matches the conventional LAZ chunk size.
const DefaultChunkSize = 50000

// Config fixes the schema and chunking parameters of one compressed stream.
// It is set once at stream open and never changes afterwards; writer and
// reader must agree on every field.
type Config struct {
	// PointFormat is the LAS point data record format id.
	PointFormat PointFormat

	// ExtraByteCount is the number of opaque extra bytes trailing each record.
	ExtraByteCount int

	// ChunkSize is the number of points per chunk. The final chunk of a
	// stream may hold fewer points.
	ChunkSize int

	// Encoding selects predictive (range-coded) or raw chunk payloads.
	Encoding EncodingType

	// Compression selects the codec for raw chunk payloads. Ignored for
	// predictive encoding.
	Compression CompressionType
}

// DefaultConfig returns a Config with the default chunk size, predictive
// encoding and the given point format.
func DefaultConfig(pf PointFormat) Config {
	return Config{
		PointFormat: pf,
		ChunkSize:   DefaultChunkSize,
		Encoding:    TypePredictive,
		Compression: CompressionNone,
	}
}

// RecordSize returns the raw byte size of one record under this config,
// including extra bytes.
func (c Config) RecordSize() int {
	return c.PointFormat.RecordSize() + c.ExtraByteCount
}

// Validate checks the configuration at open time, before any bytes are
// produced or consumed.
//
// Returns:
//   - errs.ErrUnsupportedPointFormat: the point format id has no codec set
//   - errs.ErrInvalidConfig: non-positive chunk size, negative extra-byte
//     count, or an unknown encoding/compression selector
func (c Config) Validate() error {
	if !c.PointFormat.Valid() {
		return fmt.Errorf("point format %d: %w", c.PointFormat, errs.ErrUnsupportedPointFormat)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size %d must be positive: %w", c.ChunkSize, errs.ErrInvalidConfig)
	}

	if c.ExtraByteCount < 0 {
		return fmt.Errorf("extra byte count %d must not be negative: %w", c.ExtraByteCount, errs.ErrInvalidConfig)
	}

	switch c.Encoding {
	case TypePredictive:
		// Predictive chunks are already entropy-coded; a general-purpose
		// compression pass on top is not supported.
		if c.Compression != CompressionNone && c.Compression != 0 {
			return fmt.Errorf("compression %s not applicable to predictive encoding: %w", c.Compression, errs.ErrInvalidConfig)
		}
	case TypeRaw:
		switch c.Compression {
		case CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4:
		default:
			return fmt.Errorf("unknown compression type %d: %w", c.Compression, errs.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown encoding type %d: %w", c.Encoding, errs.ErrInvalidConfig)
	}

	return nil
}
