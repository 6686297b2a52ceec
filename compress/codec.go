// Package compress provides the general-purpose codecs applied to raw-mode
// chunk payloads (format.TypeRaw). Predictive chunks never pass through this
// package; their range-coded output does not benefit from a second
// compression pass.
//
// Unlike a generic compression API, Decompress always receives the exact
// uncompressed size: a raw chunk is pointCount × recordSize bytes by
// construction, so buffers are allocated once with no probing or growth
// loops. A size mismatch after decompression is a corruption signal the
// chunking layer turns into errs.ErrCorruptStream.
package compress

import (
	"fmt"

	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
)

// Codec compresses and decompresses raw chunk payloads.
//
// Implementations are stateless values; any reusable machinery (encoder
// pools) hides behind package-level pools so codecs stay safe for concurrent
// use across parallel chunks.
type Codec interface {
	// Compress compresses data. The returned slice may alias data for the
	// no-op codec.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data into a buffer of exactly uncompressedSize
	// bytes. Output of any other size is an error.
	Decompress(data []byte, uncompressedSize int) ([]byte, error)
}

// ForType returns the codec implementing the given compression type.
func ForType(ct format.CompressionType) (Codec, error) {
	switch ct {
	case format.CompressionNone:
		return NoOpCodec{}, nil
	case format.CompressionZstd:
		return ZstdCodec{}, nil
	case format.CompressionS2:
		return S2Codec{}, nil
	case format.CompressionLZ4:
		return LZ4Codec{}, nil
	default:
		return nil, fmt.Errorf("compression type %d: %w", ct, errs.ErrInvalidConfig)
	}
}

// NoOpCodec passes chunk payloads through unchanged. It backs
// format.CompressionNone and doubles as the baseline for size and speed
// comparisons in tests.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// Compress returns data as-is without copying.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as-is after checking the declared size.
func (c NoOpCodec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) != uncompressedSize {
		return nil, fmt.Errorf("uncompressed chunk is %d bytes, expected %d: %w",
			len(data), uncompressedSize, errs.ErrCorruptStream)
	}

	return data, nil
}
