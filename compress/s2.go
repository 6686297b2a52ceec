package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/lazpack/errs"
)

// S2Codec applies S2 (Snappy-compatible) compression to raw chunk payloads.
// Middle ground between LZ4 and Zstd for point data.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// Compress compresses data with S2.
func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses an S2 block, verifying the exact uncompressed size.
func (c S2Codec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize == 0 {
		return nil, nil
	}

	buf, err := s2.Decode(make([]byte, uncompressedSize), data)
	if err != nil {
		return nil, fmt.Errorf("s2 chunk decompression failed: %w", errs.ErrCorruptStream)
	}

	if len(buf) != uncompressedSize {
		return nil, fmt.Errorf("s2 chunk decompressed to %d bytes, expected %d: %w",
			len(buf), uncompressedSize, errs.ErrCorruptStream)
	}

	return buf, nil
}
