//go:build gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"

	"github.com/arloliu/lazpack/errs"
)

// Compress compresses data with libzstd at the default level.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses a Zstd frame, verifying the exact uncompressed size.
func (c ZstdCodec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize == 0 {
		return nil, nil
	}

	buf, err := gozstd.Decompress(make([]byte, 0, uncompressedSize), data)
	if err != nil {
		return nil, fmt.Errorf("zstd chunk decompression failed: %w", errs.ErrCorruptStream)
	}

	if len(buf) != uncompressedSize {
		return nil, fmt.Errorf("zstd chunk decompressed to %d bytes, expected %d: %w",
			len(buf), uncompressedSize, errs.ErrCorruptStream)
	}

	return buf, nil
}
