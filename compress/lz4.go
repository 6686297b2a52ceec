package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/lazpack/errs"
)

// lz4CompressorPool pools lz4.Compressor instances; the compressor keeps an
// internal hash table that benefits from reuse across chunks.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4 block payloads carry a one-byte tag: CompressBlock signals
// incompressible input by returning zero bytes, so such chunks are stored
// verbatim and the tag tells the two cases apart.
const (
	lz4TagStored     = 0x0
	lz4TagCompressed = 0x1
)

// LZ4Codec applies LZ4 block compression to raw chunk payloads. Fastest of
// the supported codecs; the usual pick for write-heavy pipelines that still
// want some size reduction over CompressionNone.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// Compress compresses data as a single tagged LZ4 block.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 1+lz4.CompressBlockBound(len(data)))
	dst[0] = lz4TagCompressed

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, err
	}

	if n == 0 {
		// Incompressible; store verbatim.
		dst[0] = lz4TagStored
		n = copy(dst[1:], data)
	}

	return dst[:1+n], nil
}

// Decompress decompresses a tagged LZ4 block into exactly uncompressedSize
// bytes. The exact-size buffer makes a short or oversized block fail
// immediately instead of being probed with growing buffers.
func (c LZ4Codec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize == 0 {
		return nil, nil
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("empty lz4 chunk payload: %w", errs.ErrCorruptStream)
	}

	if data[0] == lz4TagStored {
		return NoOpCodec{}.Decompress(data[1:], uncompressedSize)
	}

	buf := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[1:], buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 chunk decompression failed: %w", errs.ErrCorruptStream)
	}

	if n != uncompressedSize {
		return nil, fmt.Errorf("lz4 chunk decompressed to %d bytes, expected %d: %w",
			n, uncompressedSize, errs.ErrCorruptStream)
	}

	return buf, nil
}
