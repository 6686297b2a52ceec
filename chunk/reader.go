package chunk

import (
	"errors"
	"fmt"

	"github.com/arloliu/lazpack/compress"
	"github.com/arloliu/lazpack/endian"
	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
	"github.com/arloliu/lazpack/predictor"
	"github.com/arloliu/lazpack/rangecoder"
)

// Reader decompresses one chunk at a time. Like Writer it owns a full
// predictor+coder state set; OpenChunk resets that state, so a single Reader
// can walk chunks sequentially or be pointed at an arbitrary chunk for random
// access.
//
// Reader is not safe for concurrent use.
type Reader struct {
	cfg    format.Config
	engine endian.EndianEngine

	// Predictive path.
	codec *predictor.RecordCodec
	dec   *rangecoder.Decoder

	// Raw path.
	rawCodec compress.Codec
	raw      []byte
	rawOff   int

	count   int
	decoded int
	opened  bool
}

// NewReader creates a chunk reader for the given configuration.
func NewReader(cfg format.Config) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Reader{
		cfg:    cfg,
		engine: endian.GetLittleEndianEngine(),
	}

	switch cfg.Encoding {
	case format.TypePredictive:
		codec, err := predictor.NewRecordCodec(cfg)
		if err != nil {
			return nil, err
		}
		r.codec = codec
	case format.TypeRaw:
		rawCodec, err := compress.ForType(cfg.Compression)
		if err != nil {
			return nil, err
		}
		r.rawCodec = rawCodec
	}

	return r, nil
}

// OpenChunk positions the reader at the start of a chunk's compressed bytes,
// resetting all predictor and model state to its seed.
//
// pointCount is the chunk's declared point count from the chunk table. A
// count exceeding the configured chunk size means writer and reader disagree
// on configuration (errs.ErrConfigurationMismatch). Payloads that fail
// upfront validation (raw payload of the wrong size, bytes that are not a
// coder stream) yield errs.ErrCorruptStream.
//
// allowOversize lifts the chunk-size check for single-chunk buffer
// decompression, where the caller's expected count is authoritative.
func (r *Reader) OpenChunk(data []byte, pointCount int, allowOversize bool) error {
	if pointCount < 0 {
		return fmt.Errorf("negative point count %d: %w", pointCount, errs.ErrCorruptStream)
	}

	if !allowOversize && pointCount > r.cfg.ChunkSize {
		return fmt.Errorf("chunk declares %d points, configured chunk size is %d: %w",
			pointCount, r.cfg.ChunkSize, errs.ErrConfigurationMismatch)
	}

	if r.codec != nil {
		r.codec.Reset()
		if r.dec == nil {
			r.dec = rangecoder.NewDecoder(data)
		} else {
			r.dec.Reset(data)
		}
		if pointCount > 0 {
			if err := r.dec.Err(); err != nil {
				return err
			}
		}
	} else {
		raw, err := r.rawCodec.Decompress(data, pointCount*r.cfg.RecordSize())
		if err != nil {
			return err
		}
		r.raw = raw
		r.rawOff = 0
	}

	r.count = pointCount
	r.decoded = 0
	r.opened = true

	return nil
}

// DecodeNextPoint reconstructs the next record of the open chunk into p.
//
// Reading past the declared point count is a caller error
// (errs.ErrInvalidPointIndex); a coder underflow mid-record surfaces as
// errs.ErrCorruptStream.
func (r *Reader) DecodeNextPoint(p *format.PointRecord) error {
	if !r.opened {
		return errors.New("no open chunk")
	}

	if r.decoded >= r.count {
		return fmt.Errorf("chunk holds %d points: %w", r.count, errs.ErrInvalidPointIndex)
	}

	if r.codec != nil {
		r.codec.DecodePoint(r.dec, p)
		if err := r.dec.Err(); err != nil {
			return err
		}
	} else {
		n, err := p.ParseFrom(r.raw[r.rawOff:], r.cfg.PointFormat, r.cfg.ExtraByteCount, r.engine)
		if err != nil {
			return err
		}
		r.rawOff += n
	}

	r.decoded++

	return nil
}

// Exhausted reports whether the open chunk's declared point count has been
// fully consumed.
func (r *Reader) Exhausted() bool {
	return r.decoded >= r.count
}
