// Package chunk implements the chunking layer: it splits the point stream
// into independently decodable runs, resets predictor and model state at
// every chunk boundary, and maintains the offset table that enables direct
// seek to any chunk.
//
// A chunk's compressed bytes decode deterministically into exactly its
// declared point count given only the chunk's own bytes and the stream-level
// configuration; no mutable state crosses chunk boundaries. That invariant is
// what allows distinct chunks to be coded fully in parallel.
package chunk

import (
	"errors"
	"fmt"

	"github.com/arloliu/lazpack/compress"
	"github.com/arloliu/lazpack/endian"
	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
	"github.com/arloliu/lazpack/internal/pool"
	"github.com/arloliu/lazpack/predictor"
	"github.com/arloliu/lazpack/rangecoder"
)

// Writer compresses one chunk at a time. It owns a full predictor+coder state
// set; the stream orchestrator drives it, and parallel compression creates
// one Writer per in-flight chunk.
//
// Writer is not safe for concurrent use.
type Writer struct {
	cfg    format.Config
	engine endian.EndianEngine

	// Predictive path.
	codec *predictor.RecordCodec
	enc   *rangecoder.Encoder

	// Raw path.
	rawCodec compress.Codec
	rawBuf   *pool.ByteBuffer

	count int
	open  bool
}

// NewWriter creates a chunk writer for the given configuration.
func NewWriter(cfg format.Config) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Writer{
		cfg:    cfg,
		engine: endian.GetLittleEndianEngine(),
	}

	switch cfg.Encoding {
	case format.TypePredictive:
		codec, err := predictor.NewRecordCodec(cfg)
		if err != nil {
			return nil, err
		}
		w.codec = codec
		w.enc = rangecoder.NewEncoder()
	case format.TypeRaw:
		rawCodec, err := compress.ForType(cfg.Compression)
		if err != nil {
			return nil, err
		}
		w.rawCodec = rawCodec
		w.rawBuf = pool.GetChunkBuffer()
	}

	return w, nil
}

// Count returns the number of points encoded into the open chunk.
func (w *Writer) Count() int {
	return w.count
}

// Open reports whether a chunk is currently open.
func (w *Writer) Open() bool {
	return w.open
}

// BeginChunk starts a new chunk, resetting all predictor and model state to
// its seed. Beginning a chunk while one is open is a programmer error.
func (w *Writer) BeginChunk() error {
	if w.open {
		return errors.New("chunk already open")
	}

	if w.codec != nil {
		w.codec.Reset()
		w.enc.Reset()
	} else {
		w.rawBuf.Reset()
	}

	w.count = 0
	w.open = true

	return nil
}

// EncodePoint codes one record into the open chunk. The caller bounds the
// chunk at the configured size; EncodePoint itself accepts any count so that
// single-chunk buffer compression can exceed it.
func (w *Writer) EncodePoint(p *format.PointRecord) error {
	if !w.open {
		return errors.New("no open chunk")
	}

	if w.codec != nil {
		if err := w.codec.EncodePoint(w.enc, p); err != nil {
			return err
		}
	} else {
		if len(p.ExtraBytes) != w.cfg.ExtraByteCount {
			return fmt.Errorf("record has %d extra bytes, stream declares %d: %w",
				len(p.ExtraBytes), w.cfg.ExtraByteCount, errs.ErrConfigurationMismatch)
		}
		w.rawBuf.Grow(w.cfg.RecordSize())
		w.rawBuf.B = p.AppendTo(w.rawBuf.B, w.cfg.PointFormat, w.engine)
	}

	w.count++

	return nil
}

// EndChunk finalizes the open chunk and returns its compressed bytes and
// point count. The returned slice is valid until the next BeginChunk; callers
// that keep it must copy it out.
func (w *Writer) EndChunk() ([]byte, int, error) {
	if !w.open {
		return nil, 0, errors.New("no open chunk")
	}

	w.open = false

	if w.codec != nil {
		w.enc.Flush()
		return w.enc.Bytes(), w.count, nil
	}

	data, err := w.rawCodec.Compress(w.rawBuf.Bytes())
	if err != nil {
		return nil, 0, fmt.Errorf("raw chunk compression: %w", err)
	}

	return data, w.count, nil
}

// Finish releases pooled resources. The writer is unusable afterwards.
func (w *Writer) Finish() {
	if w.enc != nil {
		w.enc.Finish()
		w.enc = nil
	}
	if w.rawBuf != nil {
		pool.PutChunkBuffer(w.rawBuf)
		w.rawBuf = nil
	}
}
