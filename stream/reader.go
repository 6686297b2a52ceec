package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/lazpack/chunk"
	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
)

// Reader decompresses a chunked point stream from a seekable byte source.
//
// src must be positioned at the first byte of compressed point data when the
// Reader is created; chunk offsets from the table are resolved relative to
// that position. Read walks points linearly across chunk boundaries; Seek
// jumps to an arbitrary global point index by reopening the owning chunk and
// re-decoding from its start (intra-chunk positions are not independently
// seekable).
//
// Reader is not safe for concurrent use. For parallel decompression across
// chunks, use lazpack.ParDecompressPoints.
type Reader struct {
	cfg   format.Config
	cr    *chunk.Reader
	src   io.ReadSeeker
	table *chunk.Table
	base  int64

	curChunk int // index of the open chunk, -1 before the first Read
	buf      []byte
}

// NewReader creates a stream reader over src using the stream's finalized
// chunk table.
//
// The table is validated against the configuration before any chunk bytes
// are read: every non-final chunk must hold exactly the configured chunk
// size and the final chunk at most that many points. A violation means
// writer and reader disagree on configuration
// (errs.ErrConfigurationMismatch).
func NewReader(src io.ReadSeeker, table *chunk.Table, opts ...Option) (*Reader, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	for i := 0; i < table.Len(); i++ {
		entry, _ := table.EntryAt(i)
		count := int(entry.PointCount)
		if count > cfg.ChunkSize || (i < table.Len()-1 && count != cfg.ChunkSize) {
			return nil, fmt.Errorf("chunk %d declares %d points, configured chunk size is %d: %w",
				i, count, cfg.ChunkSize, errs.ErrConfigurationMismatch)
		}
	}

	cr, err := chunk.NewReader(cfg)
	if err != nil {
		return nil, err
	}

	base, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating point data start: %w", err)
	}

	return &Reader{
		cfg:      cfg,
		cr:       cr,
		src:      src,
		table:    table,
		base:     base,
		curChunk: -1,
	}, nil
}

// Config returns the reader's immutable stream configuration.
func (r *Reader) Config() format.Config {
	return r.cfg
}

// TotalPoints returns the stream's total point count from the chunk table.
func (r *Reader) TotalPoints() uint64 {
	return r.table.TotalPoints()
}

// Read decodes the next point record into p. It returns io.EOF once every
// point declared by the chunk table has been decoded.
func (r *Reader) Read(p *format.PointRecord) error {
	for r.curChunk < 0 || r.cr.Exhausted() {
		next := r.curChunk + 1
		if next >= r.table.Len() {
			return io.EOF
		}
		if err := r.openChunk(next); err != nil {
			return err
		}
	}

	return r.cr.DecodeNextPoint(p)
}

// Seek positions the reader so that the next Read returns the point at the
// given global index. Seeking to an out-of-range index is an error without
// side effects on the current position.
func (r *Reader) Seek(pointIndex uint64) error {
	chunkIndex, within, err := r.table.Locate(pointIndex)
	if err != nil {
		return err
	}

	if err := r.openChunk(chunkIndex); err != nil {
		return err
	}

	// Skip forward by re-decoding from the chunk start.
	var skip format.PointRecord
	for i := 0; i < within; i++ {
		if err := r.cr.DecodeNextPoint(&skip); err != nil {
			return err
		}
	}

	return nil
}

// openChunk reads chunk index's compressed bytes from src and hands them to
// the chunk reader.
func (r *Reader) openChunk(index int) error {
	entry, err := r.table.EntryAt(index)
	if err != nil {
		return err
	}

	offset, err := r.table.OffsetOf(index)
	if err != nil {
		return err
	}

	if _, err := r.src.Seek(r.base+int64(offset), io.SeekStart); err != nil { //nolint:gosec
		return fmt.Errorf("seeking to chunk %d: %w", index, err)
	}

	length := int(entry.ByteLength) //nolint:gosec
	if cap(r.buf) < length {
		r.buf = make([]byte, length)
	} else {
		r.buf = r.buf[:length]
	}

	if _, err := io.ReadFull(r.src, r.buf); err != nil {
		return fmt.Errorf("reading chunk %d (%d bytes): %w", index, length, errs.ErrCorruptStream)
	}

	if err := r.cr.OpenChunk(r.buf, int(entry.PointCount), false); err != nil {
		return err
	}

	r.curChunk = index

	return nil
}
