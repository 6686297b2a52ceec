// Package stream implements the stream orchestrator: push/pull interfaces
// over the chunking layer for streams too large to materialize in memory.
//
// The writer streams each chunk's compressed bytes to the caller's sink as
// the chunk completes and finalizes the chunk table at Close (deferred-table
// layout: the container stores the table after the point data, typically with
// a header back-pointer — that part belongs to the container writer, not this
// engine). Writing therefore supports unbounded streaming without buffering
// more than one chunk.
package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/lazpack/chunk"
	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
)

// Writer compresses a point stream into chunked form, writing compressed
// chunk payloads to dst as chunk boundaries are crossed.
//
// Writer is not thread-safe and not reusable after Close.
type Writer struct {
	cfg    format.Config
	cw     *chunk.Writer
	dst    io.Writer
	table  *chunk.Table
	closed bool
}

// NewWriter creates a stream writer over dst.
//
// Example:
//
//	w, err := stream.NewWriter(f,
//	    stream.WithPointFormat(format.PointFormat1),
//	    stream.WithChunkSize(50000),
//	)
//	if err != nil { ... }
//	for _, pt := range points {
//	    if err := w.Write(&pt); err != nil { ... }
//	}
//	table, err := w.Close()
func NewWriter(dst io.Writer, opts ...Option) (*Writer, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	cw, err := chunk.NewWriter(cfg)
	if err != nil {
		return nil, err
	}

	return &Writer{
		cfg:   cfg,
		cw:    cw,
		dst:   dst,
		table: chunk.NewTable(),
	}, nil
}

// Config returns the writer's immutable stream configuration.
func (w *Writer) Config() format.Config {
	return w.cfg
}

// Write encodes one point record, flushing the current chunk to dst when it
// reaches the configured chunk size.
func (w *Writer) Write(p *format.PointRecord) error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	if !w.cw.Open() {
		if err := w.cw.BeginChunk(); err != nil {
			return err
		}
	}

	if err := w.cw.EncodePoint(p); err != nil {
		return err
	}

	if w.cw.Count() >= w.cfg.ChunkSize {
		return w.flushChunk()
	}

	return nil
}

// Close flushes the final (possibly short) chunk and returns the finalized
// chunk table. A write-side error at one chunk does not invalidate chunks
// already flushed; their bytes and table entries remain valid.
func (w *Writer) Close() (*chunk.Table, error) {
	if w.closed {
		return nil, errs.ErrWriterClosed
	}
	w.closed = true

	var err error
	if w.cw.Open() && w.cw.Count() > 0 {
		err = w.flushChunk()
	}

	w.cw.Finish()

	if err != nil {
		return nil, err
	}

	return w.table, nil
}

// flushChunk ends the open chunk, writes its bytes to dst and records it in
// the table.
func (w *Writer) flushChunk() error {
	data, count, err := w.cw.EndChunk()
	if err != nil {
		return err
	}

	if _, err := w.dst.Write(data); err != nil {
		return fmt.Errorf("writing chunk %d: %w", w.table.Len(), err)
	}

	w.table.Append(count, len(data))

	return nil
}
