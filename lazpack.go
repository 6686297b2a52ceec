// Package lazpack is a lossless compression engine for LIDAR point-cloud
// records in a LAZ-style chunked container.
//
// Points are compressed field by field: each attribute has an adaptive
// predictor that estimates the next value from prior points and entropy-codes
// only the residual through a binary range coder. The stream is split into
// fixed-size chunks whose predictor and model state resets at every boundary,
// so any chunk decodes from its own bytes alone — that is what enables both
// O(1) random access through the chunk table and chunk-level parallelism.
//
// # Basic Usage
//
// Compressing and decompressing a buffer of points:
//
//	cfg := format.DefaultConfig(format.PointFormat1)
//	data, table, err := lazpack.CompressPoints(points, cfg)
//	if err != nil { ... }
//
//	restored, err := lazpack.DecompressPoints(data, table, cfg)
//
// Streaming large point clouds without materializing them:
//
//	w, _ := stream.NewWriter(f, stream.WithPointFormat(format.PointFormat1))
//	for _, pt := range points {
//	    _ = w.Write(&pt)
//	}
//	table, _ := w.Close()
//
//	r, _ := stream.NewReader(f2, table, stream.WithPointFormat(format.PointFormat1))
//	_ = r.Seek(1_000_000) // jump straight to a point index
//	var pt format.PointRecord
//	_ = r.Read(&pt)
//
// # Package Structure
//
// This package provides convenient top-level wrappers. For fine-grained
// control use the stream, chunk, predictor and rangecoder packages directly.
package lazpack

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/arloliu/lazpack/chunk"
	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
	"github.com/arloliu/lazpack/stream"
)

// CompressChunk compresses a point sequence as one self-contained chunk and
// returns its compressed bytes. The sequence may exceed the configured chunk
// size; for chunked streams use CompressPoints or stream.Writer instead.
func CompressChunk(points []format.PointRecord, cfg format.Config) ([]byte, error) {
	if cfg.ChunkSize < len(points) {
		cfg.ChunkSize = len(points)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1
	}

	w, err := chunk.NewWriter(cfg)
	if err != nil {
		return nil, err
	}
	defer w.Finish()

	if err := w.BeginChunk(); err != nil {
		return nil, err
	}

	for i := range points {
		if err := w.EncodePoint(&points[i]); err != nil {
			return nil, err
		}
	}

	data, _, err := w.EndChunk()
	if err != nil {
		return nil, err
	}

	// The writer's buffer is pooled; hand the caller an owned copy.
	return append([]byte(nil), data...), nil
}

// DecompressChunk decompresses one chunk's bytes into exactly
// expectedPointCount records.
//
// Returns errs.ErrCorruptStream when the bytes cannot reproduce the declared
// count.
func DecompressChunk(data []byte, expectedPointCount int, cfg format.Config) ([]format.PointRecord, error) {
	if cfg.ChunkSize < expectedPointCount {
		cfg.ChunkSize = expectedPointCount
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1
	}

	r, err := chunk.NewReader(cfg)
	if err != nil {
		return nil, err
	}

	if err := r.OpenChunk(data, expectedPointCount, true); err != nil {
		return nil, err
	}

	points := make([]format.PointRecord, expectedPointCount)
	for i := range points {
		if err := r.DecodeNextPoint(&points[i]); err != nil {
			return nil, err
		}
	}

	return points, nil
}

// CompressPoints compresses a point buffer into chunked form and returns the
// compressed bytes alongside the finalized chunk table.
func CompressPoints(points []format.PointRecord, cfg format.Config) ([]byte, *chunk.Table, error) {
	var buf bytes.Buffer

	w, err := stream.NewWriter(&buf, stream.WithConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	for i := range points {
		if err := w.Write(&points[i]); err != nil {
			return nil, nil, err
		}
	}

	table, err := w.Close()
	if err != nil {
		return nil, nil, err
	}

	return buf.Bytes(), table, nil
}

// DecompressPoints decompresses a chunked buffer produced by CompressPoints
// (or a stream.Writer) back into its point records.
func DecompressPoints(data []byte, table *chunk.Table, cfg format.Config) ([]format.PointRecord, error) {
	r, err := stream.NewReader(bytes.NewReader(data), table, stream.WithConfig(cfg))
	if err != nil {
		return nil, err
	}

	points := make([]format.PointRecord, table.TotalPoints())
	for i := range points {
		if err := r.Read(&points[i]); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("stream ended at point %d of %d: %w", i, len(points), errs.ErrCorruptStream)
			}

			return nil, err
		}
	}

	return points, nil
}

// ParCompressPoints is CompressPoints with chunks compressed in parallel.
//
// Each worker owns a full predictor+coder state set, so results are
// byte-identical to the sequential path; chunks are merged in table order.
func ParCompressPoints(points []format.PointRecord, cfg format.Config) ([]byte, *chunk.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	numChunks := (len(points) + cfg.ChunkSize - 1) / cfg.ChunkSize
	if numChunks <= 1 {
		return CompressPoints(points, cfg)
	}

	chunks := make([][]byte, numChunks)
	chunkErrs := make([]error, numChunks)

	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())

	for i := 0; i < numChunks; i++ {
		start := i * cfg.ChunkSize
		end := min(start+cfg.ChunkSize, len(points))

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, pts []format.PointRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			chunks[i], chunkErrs[i] = CompressChunk(pts, cfg)
		}(i, points[start:end])
	}
	wg.Wait()

	for _, err := range chunkErrs {
		if err != nil {
			return nil, nil, err
		}
	}

	table := chunk.NewTable()
	total := 0
	for i, data := range chunks {
		pointCount := cfg.ChunkSize
		if i == numChunks-1 {
			pointCount = len(points) - i*cfg.ChunkSize
		}
		table.Append(pointCount, len(data))
		total += len(data)
	}

	out := make([]byte, 0, total)
	for _, data := range chunks {
		out = append(out, data...)
	}

	return out, table, nil
}

// ParDecompressPoints is DecompressPoints with chunks decoded in parallel.
func ParDecompressPoints(data []byte, table *chunk.Table, cfg format.Config) ([]format.PointRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if uint64(len(data)) < table.TotalBytes() {
		return nil, fmt.Errorf("buffer holds %d bytes, table declares %d: %w",
			len(data), table.TotalBytes(), errs.ErrCorruptStream)
	}

	points := make([]format.PointRecord, table.TotalPoints())
	chunkErrs := make([]error, table.Len())

	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())

	pointStart := uint64(0)
	for i := 0; i < table.Len(); i++ {
		entry, _ := table.EntryAt(i)
		offset, _ := table.OffsetOf(i)

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, raw []byte, count int, dst []format.PointRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			pts, err := DecompressChunk(raw, count, cfg)
			if err != nil {
				chunkErrs[i] = err
				return
			}
			copy(dst, pts)
		}(i, data[offset:offset+entry.ByteLength], int(entry.PointCount), points[pointStart:pointStart+uint64(entry.PointCount)])

		pointStart += uint64(entry.PointCount)
	}
	wg.Wait()

	for _, err := range chunkErrs {
		if err != nil {
			return nil, err
		}
	}

	return points, nil
}
