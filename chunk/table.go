package chunk

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/lazpack/endian"
	"github.com/arloliu/lazpack/errs"
)

const (
	// tableHeaderSize is the leading entry count (uint32).
	tableHeaderSize = 4

	// EntrySize is the serialized size of one table entry:
	// point count (uint32) + byte length (uint64).
	EntrySize = 12

	// checksumSize is the trailing xxHash64 checksum (uint64).
	checksumSize = 8
)

// Entry describes one chunk: how many points it decodes to and how many
// compressed bytes it occupies.
type Entry struct {
	// PointCount is the number of point records in the chunk.
	PointCount uint32

	// ByteLength is the compressed byte length of the chunk payload.
	ByteLength uint64
}

// Table is the ordered chunk directory of one compressed stream. It is built
// incrementally during encoding (Append after each chunk flush) and enables
// O(1) seek to the starting byte offset of any chunk on the read side.
//
// Cumulative offsets and point counts are maintained on Append, so OffsetOf
// is a slice lookup and Locate is a binary search.
type Table struct {
	entries     []Entry
	offsets     []uint64 // byte offset of each chunk's first payload byte
	cumPoints   []uint64 // points in all chunks before each chunk
	totalBytes  uint64
	totalPoints uint64
}

// NewTable creates an empty chunk table.
func NewTable() *Table {
	return &Table{}
}

// Append records a flushed chunk of pointCount points occupying byteLength
// compressed bytes.
func (t *Table) Append(pointCount int, byteLength int) {
	t.offsets = append(t.offsets, t.totalBytes)
	t.cumPoints = append(t.cumPoints, t.totalPoints)
	t.entries = append(t.entries, Entry{
		PointCount: uint32(pointCount), //nolint:gosec
		ByteLength: uint64(byteLength), //nolint:gosec
	})
	t.totalBytes += uint64(byteLength)  //nolint:gosec
	t.totalPoints += uint64(pointCount) //nolint:gosec
}

// Len returns the number of chunks in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// TotalPoints returns the total number of points across all chunks.
func (t *Table) TotalPoints() uint64 {
	return t.totalPoints
}

// TotalBytes returns the total compressed payload size across all chunks.
func (t *Table) TotalBytes() uint64 {
	return t.totalBytes
}

// EntryAt returns the entry for chunk index, or errs.ErrInvalidChunkIndex.
func (t *Table) EntryAt(index int) (Entry, error) {
	if index < 0 || index >= len(t.entries) {
		return Entry{}, fmt.Errorf("chunk %d of %d: %w", index, len(t.entries), errs.ErrInvalidChunkIndex)
	}

	return t.entries[index], nil
}

// OffsetOf returns the byte offset of the chunk's first payload byte,
// relative to the start of the compressed point data.
func (t *Table) OffsetOf(index int) (uint64, error) {
	if index < 0 || index >= len(t.offsets) {
		return 0, fmt.Errorf("chunk %d of %d: %w", index, len(t.offsets), errs.ErrInvalidChunkIndex)
	}

	return t.offsets[index], nil
}

// Locate translates a global point index into a chunk index and an in-chunk
// offset. Positions inside a chunk are not independently seekable; the
// caller re-decodes from the chunk start and skips forward.
func (t *Table) Locate(pointIndex uint64) (chunkIndex int, within int, err error) {
	if pointIndex >= t.totalPoints {
		return 0, 0, fmt.Errorf("point %d of %d: %w", pointIndex, t.totalPoints, errs.ErrInvalidPointIndex)
	}

	// First chunk whose cumulative start exceeds the index, minus one.
	chunkIndex = sort.Search(len(t.cumPoints), func(i int) bool {
		return t.cumPoints[i] > pointIndex
	}) - 1

	return chunkIndex, int(pointIndex - t.cumPoints[chunkIndex]), nil //nolint:gosec
}

// Marshal serializes the table: leading entry count, fixed-size entries, and
// a trailing xxHash64 checksum over everything before it.
func (t *Table) Marshal(engine endian.EndianEngine) []byte {
	buf := make([]byte, 0, tableHeaderSize+len(t.entries)*EntrySize+checksumSize)
	buf = engine.AppendUint32(buf, uint32(len(t.entries))) //nolint:gosec

	for _, e := range t.entries {
		buf = engine.AppendUint32(buf, e.PointCount)
		buf = engine.AppendUint64(buf, e.ByteLength)
	}

	return engine.AppendUint64(buf, xxhash.Sum64(buf))
}

// ParseTable deserializes a table produced by Marshal.
//
// Returns errs.ErrCorruptStream for a truncated buffer, an entry count that
// disagrees with the buffer size, or a checksum mismatch.
func ParseTable(data []byte, engine endian.EndianEngine) (*Table, error) {
	if len(data) < tableHeaderSize+checksumSize {
		return nil, fmt.Errorf("chunk table needs at least %d bytes, have %d: %w",
			tableHeaderSize+checksumSize, len(data), errs.ErrCorruptStream)
	}

	count := int(engine.Uint32(data[0:tableHeaderSize]))
	want := tableHeaderSize + count*EntrySize + checksumSize
	if len(data) < want {
		return nil, fmt.Errorf("chunk table declares %d entries (%d bytes), have %d: %w",
			count, want, len(data), errs.ErrCorruptStream)
	}

	body := data[:want-checksumSize]
	stored := engine.Uint64(data[want-checksumSize : want])
	if sum := xxhash.Sum64(body); sum != stored {
		return nil, fmt.Errorf("chunk table checksum %#x does not match stored %#x: %w",
			sum, stored, errs.ErrCorruptStream)
	}

	t := NewTable()
	for i := 0; i < count; i++ {
		off := tableHeaderSize + i*EntrySize
		t.Append(
			int(engine.Uint32(body[off:off+4])),
			int(engine.Uint64(body[off+4:off+12])), //nolint:gosec
		)
	}

	return t, nil
}
