package stream

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/lazpack/chunk"
	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
)

func genPoints(n int, pf format.PointFormat) []format.PointRecord {
	rng := rand.New(rand.NewSource(int64(n)))

	points := make([]format.PointRecord, n)
	x, y, z := int32(0), int32(0), int32(0)
	gps := 100000.0

	for i := range points {
		x += int32(rng.Intn(9) - 4)
		y += int32(rng.Intn(9) - 4)
		z += int32(rng.Intn(3) - 1)
		gps += 0.0001

		p := format.PointRecord{
			X:             x,
			Y:             y,
			Z:             z,
			Intensity:     uint16(rng.Intn(1024)),
			ReturnInfo:    uint8(1 + 1<<3),
			PointSourceID: 7,
		}
		if pf.HasGPSTime() {
			p.GPSTime = gps
		}
		if pf.HasRGB() {
			p.Red = uint16(i)
			p.Green = uint16(i * 2)
			p.Blue = uint16(i * 3)
		}

		points[i] = p
	}

	return points
}

func writeStream(t *testing.T, points []format.PointRecord, opts ...Option) (*bytes.Buffer, *chunk.Table) {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts...)
	require.NoError(t, err)

	for i := range points {
		require.NoError(t, w.Write(&points[i]))
	}

	table, err := w.Close()
	require.NoError(t, err)

	return &buf, table
}

func TestWriterReader_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		pf        format.PointFormat
		points    int
		chunkSize int
		chunks    int
	}{
		{"single short chunk", format.PointFormat0, 10, 100, 1},
		{"exact chunk boundary", format.PointFormat1, 200, 100, 2},
		{"short final chunk", format.PointFormat3, 250, 100, 3},
		{"many small chunks", format.PointFormat2, 333, 10, 34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{
				WithPointFormat(tt.pf),
				WithChunkSize(tt.chunkSize),
			}

			points := genPoints(tt.points, tt.pf)
			buf, table := writeStream(t, points, opts...)

			require.Equal(t, tt.chunks, table.Len())
			require.Equal(t, uint64(tt.points), table.TotalPoints())
			require.Equal(t, uint64(buf.Len()), table.TotalBytes())

			r, err := NewReader(bytes.NewReader(buf.Bytes()), table, opts...)
			require.NoError(t, err)

			var got format.PointRecord
			for i := range points {
				require.NoError(t, r.Read(&got), "point %d", i)
				require.True(t, points[i].Equal(&got, tt.pf), "point %d", i)
			}

			require.ErrorIs(t, r.Read(&got), io.EOF)
			require.ErrorIs(t, r.Read(&got), io.EOF, "EOF must be persistent")
		})
	}
}

func TestWriterReader_RawEncoding(t *testing.T) {
	opts := []Option{
		WithPointFormat(format.PointFormat1),
		WithChunkSize(50),
		WithEncoding(format.TypeRaw),
		WithCompression(format.CompressionLZ4),
	}

	points := genPoints(125, format.PointFormat1)
	buf, table := writeStream(t, points, opts...)
	require.Equal(t, 3, table.Len())

	r, err := NewReader(bytes.NewReader(buf.Bytes()), table, opts...)
	require.NoError(t, err)

	var got format.PointRecord
	for i := range points {
		require.NoError(t, r.Read(&got), "point %d", i)
		require.True(t, points[i].Equal(&got, format.PointFormat1), "point %d", i)
	}
}

func TestReader_SeekMatchesLinearRead(t *testing.T) {
	opts := []Option{
		WithPointFormat(format.PointFormat1),
		WithChunkSize(25),
	}

	points := genPoints(120, format.PointFormat1)
	buf, table := writeStream(t, points, opts...)

	r, err := NewReader(bytes.NewReader(buf.Bytes()), table, opts...)
	require.NoError(t, err)

	// Every index, in a scrambled order so each Seek crosses chunks.
	order := rand.New(rand.NewSource(3)).Perm(len(points))

	var got format.PointRecord
	for _, idx := range order {
		require.NoError(t, r.Seek(uint64(idx)), "seek to %d", idx)
		require.NoError(t, r.Read(&got), "read at %d", idx)
		require.True(t, points[idx].Equal(&got, format.PointFormat1), "point %d", idx)
	}
}

func TestReader_SeekThenLinearToEnd(t *testing.T) {
	opts := []Option{
		WithPointFormat(format.PointFormat0),
		WithChunkSize(10),
	}

	points := genPoints(35, format.PointFormat0)
	buf, table := writeStream(t, points, opts...)

	r, err := NewReader(bytes.NewReader(buf.Bytes()), table, opts...)
	require.NoError(t, err)

	// A seek into the middle continues linearly across chunk boundaries.
	require.NoError(t, r.Seek(17))

	var got format.PointRecord
	for i := 17; i < len(points); i++ {
		require.NoError(t, r.Read(&got), "point %d", i)
		require.True(t, points[i].Equal(&got, format.PointFormat0), "point %d", i)
	}
	require.ErrorIs(t, r.Read(&got), io.EOF)
}

func TestReader_SeekOutOfRange(t *testing.T) {
	opts := []Option{WithChunkSize(10)}

	points := genPoints(15, format.PointFormat0)
	buf, table := writeStream(t, points, opts...)

	r, err := NewReader(bytes.NewReader(buf.Bytes()), table, opts...)
	require.NoError(t, err)

	require.ErrorIs(t, r.Seek(15), errs.ErrInvalidPointIndex)

	// The failed seek must not disturb the current position.
	var got format.PointRecord
	require.NoError(t, r.Read(&got))
	require.True(t, points[0].Equal(&got, format.PointFormat0))
}

func TestWriter_CloseEmptyStream(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	table, err := w.Close()
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, buf.Len())
}

func TestWriter_UseAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	_, err = w.Close()
	require.NoError(t, err)

	var p format.PointRecord
	require.ErrorIs(t, w.Write(&p), errs.ErrWriterClosed)

	_, err = w.Close()
	require.ErrorIs(t, err, errs.ErrWriterClosed)
}

func TestNewReader_TableConfigMismatch(t *testing.T) {
	opts := []Option{WithChunkSize(10)}

	points := genPoints(25, format.PointFormat0)
	buf, table := writeStream(t, points, opts...)

	// Reader configured with a different chunk size must refuse the table.
	_, err := NewReader(bytes.NewReader(buf.Bytes()), table, WithChunkSize(20))
	require.ErrorIs(t, err, errs.ErrConfigurationMismatch)
}

func TestReader_TruncatedSource(t *testing.T) {
	opts := []Option{WithChunkSize(10)}

	points := genPoints(30, format.PointFormat0)
	buf, table := writeStream(t, points, opts...)

	truncated := buf.Bytes()[:buf.Len()-5]
	r, err := NewReader(bytes.NewReader(truncated), table, opts...)
	require.NoError(t, err)

	var got format.PointRecord
	var readErr error
	for i := 0; i < len(points); i++ {
		if readErr = r.Read(&got); readErr != nil {
			break
		}
	}

	require.ErrorIs(t, readErr, errs.ErrCorruptStream)
}

func TestReader_BaseOffset(t *testing.T) {
	// Point data preceded by unrelated container bytes: the reader resolves
	// chunk offsets relative to the source position at creation time.
	opts := []Option{WithChunkSize(10)}

	points := genPoints(25, format.PointFormat0)
	buf, table := writeStream(t, points, opts...)

	prefixed := append([]byte("container-header"), buf.Bytes()...)
	src := bytes.NewReader(prefixed)
	_, err := src.Seek(int64(len("container-header")), io.SeekStart)
	require.NoError(t, err)

	r, err := NewReader(src, table, opts...)
	require.NoError(t, err)

	var got format.PointRecord
	for i := range points {
		require.NoError(t, r.Read(&got), "point %d", i)
		require.True(t, points[i].Equal(&got, format.PointFormat0), "point %d", i)
	}
}

func TestBuildConfig_Invalid(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, WithChunkSize(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewWriter(&bytes.Buffer{}, WithPointFormat(format.PointFormat(9)))
	require.ErrorIs(t, err, errs.ErrUnsupportedPointFormat)
}
