package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/lazpack/endian"
	"github.com/arloliu/lazpack/errs"
)

func TestPointFormat_RecordSize(t *testing.T) {
	tests := []struct {
		pf   PointFormat
		size int
	}{
		{PointFormat0, 20},
		{PointFormat1, 28},
		{PointFormat2, 26},
		{PointFormat3, 34},
	}

	for _, tt := range tests {
		t.Run(tt.pf.String(), func(t *testing.T) {
			assert.Equal(t, tt.size, tt.pf.RecordSize())
		})
	}
}

func TestPointFormat_FieldGroups(t *testing.T) {
	assert.False(t, PointFormat0.HasGPSTime())
	assert.False(t, PointFormat0.HasRGB())
	assert.True(t, PointFormat1.HasGPSTime())
	assert.False(t, PointFormat1.HasRGB())
	assert.False(t, PointFormat2.HasGPSTime())
	assert.True(t, PointFormat2.HasRGB())
	assert.True(t, PointFormat3.HasGPSTime())
	assert.True(t, PointFormat3.HasRGB())

	assert.True(t, PointFormat3.Valid())
	assert.False(t, PointFormat(4).Valid())
}

func TestPointRecord_ReturnInfoBits(t *testing.T) {
	p := PointRecord{ReturnInfo: 0b11_010_011}

	assert.Equal(t, uint8(3), p.ReturnNumber())
	assert.Equal(t, uint8(2), p.NumberOfReturns())
	assert.True(t, p.ScanDirection())
	assert.True(t, p.EdgeOfFlightLine())

	p.ReturnInfo = 0b00_001_001
	assert.Equal(t, uint8(1), p.ReturnNumber())
	assert.Equal(t, uint8(1), p.NumberOfReturns())
	assert.False(t, p.ScanDirection())
	assert.False(t, p.EdgeOfFlightLine())
}

func TestPointRecord_SerializeRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	p := PointRecord{
		X:              -123456,
		Y:              math.MaxInt32,
		Z:              math.MinInt32,
		Intensity:      4095,
		ReturnInfo:     0x5A,
		Classification: 6,
		ScanAngle:      -30,
		UserData:       7,
		PointSourceID:  1001,
		GPSTime:        123456.789,
		Red:            65535,
		Green:          0,
		Blue:           32768,
		ExtraBytes:     []byte{0xDE, 0xAD, 0xBE},
	}

	tests := []struct {
		pf         PointFormat
		extraBytes int
	}{
		{PointFormat0, 3},
		{PointFormat1, 3},
		{PointFormat2, 3},
		{PointFormat3, 3},
		{PointFormat3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.pf.String(), func(t *testing.T) {
			in := p
			if tt.extraBytes == 0 {
				in.ExtraBytes = nil
			}

			raw := in.AppendTo(nil, tt.pf, engine)
			require.Len(t, raw, tt.pf.RecordSize()+tt.extraBytes)

			var out PointRecord
			n, err := out.ParseFrom(raw, tt.pf, tt.extraBytes, engine)
			require.NoError(t, err)
			assert.Equal(t, len(raw), n)
			assert.True(t, in.Equal(&out, tt.pf), "got %+v want %+v", out, in)
		})
	}
}

func TestPointRecord_ParseFromShortBuffer(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	var p PointRecord
	_, err := p.ParseFrom(make([]byte, 19), PointFormat0, 0, engine)
	require.ErrorIs(t, err, errs.ErrCorruptStream)

	_, err = p.ParseFrom(make([]byte, 20), PointFormat1, 0, engine)
	require.ErrorIs(t, err, errs.ErrCorruptStream)

	_, err = p.ParseFrom(make([]byte, 20), PointFormat0, 4, engine)
	require.ErrorIs(t, err, errs.ErrCorruptStream)
}

func TestPointRecord_Equal(t *testing.T) {
	a := PointRecord{X: 1, GPSTime: 5, Red: 9}
	b := a

	require.True(t, a.Equal(&b, PointFormat3))

	b.Red = 10
	assert.False(t, a.Equal(&b, PointFormat3), "RGB differs")
	assert.True(t, a.Equal(&b, PointFormat1), "RGB outside format 1")

	b = a
	b.GPSTime = 6
	assert.False(t, a.Equal(&b, PointFormat1), "GPS time differs")
	assert.True(t, a.Equal(&b, PointFormat0), "GPS time outside format 0")

	// NaN GPS times with identical bit patterns compare equal; losslessness
	// is defined over bits, not float semantics.
	a.GPSTime = math.NaN()
	b = a
	assert.True(t, a.Equal(&b, PointFormat1))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"default is valid", func(c *Config) {}, nil},
		{"bad point format", func(c *Config) { c.PointFormat = 11 }, errs.ErrUnsupportedPointFormat},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, errs.ErrInvalidConfig},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -5 }, errs.ErrInvalidConfig},
		{"negative extra bytes", func(c *Config) { c.ExtraByteCount = -1 }, errs.ErrInvalidConfig},
		{"unknown encoding", func(c *Config) { c.Encoding = 0x7 }, errs.ErrInvalidConfig},
		{"compression on predictive", func(c *Config) { c.Compression = CompressionZstd }, errs.ErrInvalidConfig},
		{"raw with zstd", func(c *Config) { c.Encoding = TypeRaw; c.Compression = CompressionZstd }, nil},
		{"raw with s2", func(c *Config) { c.Encoding = TypeRaw; c.Compression = CompressionS2 }, nil},
		{"raw with lz4", func(c *Config) { c.Encoding = TypeRaw; c.Compression = CompressionLZ4 }, nil},
		{"raw with unknown compression", func(c *Config) { c.Encoding = TypeRaw; c.Compression = 0x9 }, errs.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(PointFormat1)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfig_RecordSize(t *testing.T) {
	cfg := DefaultConfig(PointFormat3)
	cfg.ExtraByteCount = 5

	assert.Equal(t, 39, cfg.RecordSize())
}
