package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
)

func testPayloads(t *testing.T) map[string][]byte {
	t.Helper()

	rng := rand.New(rand.NewSource(1))

	random := make([]byte, 32*1024)
	rng.Read(random)

	repetitive := bytes.Repeat([]byte("point-record-"), 4096)

	return map[string][]byte{
		"repetitive":     repetitive,
		"incompressible": random,
		"single byte":    {0x42},
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	codecs := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, ct := range codecs {
		codec, err := ForType(ct)
		require.NoError(t, err)

		for name, payload := range testPayloads(t) {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				restored, err := codec.Decompress(compressed, len(payload))
				require.NoError(t, err)
				require.Equal(t, payload, restored)
			})
		}
	}
}

func TestCodecs_EmptyPayload(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := ForType(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err, ct.String())

		restored, err := codec.Decompress(compressed, 0)
		require.NoError(t, err, ct.String())
		assert.Empty(t, restored, ct.String())
	}
}

func TestCodecs_CompressRepetitiveData(t *testing.T) {
	payload := bytes.Repeat([]byte{1, 2, 3, 4, 0, 0, 0, 0}, 8192)

	for _, ct := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := ForType(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(payload)
		require.NoError(t, err)
		assert.Less(t, len(compressed), len(payload)/4, "%s should compress repetitive data", ct)
	}
}

func TestCodecs_SizeMismatch(t *testing.T) {
	payload := bytes.Repeat([]byte("abc"), 1000)

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := ForType(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(payload)
		require.NoError(t, err)

		_, err = codec.Decompress(compressed, len(payload)+1)
		require.ErrorIs(t, err, errs.ErrCorruptStream, ct.String())
	}
}

func TestCodecs_GarbageInput(t *testing.T) {
	garbage := []byte{0xFF, 0xAA, 0x01, 0x02, 0x03, 0x04, 0x05}

	for _, ct := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := ForType(ct)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage, 1000)
		require.ErrorIs(t, err, errs.ErrCorruptStream, ct.String())
	}
}

func TestForType_Unknown(t *testing.T) {
	_, err := ForType(0x42)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
