package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEngines(t *testing.T) {
	le := GetLittleEndianEngine()
	be := GetBigEndianEngine()

	require.NotNil(t, le)
	require.NotNil(t, be)
	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), binary.ByteOrder(le))
	assert.Equal(t, binary.ByteOrder(binary.BigEndian), binary.ByteOrder(be))
}

func TestEngine_AppendAndRead(t *testing.T) {
	le := GetLittleEndianEngine()

	buf := le.AppendUint32(nil, 0x11223344)
	require.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, buf, "LAS data is little-endian on disk")
	assert.Equal(t, uint32(0x11223344), le.Uint32(buf))

	buf = le.AppendUint16(buf[:0], 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), le.Uint16(buf))

	buf = le.AppendUint64(buf[:0], 0x0102030405060708)
	assert.Equal(t, uint64(0x0102030405060708), le.Uint64(buf))
}

func TestCheckEndianness(t *testing.T) {
	native := CheckEndianness()
	require.NotNil(t, native)

	assert.Equal(t, native == binary.LittleEndian, IsNativeLittleEndian())
	assert.Equal(t, native == binary.BigEndian, IsNativeBigEndian())
	assert.NotEqual(t, IsNativeLittleEndian(), IsNativeBigEndian())

	if IsNativeLittleEndian() {
		assert.True(t, CompareNativeEndian(GetLittleEndianEngine()))
		assert.False(t, CompareNativeEndian(GetBigEndianEngine()))
	} else {
		assert.True(t, CompareNativeEndian(GetBigEndianEngine()))
		assert.False(t, CompareNativeEndian(GetLittleEndianEngine()))
	}
}
