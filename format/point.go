package format

import (
	"fmt"
	"math"

	"github.com/arloliu/lazpack/endian"
	"github.com/arloliu/lazpack/errs"
)

// PointRecord is one LIDAR point with the superset of fields across the
// supported point formats. Which fields are meaningful is fixed by the
// stream's PointFormat; fields outside the active format are ignored by the
// codecs and left zero by the decoders.
//
// Coordinates are the scaled integers stored on disk; applying scale/offset
// from the container header is the caller's concern.
type PointRecord struct {
	X int32
	Y int32
	Z int32

	Intensity uint16

	// ReturnInfo packs return number (bits 0-2), number of returns (bits 3-5),
	// scan direction flag (bit 6) and edge-of-flight-line flag (bit 7),
	// exactly as stored in the raw record.
	ReturnInfo uint8

	Classification uint8
	ScanAngle      int8
	UserData       uint8
	PointSourceID  uint16

	// GPSTime is present for PointFormat1 and PointFormat3.
	GPSTime float64

	// Red, Green, Blue are present for PointFormat2 and PointFormat3.
	Red   uint16
	Green uint16
	Blue  uint16

	// ExtraBytes is the opaque extra-byte payload. Its length is fixed per
	// stream by the configured extra-byte layout.
	ExtraBytes []byte
}

// ReturnNumber extracts the return number (1-7) from ReturnInfo.
func (p *PointRecord) ReturnNumber() uint8 {
	return p.ReturnInfo & 0x07
}

// NumberOfReturns extracts the number of returns (1-7) from ReturnInfo.
func (p *PointRecord) NumberOfReturns() uint8 {
	return (p.ReturnInfo >> 3) & 0x07
}

// ScanDirection extracts the scan direction flag from ReturnInfo.
func (p *PointRecord) ScanDirection() bool {
	return p.ReturnInfo&0x40 != 0
}

// EdgeOfFlightLine extracts the edge-of-flight-line flag from ReturnInfo.
func (p *PointRecord) EdgeOfFlightLine() bool {
	return p.ReturnInfo&0x80 != 0
}

// AppendTo appends the raw on-disk representation of the record for the given
// point format to buf and returns the extended slice.
//
// The layout matches the LAS point data record formats: core 20 bytes, then
// GPS time (formats 1 and 3), then RGB (formats 2 and 3), then extra bytes.
func (p *PointRecord) AppendTo(buf []byte, pf PointFormat, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, uint32(p.X)) //nolint:gosec
	buf = engine.AppendUint32(buf, uint32(p.Y)) //nolint:gosec
	buf = engine.AppendUint32(buf, uint32(p.Z)) //nolint:gosec
	buf = engine.AppendUint16(buf, p.Intensity)
	buf = append(buf, p.ReturnInfo, p.Classification, uint8(p.ScanAngle), p.UserData) //nolint:gosec
	buf = engine.AppendUint16(buf, p.PointSourceID)

	if pf.HasGPSTime() {
		buf = engine.AppendUint64(buf, math.Float64bits(p.GPSTime))
	}

	if pf.HasRGB() {
		buf = engine.AppendUint16(buf, p.Red)
		buf = engine.AppendUint16(buf, p.Green)
		buf = engine.AppendUint16(buf, p.Blue)
	}

	return append(buf, p.ExtraBytes...)
}

// ParseFrom fills the record from its raw on-disk representation.
//
// data must hold at least pf.RecordSize()+extraBytes bytes; the number of
// consumed bytes is returned. A short buffer yields ErrCorruptStream.
func (p *PointRecord) ParseFrom(data []byte, pf PointFormat, extraBytes int, engine endian.EndianEngine) (int, error) {
	recordSize := pf.RecordSize() + extraBytes
	if len(data) < recordSize {
		return 0, fmt.Errorf("record needs %d bytes, have %d: %w", recordSize, len(data), errs.ErrCorruptStream)
	}

	p.X = int32(engine.Uint32(data[0:4]))  //nolint:gosec
	p.Y = int32(engine.Uint32(data[4:8]))  //nolint:gosec
	p.Z = int32(engine.Uint32(data[8:12])) //nolint:gosec
	p.Intensity = engine.Uint16(data[12:14])
	p.ReturnInfo = data[14]
	p.Classification = data[15]
	p.ScanAngle = int8(data[16]) //nolint:gosec
	p.UserData = data[17]
	p.PointSourceID = engine.Uint16(data[18:20])

	offset := coreRecordSize
	if pf.HasGPSTime() {
		p.GPSTime = math.Float64frombits(engine.Uint64(data[offset : offset+8]))
		offset += gpsTimeSize
	}

	if pf.HasRGB() {
		p.Red = engine.Uint16(data[offset : offset+2])
		p.Green = engine.Uint16(data[offset+2 : offset+4])
		p.Blue = engine.Uint16(data[offset+4 : offset+6])
		offset += rgbSize
	}

	if extraBytes > 0 {
		if cap(p.ExtraBytes) < extraBytes {
			p.ExtraBytes = make([]byte, extraBytes)
		} else {
			p.ExtraBytes = p.ExtraBytes[:extraBytes]
		}
		copy(p.ExtraBytes, data[offset:offset+extraBytes])
	} else {
		p.ExtraBytes = nil
	}

	return recordSize, nil
}

// Equal reports whether two records carry identical values for the fields of
// the given point format, including the extra-byte payload.
func (p *PointRecord) Equal(other *PointRecord, pf PointFormat) bool {
	if p.X != other.X || p.Y != other.Y || p.Z != other.Z {
		return false
	}
	if p.Intensity != other.Intensity || p.ReturnInfo != other.ReturnInfo {
		return false
	}
	if p.Classification != other.Classification || p.ScanAngle != other.ScanAngle {
		return false
	}
	if p.UserData != other.UserData || p.PointSourceID != other.PointSourceID {
		return false
	}

	if pf.HasGPSTime() && math.Float64bits(p.GPSTime) != math.Float64bits(other.GPSTime) {
		return false
	}

	if pf.HasRGB() && (p.Red != other.Red || p.Green != other.Green || p.Blue != other.Blue) {
		return false
	}

	if len(p.ExtraBytes) != len(other.ExtraBytes) {
		return false
	}
	for i, b := range p.ExtraBytes {
		if other.ExtraBytes[i] != b {
			return false
		}
	}

	return true
}
