// Package format defines the point record schema shared by every layer of the
// engine: LAS point formats 0-3 with optional extra bytes, the raw on-disk
// record layout, and the stream configuration that fixes both at open time.
package format

type (
	// PointFormat identifies a LAS point data record format. It fixes the set
	// of fields a record carries and is immutable for the lifetime of a stream.
	PointFormat uint8

	// EncodingType selects how chunk payloads are produced.
	EncodingType uint8

	// CompressionType selects the general-purpose codec applied to raw-mode
	// chunk payloads. It is ignored for predictive encoding, whose output is
	// already entropy-coded.
	CompressionType uint8
)

const (
	// PointFormat0 carries the core fields: x/y/z, intensity, return info,
	// classification, scan angle, user data and point source id.
	PointFormat0 PointFormat = 0
	// PointFormat1 is PointFormat0 plus GPS time.
	PointFormat1 PointFormat = 1
	// PointFormat2 is PointFormat0 plus RGB color.
	PointFormat2 PointFormat = 2
	// PointFormat3 is PointFormat0 plus GPS time and RGB color.
	PointFormat3 PointFormat = 3

	// TypePredictive encodes chunks through the per-field predictors and the
	// binary range coder. This is the default and the LAZ-style path.
	TypePredictive EncodingType = 0x1
	// TypeRaw stores chunks as concatenated raw point records, optionally
	// passed through a general-purpose compressor (see CompressionType).
	TypeRaw EncodingType = 0x2

	CompressionNone CompressionType = 0x1 // CompressionNone stores raw chunks uncompressed.
	CompressionZstd CompressionType = 0x2 // CompressionZstd applies Zstandard to raw chunks.
	CompressionS2   CompressionType = 0x3 // CompressionS2 applies S2 to raw chunks.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 applies LZ4 block compression to raw chunks.
)

// coreRecordSize is the byte size of a PointFormat0 record on disk.
const coreRecordSize = 20

// gpsTimeSize and rgbSize are the byte sizes of the optional field groups.
const (
	gpsTimeSize = 8
	rgbSize     = 6
)

// Valid reports whether the point format id is one this engine has a codec
// set for.
func (pf PointFormat) Valid() bool {
	return pf <= PointFormat3
}

// HasGPSTime reports whether records of this format carry a GPS time field.
func (pf PointFormat) HasGPSTime() bool {
	return pf == PointFormat1 || pf == PointFormat3
}

// HasRGB reports whether records of this format carry RGB color fields.
func (pf PointFormat) HasRGB() bool {
	return pf == PointFormat2 || pf == PointFormat3
}

// RecordSize returns the raw on-disk size in bytes of a record of this
// format, excluding extra bytes.
func (pf PointFormat) RecordSize() int {
	size := coreRecordSize
	if pf.HasGPSTime() {
		size += gpsTimeSize
	}
	if pf.HasRGB() {
		size += rgbSize
	}

	return size
}

func (pf PointFormat) String() string {
	switch pf {
	case PointFormat0:
		return "PointFormat0"
	case PointFormat1:
		return "PointFormat1"
	case PointFormat2:
		return "PointFormat2"
	case PointFormat3:
		return "PointFormat3"
	default:
		return "Unknown"
	}
}

func (e EncodingType) String() string {
	switch e {
	case TypePredictive:
		return "Predictive"
	case TypeRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
