package predictor

import (
	"fmt"

	"github.com/arloliu/lazpack/errs"
	"github.com/arloliu/lazpack/format"
	"github.com/arloliu/lazpack/rangecoder"
)

// returnPatternMask selects the return number and number-of-returns bits of
// the packed return info byte, the pattern GPS time extrapolation keys on.
const returnPatternMask = 0x3F

// RecordCodec sequences one point record through the field codecs of the
// active point format. The codec set is built once from the configuration at
// stream open; per-point dispatch is a fixed call sequence, not runtime type
// inspection.
//
// Field order is fixed and identical on both sides: coordinates, intensity,
// return info, classification, scan angle, user data, point source id, then
// GPS time and RGB when the format carries them, then extra bytes. GPS time
// comes after return info because its prediction context depends on the
// current point's (already coded) return pattern.
//
// A RecordCodec owns mutable model state and is not safe for concurrent use;
// chunk-level parallelism creates one RecordCodec per in-flight chunk.
type RecordCodec struct {
	cfg format.Config

	x *coordCodec
	y *coordCodec
	z *coordCodec

	intensity      *deltaCodec
	returns        *byteCodec
	classification *byteCodec
	scanAngle      *deltaCodec
	userData       *byteCodec
	pointSource    *deltaCodec

	gpsTime *gpsTimeCodec
	rgb     *rgbCodec
	extra   *extraBytesCodec
}

// NewRecordCodec builds the codec set for the configured point format.
//
// Returns errs.ErrUnsupportedPointFormat for a format id with no codec set,
// and errs.ErrInvalidConfig for a negative extra-byte count. Both surface
// before any bytes are produced or consumed.
func NewRecordCodec(cfg format.Config) (*RecordCodec, error) {
	if !cfg.PointFormat.Valid() {
		return nil, fmt.Errorf("point format %d: %w", cfg.PointFormat, errs.ErrUnsupportedPointFormat)
	}

	if cfg.ExtraByteCount < 0 {
		return nil, fmt.Errorf("extra byte count %d: %w", cfg.ExtraByteCount, errs.ErrInvalidConfig)
	}

	c := &RecordCodec{
		cfg:            cfg,
		x:              newCoordCodec(),
		y:              newCoordCodec(),
		z:              newCoordCodec(),
		intensity:      newDeltaCodec(16),
		returns:        newByteCodec(),
		classification: newByteCodec(),
		scanAngle:      newDeltaCodec(8),
		userData:       newByteCodec(),
		pointSource:    newDeltaCodec(16),
	}

	if cfg.PointFormat.HasGPSTime() {
		c.gpsTime = newGPSTimeCodec()
	}

	if cfg.PointFormat.HasRGB() {
		c.rgb = newRGBCodec()
	}

	if cfg.ExtraByteCount > 0 {
		c.extra = newExtraBytesCodec(cfg.ExtraByteCount)
	}

	return c, nil
}

// Config returns the configuration the codec set was built from.
func (c *RecordCodec) Config() format.Config {
	return c.cfg
}

// Reset restores every field codec to its seed state. The chunking layer
// calls this at the start of every chunk.
func (c *RecordCodec) Reset() {
	c.x.Reset()
	c.y.Reset()
	c.z.Reset()
	c.intensity.Reset()
	c.returns.Reset()
	c.classification.Reset()
	c.scanAngle.Reset()
	c.userData.Reset()
	c.pointSource.Reset()

	if c.gpsTime != nil {
		c.gpsTime.Reset()
	}
	if c.rgb != nil {
		c.rgb.Reset()
	}
	if c.extra != nil {
		c.extra.Reset()
	}
}

// EncodePoint codes one record through the field codecs.
//
// Returns errs.ErrConfigurationMismatch when the record's extra-byte payload
// does not match the configured layout.
func (c *RecordCodec) EncodePoint(e *rangecoder.Encoder, p *format.PointRecord) error {
	if len(p.ExtraBytes) != c.cfg.ExtraByteCount {
		return fmt.Errorf("record has %d extra bytes, stream declares %d: %w",
			len(p.ExtraBytes), c.cfg.ExtraByteCount, errs.ErrConfigurationMismatch)
	}

	c.x.Encode(e, p.X)
	c.y.Encode(e, p.Y)
	c.z.Encode(e, p.Z)
	c.intensity.Encode(e, uint64(p.Intensity))

	prevReturns := c.returns.Last()
	c.returns.Encode(e, p.ReturnInfo)

	c.classification.Encode(e, p.Classification)
	c.scanAngle.Encode(e, uint64(uint8(p.ScanAngle))) //nolint:gosec
	c.userData.Encode(e, p.UserData)
	c.pointSource.Encode(e, uint64(p.PointSourceID))

	if c.gpsTime != nil {
		same := prevReturns&returnPatternMask == p.ReturnInfo&returnPatternMask
		c.gpsTime.Encode(e, p.GPSTime, same)
	}

	if c.rgb != nil {
		c.rgb.Encode(e, p.Red, p.Green, p.Blue)
	}

	if c.extra != nil {
		c.extra.Encode(e, p.ExtraBytes)
	}

	return nil
}

// DecodePoint reconstructs one record, mirroring EncodePoint exactly.
// Decode errors surface through the decoder's sticky error, checked by the
// chunking layer after each point.
func (c *RecordCodec) DecodePoint(d *rangecoder.Decoder, p *format.PointRecord) {
	p.X = c.x.Decode(d)
	p.Y = c.y.Decode(d)
	p.Z = c.z.Decode(d)
	p.Intensity = uint16(c.intensity.Decode(d)) //nolint:gosec

	prevReturns := c.returns.Last()
	p.ReturnInfo = c.returns.Decode(d)

	p.Classification = c.classification.Decode(d)
	p.ScanAngle = int8(uint8(c.scanAngle.Decode(d))) //nolint:gosec
	p.UserData = c.userData.Decode(d)
	p.PointSourceID = uint16(c.pointSource.Decode(d)) //nolint:gosec

	if c.gpsTime != nil {
		same := prevReturns&returnPatternMask == p.ReturnInfo&returnPatternMask
		p.GPSTime = c.gpsTime.Decode(d, same)
	} else {
		p.GPSTime = 0
	}

	if c.rgb != nil {
		p.Red, p.Green, p.Blue = c.rgb.Decode(d)
	} else {
		p.Red, p.Green, p.Blue = 0, 0, 0
	}

	if c.extra != nil {
		if cap(p.ExtraBytes) < c.cfg.ExtraByteCount {
			p.ExtraBytes = make([]byte, c.cfg.ExtraByteCount)
		} else {
			p.ExtraBytes = p.ExtraBytes[:c.cfg.ExtraByteCount]
		}
		c.extra.Decode(d, p.ExtraBytes)
	} else {
		p.ExtraBytes = nil
	}
}
