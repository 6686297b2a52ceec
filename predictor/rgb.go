package predictor

import "github.com/arloliu/lazpack/rangecoder"

// rgbCodec codes the three color channels with independent zero-order
// predictors, one model set per channel. Channels of real scans are
// correlated but drift independently, so sharing models across channels
// hurts more than it helps.
type rgbCodec struct {
	red   *deltaCodec
	green *deltaCodec
	blue  *deltaCodec
}

func newRGBCodec() *rgbCodec {
	return &rgbCodec{
		red:   newDeltaCodec(16),
		green: newDeltaCodec(16),
		blue:  newDeltaCodec(16),
	}
}

func (c *rgbCodec) Reset() {
	c.red.Reset()
	c.green.Reset()
	c.blue.Reset()
}

func (c *rgbCodec) Encode(e *rangecoder.Encoder, red, green, blue uint16) {
	c.red.Encode(e, uint64(red))
	c.green.Encode(e, uint64(green))
	c.blue.Encode(e, uint64(blue))
}

func (c *rgbCodec) Decode(d *rangecoder.Decoder) (red, green, blue uint16) {
	red = uint16(c.red.Decode(d))     //nolint:gosec
	green = uint16(c.green.Decode(d)) //nolint:gosec
	blue = uint16(c.blue.Decode(d))   //nolint:gosec

	return red, green, blue
}
