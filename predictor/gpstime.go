package predictor

import (
	"math"

	"github.com/arloliu/lazpack/rangecoder"
)

// gpsTimeCodec codes the GPS time field over its raw float64 bits.
//
// Two predictions are in play, selected by whether the current point shares
// the previous point's return-number pattern:
//
//   - different pattern: zero-order hold (previous bits)
//   - same pattern: linear extrapolation (previous bits + previous delta),
//     which lands exactly on regularly sampled pulses
//
// Each prediction context carries its own "unchanged" bit model and residual
// models, so misses in one regime don't degrade the other. Residuals are
// 64-bit wrapping differences of the raw bit patterns, which keeps the codec
// lossless for every float64 including NaNs and negative zero.
type gpsTimeCodec struct {
	changed   [2]rangecoder.BitModel
	model     *IntModel
	last      uint64
	lastDelta int64
	count     int
}

func newGPSTimeCodec() *gpsTimeCodec {
	c := &gpsTimeCodec{
		model: NewIntModel(64, 2),
	}
	c.changed[0] = rangecoder.NewBitModel()
	c.changed[1] = rangecoder.NewBitModel()

	return c
}

func (c *gpsTimeCodec) Reset() {
	c.changed[0].Reset()
	c.changed[1].Reset()
	c.model.Reset()
	c.last = 0
	c.lastDelta = 0
	c.count = 0
}

// predict returns the context and predicted bit pattern. Extrapolation needs
// two prior points to have established a delta.
func (c *gpsTimeCodec) predict(sameReturnPattern bool) (int, uint64) {
	if sameReturnPattern && c.count >= 2 {
		return 1, c.last + uint64(c.lastDelta) //nolint:gosec
	}

	return 0, c.last
}

func (c *gpsTimeCodec) Encode(e *rangecoder.Encoder, t float64, sameReturnPattern bool) {
	v := math.Float64bits(t)
	ctx, pred := c.predict(sameReturnPattern)

	if v == pred {
		e.EncodeBit(&c.changed[ctx], 0)
	} else {
		e.EncodeBit(&c.changed[ctx], 1)
		c.model.Encode(e, ctx, int64(v-pred)) //nolint:gosec
	}

	if c.count > 0 {
		c.lastDelta = int64(v - c.last) //nolint:gosec
	}
	c.last = v
	c.count++
}

func (c *gpsTimeCodec) Decode(d *rangecoder.Decoder, sameReturnPattern bool) float64 {
	ctx, pred := c.predict(sameReturnPattern)

	v := pred
	if d.DecodeBit(&c.changed[ctx]) != 0 {
		v = pred + uint64(c.model.Decode(d, ctx)) //nolint:gosec
	}

	if c.count > 0 {
		c.lastDelta = int64(v - c.last) //nolint:gosec
	}
	c.last = v
	c.count++

	return math.Float64frombits(v)
}
