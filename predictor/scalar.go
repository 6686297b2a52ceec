package predictor

import "github.com/arloliu/lazpack/rangecoder"

// deltaCodec codes a fixed-width unsigned field (intensity, scan angle bits,
// point source id, color channel) with a zero-order hold: the prediction is
// the previous value and the residual is entropy-coded. Two contexts split
// the statistics by whether the prior residual was zero.
type deltaCodec struct {
	model       *IntModel
	width       uint
	last        uint64
	lastNonzero bool
}

func newDeltaCodec(width uint) *deltaCodec {
	return &deltaCodec{
		model: NewIntModel(width, 2),
		width: width,
	}
}

func (c *deltaCodec) Reset() {
	c.model.Reset()
	c.last = 0
	c.lastNonzero = false
}

func (c *deltaCodec) ctx() int {
	if c.lastNonzero {
		return 1
	}

	return 0
}

func (c *deltaCodec) Encode(e *rangecoder.Encoder, v uint64) {
	ctx := c.ctx()
	residual := wrapResidual(v, c.last, c.width)

	c.model.Encode(e, ctx, residual)

	c.lastNonzero = residual != 0
	c.last = v
}

func (c *deltaCodec) Decode(d *rangecoder.Decoder) uint64 {
	ctx := c.ctx()
	residual := c.model.Decode(d, ctx)
	v := applyResidual(c.last, residual, c.width)

	c.lastNonzero = residual != 0
	c.last = v

	return v
}
