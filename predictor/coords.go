package predictor

import "github.com/arloliu/lazpack/rangecoder"

// Residuals with absolute value below this bound select the "small" context;
// the split keeps smooth terrain and noisy returns from polluting each
// other's statistics.
const smallResidualBound = 16

// coordCodec codes one scaled integer coordinate axis (x, y or z) with
// linear extrapolation: the prediction is last + lastDelta (delta-of-delta),
// and the residual context is chosen by the prior residual's magnitude.
//
// The first point of a chunk has zeroed history, so its prediction is zero
// and the raw value travels through the residual model as-is.
type coordCodec struct {
	model        *IntModel
	last         int32
	lastDelta    int32
	lastResidual int32
}

func newCoordCodec() *coordCodec {
	return &coordCodec{
		model: NewIntModel(32, 3),
	}
}

func (c *coordCodec) Reset() {
	c.model.Reset()
	c.last = 0
	c.lastDelta = 0
	c.lastResidual = 0
}

// ctx maps the prior residual to a model context: exact prediction, small
// miss, large miss.
func (c *coordCodec) ctx() int {
	switch {
	case c.lastResidual == 0:
		return 0
	case c.lastResidual > -smallResidualBound && c.lastResidual < smallResidualBound:
		return 1
	default:
		return 2
	}
}

func (c *coordCodec) Encode(e *rangecoder.Encoder, v int32) {
	pred := c.last + c.lastDelta
	residual := v - pred // wraps per int32, mirrored on decode

	c.model.Encode(e, c.ctx(), int64(residual))

	c.lastResidual = residual
	c.lastDelta = v - c.last
	c.last = v
}

func (c *coordCodec) Decode(d *rangecoder.Decoder) int32 {
	pred := c.last + c.lastDelta
	residual := int32(c.model.Decode(d, c.ctx())) //nolint:gosec
	v := pred + residual

	c.lastResidual = residual
	c.lastDelta = v - c.last
	c.last = v

	return v
}
