package predictor

import "github.com/arloliu/lazpack/rangecoder"

// byteCodec codes a small-alphabet byte field (classification, packed return
// info, user data) as symbols over a tight alphabet model rather than as raw
// residuals. The common case — the field repeats the previous point's value —
// costs a single adaptive bit; otherwise the full byte is coded through an
// 8-bit tree. Both the repeat bit and the tree are conditioned on whether the
// previous point changed the field.
type byteCodec struct {
	changed     [2]rangecoder.BitModel
	trees       [2]*rangecoder.TreeModel
	last        uint8
	lastChanged bool
}

func newByteCodec() *byteCodec {
	c := &byteCodec{
		trees: [2]*rangecoder.TreeModel{
			rangecoder.NewTreeModel(8),
			rangecoder.NewTreeModel(8),
		},
	}
	c.changed[0] = rangecoder.NewBitModel()
	c.changed[1] = rangecoder.NewBitModel()

	return c
}

func (c *byteCodec) Reset() {
	c.changed[0].Reset()
	c.changed[1].Reset()
	c.trees[0].Reset()
	c.trees[1].Reset()
	c.last = 0
	c.lastChanged = false
}

// Last returns the previously coded value. Callers that need cross-field
// context (GPS time's return-pattern check) read it before coding the
// current point's value.
func (c *byteCodec) Last() uint8 {
	return c.last
}

func (c *byteCodec) ctx() int {
	if c.lastChanged {
		return 1
	}

	return 0
}

func (c *byteCodec) Encode(e *rangecoder.Encoder, v uint8) {
	ctx := c.ctx()
	if v == c.last {
		e.EncodeBit(&c.changed[ctx], 0)
		c.lastChanged = false

		return
	}

	e.EncodeBit(&c.changed[ctx], 1)
	c.trees[ctx].Encode(e, uint32(v))
	c.lastChanged = true
	c.last = v
}

func (c *byteCodec) Decode(d *rangecoder.Decoder) uint8 {
	ctx := c.ctx()
	if d.DecodeBit(&c.changed[ctx]) == 0 {
		c.lastChanged = false

		return c.last
	}

	v := uint8(c.trees[ctx].Decode(d)) //nolint:gosec
	c.lastChanged = true
	c.last = v

	return v
}
