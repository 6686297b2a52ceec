// Package predictor implements the per-field predictive codecs: each point
// attribute is predicted from prior points' reconstructed values and only the
// residual is entropy-coded through the shared range coder.
//
// Every codec follows the same discipline:
//
//   - Encode and Decode perform the identical prediction from identical
//     history, so the residual stream is bit-for-bit symmetric.
//   - Residuals are computed in fixed-width integer arithmetic matching the
//     field's native width; overflow wraps per that width on both sides.
//   - All history starts from a zero seed; Reset restores it. The chunking
//     layer resets every codec at chunk boundaries, which is what makes
//     chunks independently decodable.
//
// Codecs own their probability models. Context selection (which sub-model
// codes the next residual) lives here, not in the models.
package predictor

import (
	"math/bits"

	"github.com/arloliu/lazpack/rangecoder"
)

// IntModel codes signed residuals of a fixed bit width through a set of
// context-selected models: the residual is zigzag-mapped, its significant bit
// count is coded through an adaptive tree, and the bits below the leading one
// are coded directly at even probability.
//
// Small residuals (the common case after good prediction) cost a few adaptive
// bits; the worst case degrades gracefully to width+treeBits bits.
type IntModel struct {
	trees []*rangecoder.TreeModel
	width uint
}

// NewIntModel creates a residual model for values of the given bit width
// (8, 16, 32 or 64) with the given number of contexts.
func NewIntModel(width uint, contexts int) *IntModel {
	if width == 0 || width > 64 {
		panic("predictor: residual width outside [1,64]")
	}
	if contexts < 1 {
		panic("predictor: at least one context required")
	}

	// Tree alphabet must cover bit counts 0..width.
	treeBits := uint(bits.Len(width))

	m := &IntModel{
		trees: make([]*rangecoder.TreeModel, contexts),
		width: width,
	}
	for i := range m.trees {
		m.trees[i] = rangecoder.NewTreeModel(treeBits)
	}

	return m
}

// Reset restores all contexts to their seed state.
func (m *IntModel) Reset() {
	for _, t := range m.trees {
		t.Reset()
	}
}

// Encode codes residual under the given context.
func (m *IntModel) Encode(e *rangecoder.Encoder, ctx int, residual int64) {
	u := uint64((residual << 1) ^ (residual >> 63)) //nolint:gosec
	k := uint(bits.Len64(u))

	m.trees[ctx].Encode(e, uint32(k)) //nolint:gosec
	if k > 1 {
		// MSB is implied by the bit count; code the rest directly.
		e.EncodeDirectBits64(u&(1<<(k-1)-1), k-1)
	}
}

// Decode decodes one residual under the given context. A bit count that
// cannot occur for this width marks the stream corrupt and returns zero.
func (m *IntModel) Decode(d *rangecoder.Decoder, ctx int) int64 {
	k := uint(m.trees[ctx].Decode(d))
	if k > m.width {
		d.MarkCorrupt("residual bit count exceeds field width")
		return 0
	}

	var u uint64
	if k > 0 {
		u = 1
		if k > 1 {
			u = 1<<(k-1) | d.DecodeDirectBits64(k-1)
		}
	}

	return int64(u>>1) ^ -int64(u&1) //nolint:gosec
}

// wrapResidual computes cur-pred in wrapping arithmetic of the given bit
// width and sign-extends the result. Both coder sides derive residuals this
// way so that values at the extremes of their native width round-trip.
func wrapResidual(cur, pred uint64, width uint) int64 {
	if width == 64 {
		return int64(cur - pred) //nolint:gosec
	}

	mask := uint64(1)<<width - 1
	diff := (cur - pred) & mask
	if diff>>(width-1) != 0 {
		diff |= ^mask // sign-extend
	}

	return int64(diff) //nolint:gosec
}

// applyResidual reverses wrapResidual: pred+residual wrapped to the width.
func applyResidual(pred uint64, residual int64, width uint) uint64 {
	v := pred + uint64(residual) //nolint:gosec
	if width < 64 {
		v &= uint64(1)<<width - 1
	}

	return v
}
