package rangecoder

// The coder works on fixed-precision constants. Changing any of them changes
// renormalization timing and breaks bit-exact symmetry between encoder and
// decoder, so they are spelled out here once and shared by both sides:
//
//   - 32-bit range register, renormalized below the 24-bit threshold
//   - 11-bit probability scale
//   - adaptation shift of 5 (move ~3% toward the observed bit per update)
const (
	// ProbBits is the bit width of the probability scale.
	ProbBits = 11

	// ProbScale is the total probability mass (1 << ProbBits).
	ProbScale = 1 << ProbBits

	// ProbInit is the initial "no knowledge" estimate: p(bit=1) = 0.5.
	ProbInit = ProbScale / 2

	// moveBits controls adaptation speed on each update.
	moveBits = 5

	// topValue is the renormalization threshold of the range register.
	topValue = 1 << 24
)

// BitModel is an adaptive estimate of the probability that the next coded bit
// is zero, on the ProbScale scale. The coder updates it after every bit, so
// the estimate tracks recent history with exponential decay.
//
// Models are cheap to create and reset; predictors hold one per (field,
// sub-context) pair and reset them at chunk boundaries.
type BitModel uint16

// NewBitModel returns a model initialized to the even estimate.
func NewBitModel() BitModel {
	return ProbInit
}

// Reset restores the even estimate.
func (m *BitModel) Reset() {
	*m = ProbInit
}

// TreeModel codes fixed-width symbols MSB-first over a binary tree of bit
// models, one model per tree node. A symbol of n bits costs n adaptive binary
// decisions, each conditioned on the bits already coded, which makes small
// alphabets (classification bytes, residual bit counts) adapt quickly.
type TreeModel struct {
	probs []BitModel
	bits  uint
}

// NewTreeModel creates a tree model for symbols of the given bit width.
// Width must be in [1, 16]; wider alphabets are coded as bit count plus
// direct bits by the callers instead.
func NewTreeModel(bits uint) *TreeModel {
	if bits < 1 || bits > 16 {
		panic("rangecoder: tree model bits outside [1,16]")
	}

	t := &TreeModel{
		probs: make([]BitModel, 1<<bits),
		bits:  bits,
	}
	t.Reset()

	return t
}

// Reset restores every node to the even estimate.
func (t *TreeModel) Reset() {
	for i := range t.probs {
		t.probs[i] = ProbInit
	}
}

// Bits returns the symbol width of the tree.
func (t *TreeModel) Bits() uint {
	return t.bits
}

// Encode codes symbol through the tree. Symbols outside the tree's alphabet
// are a programmer error and panic.
func (t *TreeModel) Encode(e *Encoder, symbol uint32) {
	if symbol >= uint32(len(t.probs)) {
		panic("rangecoder: symbol out of tree model range")
	}

	m := uint32(1)
	for i := int(t.bits) - 1; i >= 0; i-- {
		b := (symbol >> uint(i)) & 1
		e.EncodeBit(&t.probs[m], b)
		m = m<<1 | b
	}
}

// Decode decodes one symbol from the tree.
func (t *TreeModel) Decode(d *Decoder) uint32 {
	m := uint32(1)
	for i := uint(0); i < t.bits; i++ {
		m = m<<1 | d.DecodeBit(&t.probs[m])
	}

	return m - uint32(len(t.probs))
}
