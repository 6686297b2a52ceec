package rangecoder

import (
	"fmt"

	"github.com/arloliu/lazpack/errs"
)

// Decoder is the decode side of the range coder. It consumes a self-contained
// byte stream produced by an Encoder.
//
// Errors are sticky: once the source underflows (or a caller marks the stream
// corrupt), every subsequent DecodeBit returns zeros and Err reports
// errs.ErrCorruptStream. This keeps the per-bit hot path free of error
// returns; callers check Err at record or chunk granularity.
type Decoder struct {
	data []byte
	pos  int
	rng  uint32
	code uint32
	err  error
}

// NewDecoder creates a decoder over data and primes the code register.
//
// The first stream byte is always zero (the encoder's carry cache seed); a
// nonzero value means the bytes are not a range coder stream and the decoder
// starts out corrupt.
func NewDecoder(data []byte) *Decoder {
	d := &Decoder{}
	d.Reset(data)

	return d
}

// Reset re-primes the decoder over a new byte stream, clearing any sticky
// error.
func (d *Decoder) Reset(data []byte) {
	d.data = data
	d.pos = 0
	d.rng = 0xFFFFFFFF
	d.code = 0
	d.err = nil

	if b := d.readByte(); b != 0 && d.err == nil {
		d.err = fmt.Errorf("stream does not start with zero byte: %w", errs.ErrCorruptStream)
	}
	for i := 0; i < 4; i++ {
		d.code = d.code<<8 | uint32(d.readByte())
	}
}

// DecodeBit decodes one bit under the given adaptive model, updating the
// model exactly as the encode side did.
func (d *Decoder) DecodeBit(m *BitModel) uint32 {
	bound := (d.rng >> ProbBits) * uint32(*m)

	var bit uint32
	if d.code < bound {
		d.rng = bound
		*m += (ProbScale - *m) >> moveBits
	} else {
		d.code -= bound
		d.rng -= bound
		*m -= *m >> moveBits
		bit = 1
	}

	for d.rng < topValue {
		d.code = d.code<<8 | uint32(d.readByte())
		d.rng <<= 8
	}

	return bit
}

// DecodeDirectBits decodes numBits fixed-probability bits, MSB first.
func (d *Decoder) DecodeDirectBits(numBits uint) uint32 {
	var v uint32
	for i := uint(0); i < numBits; i++ {
		d.rng >>= 1
		t := (d.code - d.rng) >> 31
		d.code -= d.rng & (t - 1)
		v = v<<1 | (1 - t)

		if d.rng < topValue {
			d.code = d.code<<8 | uint32(d.readByte())
			d.rng <<= 8
		}
	}

	return v
}

// DecodeDirectBits64 decodes up to 64 direct bits, MSB first.
func (d *Decoder) DecodeDirectBits64(numBits uint) uint64 {
	var v uint64
	if numBits > 32 {
		v = uint64(d.DecodeDirectBits(numBits-32)) << 32
		numBits = 32
	}

	return v | uint64(d.DecodeDirectBits(numBits))
}

// MarkCorrupt records a corruption detected above the coder (an impossible
// symbol, a count that cannot occur in a valid stream). The error sticks.
func (d *Decoder) MarkCorrupt(reason string) {
	if d.err == nil {
		d.err = fmt.Errorf("%s: %w", reason, errs.ErrCorruptStream)
	}
}

// Err returns the sticky error, or nil if the stream has decoded cleanly so
// far.
func (d *Decoder) Err() error {
	return d.err
}

// Finish reports the final state of the decode: nil if the stream decoded
// cleanly, errs.ErrCorruptStream if renormalization underflowed or a caller
// marked the stream corrupt.
func (d *Decoder) Finish() error {
	return d.err
}

// readByte consumes the next source byte, or flags underflow once the source
// is exhausted.
func (d *Decoder) readByte() byte {
	if d.pos >= len(d.data) {
		if d.err == nil {
			d.err = fmt.Errorf("range decoder underflow at byte %d: %w", d.pos, errs.ErrCorruptStream)
		}

		return 0
	}

	b := d.data[d.pos]
	d.pos++

	return b
}
