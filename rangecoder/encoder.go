// Package rangecoder implements the binary range coder and its adaptive
// probability models, the entropy layer underneath every field predictor.
//
// The coder maintains a shrinking interval [low, low+range). Each coded bit
// narrows the interval proportionally to the model's current estimate and
// renormalizes by emitting (or consuming) bytes whenever the range register
// drops below the 24-bit threshold. Encoding and decoding are exact mirrors:
// the same sequence of model states and bits always produces, and is always
// reproduced from, the same bytes. That symmetry is the correctness contract
// the whole engine rests on, which is why all interval arithmetic uses
// fixed-width 32-bit registers rather than anything wider.
package rangecoder

import "github.com/arloliu/lazpack/internal/pool"

// Encoder is the encode side of the range coder. It appends compressed bytes
// to a pooled buffer owned by the encoder.
//
// An Encoder is not safe for concurrent use; chunk-level parallelism owns one
// Encoder per in-flight chunk.
type Encoder struct {
	buf       *pool.ByteBuffer
	low       uint64
	rng       uint32
	cache     byte
	cacheSize int64
}

// NewEncoder creates an encoder with a pooled output buffer.
func NewEncoder() *Encoder {
	e := &Encoder{
		buf: pool.GetChunkBuffer(),
	}
	e.Reset()

	return e
}

// Reset clears coder state and the output buffer, preparing the encoder for a
// new self-contained byte stream (a new chunk).
func (e *Encoder) Reset() {
	e.buf.Reset()
	e.low = 0
	e.rng = 0xFFFFFFFF
	e.cache = 0
	e.cacheSize = 1
}

// EncodeBit codes one bit under the given adaptive model and updates the
// model toward the observed bit.
func (e *Encoder) EncodeBit(m *BitModel, bit uint32) {
	bound := (e.rng >> ProbBits) * uint32(*m)

	if bit == 0 {
		e.rng = bound
		*m += (ProbScale - *m) >> moveBits
	} else {
		e.low += uint64(bound)
		e.rng -= bound
		*m -= *m >> moveBits
	}

	for e.rng < topValue {
		e.rng <<= 8
		e.shiftLow()
	}
}

// EncodeDirectBits codes the low numBits bits of v with fixed 50/50
// probability, MSB first. Used for residual payload bits below the adaptive
// significant-bit threshold, where adaptation buys nothing.
func (e *Encoder) EncodeDirectBits(v uint32, numBits uint) {
	for i := int(numBits) - 1; i >= 0; i-- {
		e.rng >>= 1
		if (v>>uint(i))&1 == 1 {
			e.low += uint64(e.rng)
		}

		if e.rng < topValue {
			e.rng <<= 8
			e.shiftLow()
		}
	}
}

// EncodeDirectBits64 codes up to 64 direct bits, MSB first.
func (e *Encoder) EncodeDirectBits64(v uint64, numBits uint) {
	if numBits > 32 {
		e.EncodeDirectBits(uint32(v>>32), numBits-32)
		numBits = 32
	}

	e.EncodeDirectBits(uint32(v), numBits) //nolint:gosec
}

// Flush terminates the byte stream. Five shift-outs push the remaining
// interval state through the carry cache, after which Bytes returns a
// self-contained stream a Decoder can fully reproduce.
func (e *Encoder) Flush() {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
}

// Bytes returns the encoded byte stream. The slice is valid until the next
// Reset or Finish; callers that keep chunk bytes must copy them out.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of bytes emitted so far.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Finish returns the output buffer to the pool. The encoder is unusable
// afterwards; create a new one for further encoding.
func (e *Encoder) Finish() {
	pool.PutChunkBuffer(e.buf)
	e.buf = nil
}

// shiftLow emits the settled top byte of low, propagating any pending carry
// through the cached 0xFF run.
func (e *Encoder) shiftLow() {
	if uint32(e.low) < 0xFF000000 || e.low>>32 != 0 {
		temp := e.cache
		for {
			e.buf.AppendByte(temp + byte(e.low>>32))
			temp = 0xFF
			e.cacheSize--
			if e.cacheSize == 0 {
				break
			}
		}
		e.cache = byte(e.low >> 24)
	}

	e.cacheSize++
	e.low = uint64(uint32(e.low) << 8)
}
