package predictor

import "github.com/arloliu/lazpack/rangecoder"

// extraBytesCodec codes the opaque extra-byte payload with one independent
// byte codec per position. The layout is fixed per stream, so position i of
// every record is the same logical attribute and gets its own model state.
type extraBytesCodec struct {
	codecs []*byteCodec
}

func newExtraBytesCodec(count int) *extraBytesCodec {
	c := &extraBytesCodec{
		codecs: make([]*byteCodec, count),
	}
	for i := range c.codecs {
		c.codecs[i] = newByteCodec()
	}

	return c
}

func (c *extraBytesCodec) Reset() {
	for _, bc := range c.codecs {
		bc.Reset()
	}
}

func (c *extraBytesCodec) Encode(e *rangecoder.Encoder, data []byte) {
	for i, bc := range c.codecs {
		bc.Encode(e, data[i])
	}
}

// Decode fills dst, which must have length equal to the configured count.
func (c *extraBytesCodec) Decode(d *rangecoder.Decoder, dst []byte) {
	for i, bc := range c.codecs {
		dst[i] = bc.Decode(d)
	}
}
