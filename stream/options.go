package stream

import (
	"github.com/arloliu/lazpack/format"
	"github.com/arloliu/lazpack/internal/options"
)

// Option configures a stream Writer or Reader. Writer and reader of one
// stream must be configured identically; disagreements surface at open time
// as errs.ErrConfigurationMismatch or on decode as errs.ErrCorruptStream.
type Option = options.Option[*format.Config]

// WithConfig replaces the whole configuration at once. Later options still
// apply on top of it.
func WithConfig(cfg format.Config) Option {
	return options.NoError(func(c *format.Config) {
		*c = cfg
	})
}

// WithPointFormat sets the LAS point data record format id.
func WithPointFormat(pf format.PointFormat) Option {
	return options.NoError(func(c *format.Config) {
		c.PointFormat = pf
	})
}

// WithExtraBytes sets the number of opaque extra bytes trailing each record.
func WithExtraBytes(count int) Option {
	return options.NoError(func(c *format.Config) {
		c.ExtraByteCount = count
	})
}

// WithChunkSize sets the number of points per chunk.
func WithChunkSize(size int) Option {
	return options.NoError(func(c *format.Config) {
		c.ChunkSize = size
	})
}

// WithEncoding selects predictive or raw chunk payloads.
func WithEncoding(t format.EncodingType) Option {
	return options.NoError(func(c *format.Config) {
		c.Encoding = t
	})
}

// WithCompression selects the general-purpose codec for raw chunk payloads.
func WithCompression(ct format.CompressionType) Option {
	return options.NoError(func(c *format.Config) {
		c.Compression = ct
	})
}

// buildConfig applies opts over the default configuration and validates the
// result.
func buildConfig(opts []Option) (format.Config, error) {
	cfg := format.DefaultConfig(format.PointFormat0)
	if err := options.Apply(&cfg, opts...); err != nil {
		return format.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return format.Config{}, err
	}

	return cfg, nil
}
