package compress

// ZstdCodec applies Zstandard compression to raw chunk payloads. Best
// compression ratio of the supported codecs; the usual pick for archival
// streams read back infrequently.
//
// Two implementations exist behind build tags: the default pure-Go
// klauspost/compress encoder, and a cgo-backed valyala/gozstd variant
// (build tag "gozstd") for pipelines that already link libzstd.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)
