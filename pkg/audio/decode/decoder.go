// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders consumed by the loader

// Package decode implements the Loader's decoder collaborator (the core
// does not prescribe a format list; any type satisfying Decoder works).
package decode

// Decoder decodes a complete in-memory encoded blob to interleaved float32
// PCM, self-reporting the rate and channel count it decoded at. The core
// treats decoders as an external collaborator — streaming decode of long
// files is explicitly out of scope.
type Decoder interface {
	// Decode converts encoded audio bytes to interleaved float32 samples,
	// returning the source sample rate and channel count.
	Decode(data []byte) (rate, channels int, samples []float32, err error)
}
