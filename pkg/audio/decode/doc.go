// ABOUTME: Package-level documentation for pkg/audio/decode
// ABOUTME: Lists the concrete decoders shipped with the core

// Package decode provides the Decoder interface and a small set of
// concrete implementations (PCM, WAV, MP3, Opus) that the Loader can use. The
// core's scope stops at the interface; new formats are added by writing a
// new Decoder, not by modifying the Loader.
package decode
