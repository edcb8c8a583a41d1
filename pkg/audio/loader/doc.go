// ABOUTME: Package-level documentation for pkg/audio/loader
// ABOUTME: Describes the decode -> downmix -> resample -> normalize pipeline

// Package loader builds audio.Buffer values from encoded bytes. It is the
// only place in the engine that allocates freely on every call; everything
// it produces is handed, read-only, to the render thread via World
// Control's RegisterBuffer command.
package loader
