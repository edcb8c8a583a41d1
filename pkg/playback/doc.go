// ABOUTME: Package-level documentation for pkg/playback
// ABOUTME: Describes the per-source state machine owned by the render thread

// Package playback implements the per-source state machine: play state,
// loop mode, playhead, and the tagged spatial/non-spatial configuration
// variant. Instances are exclusively owned and mutated by the render
// thread; no synchronization lives in this package.
package playback
