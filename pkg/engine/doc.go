// ABOUTME: Package-level documentation for pkg/engine
// ABOUTME: Wires Render loop, World control, Event bus, command channel, and stats together

// Package engine ties the render-thread-owned pieces (playback instances,
// the spatializer, the frame ring) to the control-thread-facing World
// facade. World is the only exported entry point a host
// program needs: it starts the render loop, owns the command channel and
// event bus, and opens the device sink.
package engine
