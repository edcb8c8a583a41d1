// ABOUTME: Package-level documentation for pkg/device
// ABOUTME: Lists the Output backends: OtoSink for real hardware, MemorySink for tests

// Package device implements the Device sink: the real-time
// callback that drains the Frame ring into variable-size device buffers.
// OtoSink drives real hardware through ebitengine/oto. MemorySink is a
// deterministic stand-in, reusing its output buffer across Pump calls
// (it grows only when a larger Pump is requested), used by tests and by anything
// that wants to drive playback without a sound card.
package device
