// ABOUTME: Build-time version identification constants
package version

const (
	// Version is the engine's semantic version.
	Version = "0.1.0"
	// Product names the runtime for diagnostics and client handshakes.
	Product = "spatialengine"
	// Manufacturer identifies the project for external tooling.
	Manufacturer = "vectoraudio"
)
