// ABOUTME: Package-level documentation for pkg/spatial
// ABOUTME: Lists the Spatializer backends and the scope of the ray-tracing collaborator

// Package spatial defines the Spatializer capability the render loop calls
// once per block for all Playing spatial sources, plus the two backends
// shipped with the core: Panning (a cheap mock, used by default and by
// tests) and SteamAudio (the adapter shape a real HRTF/ambisonics engine
// sits behind — no native bindings are vendored here).
package spatial
