// ABOUTME: Package-level documentation for pkg/netctl
// ABOUTME: A WebSocket remote control surface mirroring World's command/event protocol

// Package netctl exposes a World over WebSocket:
// remote clients send play/pause/stop/unregister/set-listener-pose
// requests as JSON messages, and receive every event World.PollEvents
// produces, broadcast as they are drained. Audio registration stays a
// local, in-process operation (the Loader allocates freely and is not
// meant to ship large PCM blobs over a control socket); netctl only
// drives sources the host process has already registered.
package netctl
