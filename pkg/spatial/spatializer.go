// ABOUTME: Spatializer capability interface: HRTF/ambisonics pipeline driven by an external spatial engine
// ABOUTME: Polymorphic so a panning mock can back tests while a real HRTF engine backs production

// Package spatial defines the Spatializer capability and
// ships two implementations: Panning, a cheap stereo-pan mock suitable for
// tests and headless demos, and SteamAudio, an adapter shape for a real
// HRTF/ambisonics engine. Neither implementation is real-time-required —
// both run on the render thread, which tolerates occasional latency spikes
// from this component.
package spatial

// Vec3 is a right-handed, y-up position in meters.
type Vec3 struct {
	X, Y, Z float32
}

// Quat is a unit quaternion orientation.
type Quat struct {
	X, Y, Z, W float32
}

// Pose is a listener pose: position plus orientation.
type Pose struct {
	Position    Vec3
	Orientation Quat
}

// IdentityPose is the default listener pose: origin, identity orientation.
func IdentityPose() Pose {
	return Pose{Orientation: Quat{W: 1}}
}

// SourceInput is one spatial source's contribution to a render block: its
// id, a mono scratch buffer of exactly block-size samples (gain already
// applied by the render loop), and the gain value for reference.
type SourceInput struct {
	ID     uint64
	Mono   []float32
	Gain   float32
}

// Spatializer is the capability every spatial backend must satisfy: HRTF
// direct-effect plus ambisonic encode/decode to interleaved stereo. No
// Process call may allocate after Prepare.
type Spatializer interface {
	// Prepare initializes HRTF data, the ambisonic decoder, and internal
	// scratch buffers for the given output format. It fails if the
	// rate/channel combination is unsupported.
	Prepare(rate, blockSize, outChannels int) error

	// CreateSource allocates per-source direct-effect and ambisonic-encode
	// state, pre-allocated so Process never allocates.
	CreateSource(id uint64, initial Vec3) error

	// DestroySource releases per-source state.
	DestroySource(id uint64)

	// SetListener updates the shared listener pose.
	SetListener(pose Pose)

	// SetSourcePosition updates one source's position; callable while the
	// source is playing.
	SetSourcePosition(id uint64, pos Vec3)

	// Process renders all given spatial inputs for one block, writing the
	// interleaved stereo result into out (len == blockSize*outChannels).
	// Process overwrites out; mixing with non-spatial sources happens
	// outside the Spatializer.
	Process(inputs []SourceInput, out []float32) error
}
