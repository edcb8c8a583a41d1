// ABOUTME: Stereo-panning mock Spatializer backing tests and headless demos
// ABOUTME: Approximates the direct effect (distance attenuation) plus a simple binaural pan, no real HRTF convolution
package spatial

import (
	"fmt"
	"math"
)

type panningSourceState struct {
	position Vec3
}

// Panning is a cheap Spatializer: per-source distance attenuation plus a
// left/right pan derived from azimuth relative to the listener, in place of
// HRTF convolution and ambisonic encode/decode. It satisfies the full
// Spatializer contract so it can back unit tests and headless demos without
// a native HRTF/ambisonics engine.
type Panning struct {
	rate        int
	blockSize   int
	outChannels int
	listener    Pose
	sources     map[uint64]*panningSourceState
}

// NewPanning creates an unprepared Panning spatializer.
func NewPanning() *Panning {
	return &Panning{listener: IdentityPose(), sources: make(map[uint64]*panningSourceState)}
}

func (p *Panning) Prepare(rate, blockSize, outChannels int) error {
	if outChannels != 2 {
		return fmt.Errorf("spatial: panning backend only supports stereo output, got %d channels", outChannels)
	}
	if rate <= 0 || blockSize <= 0 {
		return fmt.Errorf("spatial: invalid prepare parameters rate=%d blockSize=%d", rate, blockSize)
	}
	p.rate = rate
	p.blockSize = blockSize
	p.outChannels = outChannels
	return nil
}

func (p *Panning) CreateSource(id uint64, initial Vec3) error {
	p.sources[id] = &panningSourceState{position: initial}
	return nil
}

func (p *Panning) DestroySource(id uint64) {
	delete(p.sources, id)
}

func (p *Panning) SetListener(pose Pose) {
	p.listener = pose
}

func (p *Panning) SetSourcePosition(id uint64, pos Vec3) {
	if s, ok := p.sources[id]; ok {
		s.position = pos
	}
}

func (p *Panning) Process(inputs []SourceInput, out []float32) error {
	for i := range out {
		out[i] = 0
	}

	for _, in := range inputs {
		state, ok := p.sources[in.ID]
		if !ok {
			return fmt.Errorf("spatial: process called with unknown source id %d", in.ID)
		}

		left, right := p.relativePosition(state.position)
		dist := float32(math.Sqrt(float64(left*left + right*right)))
		attenuation := directAttenuation(dist)
		pan := azimuthPan(left, right)
		leftGain := (1 - pan) * 0.5 * attenuation
		rightGain := (1 + pan) * 0.5 * attenuation

		n := len(in.Mono)
		if n > p.blockSize {
			n = p.blockSize
		}
		for f := 0; f < n; f++ {
			s := in.Mono[f]
			out[f*2] += s * leftGain
			out[f*2+1] += s * rightGain
		}
	}
	return nil
}

// relativePosition returns the source position in the listener's local
// x (right) / z (forward) plane, ignoring listener orientation for this
// mock (a real HRTF backend would rotate by the listener's quaternion).
func (p *Panning) relativePosition(pos Vec3) (x, z float32) {
	return pos.X - p.listener.Position.X, pos.Z - p.listener.Position.Z
}

// azimuthPan maps a source's lateral position to a pan value in [-1, 1],
// where -1 is fully left and +1 is fully right.
func azimuthPan(x, z float32) float32 {
	mag := float32(math.Sqrt(float64(x*x + z*z)))
	if mag == 0 {
		return 0
	}
	pan := x / mag
	if pan > 1 {
		pan = 1
	}
	if pan < -1 {
		pan = -1
	}
	return pan
}

// directAttenuation approximates inverse-distance falloff used by the
// direct effect: distance attenuation plus (omitted here)
// air absorption, which a real HRTF backend applies as a frequency-
// dependent filter rather than a scalar.
func directAttenuation(distance float32) float32 {
	const refDistance = 1.0
	if distance <= refDistance {
		return 1.0
	}
	return refDistance / distance
}
