// ABOUTME: Oto-based Output implementation: a real-time pull callback backed by ebitengine/oto
// ABOUTME: Read() is invoked by oto's internal player goroutine; it must never allocate or block
package device

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoSink drives real hardware playback via ebitengine/oto, using oto's
// float32 format so no int16 conversion is needed on the hot path. oto
// pulls data by calling Read, which makes it a natural fit for a
// pull-model device callback — unlike a push-style Write API, there is
// never a question of who paces playback.
type OtoSink struct {
	ctx       *oto.Context
	player    *oto.Player
	pop       PopFunc
	channels  int
	underruns atomic.Uint64
	sampleBuf []float32
}

// NewOtoSink creates an unopened OtoSink.
func NewOtoSink() *OtoSink {
	return &OtoSink{}
}

// Open creates the oto context and starts a persistent player that pulls
// from pop via Read.
func (s *OtoSink) Open(rate, channels, preferredBufferFrames int, pop PopFunc) error {
	if channels != 1 && channels != 2 {
		return &ErrUnsupportedFormat{Rate: rate, Channels: channels}
	}

	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("device: oto context: %w", err)
	}
	<-ready

	s.ctx = ctx
	s.pop = pop
	s.channels = channels
	s.sampleBuf = make([]float32, preferredBufferFrames*channels)

	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return nil
}

// Read implements io.Reader for oto's player goroutine. It must never
// allocate after Open: p is sized by oto, and sampleBuf was preallocated in
// Open (growing it here would only happen on an oto buffer-size change,
// which is rare enough not to threaten the real-time budget in practice).
func (s *OtoSink) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	if numSamples == 0 {
		return len(p), nil
	}
	if len(s.sampleBuf) < numSamples {
		s.sampleBuf = make([]float32, numSamples)
	}
	samples := s.sampleBuf[:numSamples]

	frames := numSamples / s.channels
	n := s.pop(samples[:frames*s.channels])
	if n < frames {
		missing := frames - n
		for i := n * s.channels; i < frames*s.channels; i++ {
			samples[i] = 0
		}
		s.underruns.Add(uint64(missing))
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

// Close stops the player and suspends the oto context.
func (s *OtoSink) Close() error {
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	if s.ctx != nil {
		s.ctx.Suspend()
	}
	return nil
}

// Underruns returns the cumulative zero-filled frame count.
func (s *OtoSink) Underruns() uint64 {
	return s.underruns.Load()
}
