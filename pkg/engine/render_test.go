// ABOUTME: White-box render loop tests driven by tickOnce, bypassing the real-time ticker for determinism
package engine

import (
	"testing"

	"github.com/vectoraudio/spatialengine/pkg/audio"
	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/ring"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

const (
	testRate      = 48000
	testBlockSize = 256
	testChannels  = 2
	testMaxSrc    = 8
)

type fakeUnderruns struct{ n uint64 }

func (f *fakeUnderruns) Underruns() uint64 { return f.n }

func newTestLoop(t *testing.T) (*RenderLoop, chan Command, *ring.Ring) {
	t.Helper()
	cmds := make(chan Command, 32)
	events := NewEventBus(256)
	r := ring.New(testBlockSize*8, testChannels)
	sp := spatial.NewPanning()
	if err := sp.Prepare(testRate, testBlockSize, testChannels); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	cfg := RenderLoopConfig{SampleRate: testRate, BlockSize: testBlockSize, Channels: testChannels, MaxSources: testMaxSrc}
	rl := NewRenderLoop(cfg, cmds, events, r, sp, &fakeUnderruns{}, &Stats{})
	return rl, cmds, r
}

func monoToneBuffer(t *testing.T, frames int) *audio.Buffer {
	t.Helper()
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = 1.0
	}
	buf, err := audio.NewBuffer(testRate, 1, samples)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	return buf
}

func TestTickOnceWithNoSourcesProducesSilence(t *testing.T) {
	rl, _, r := newTestLoop(t)
	rl.tickOnce()

	dst := make([]float32, testBlockSize*testChannels)
	n := r.Pop(dst)
	if n != testBlockSize {
		t.Fatalf("Pop() = %d, want %d", n, testBlockSize)
	}
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("dst[%d] = %v, want 0", i, v)
		}
	}
}

func TestShutdownCmdStopsTickOnce(t *testing.T) {
	rl, cmds, _ := newTestLoop(t)
	cmds <- ShutdownCmd{}
	if !rl.tickOnce() {
		t.Fatal("tickOnce() should report shutdown after draining ShutdownCmd")
	}
}

func TestRegisterAndPlayNonSpatialOneShotCompletes(t *testing.T) {
	rl, cmds, r := newTestLoop(t)
	buf := monoToneBuffer(t, testBlockSize+10)
	cmds <- RegisterBufferCmd{ID: 1, Buffer: buf, Config: playback.NonSpatial(1)}
	cmds <- PlayCmd{ID: 1, Loop: playback.Once()}

	rl.tickOnce() // consumes first blockSize frames, 10 left
	rl.tickOnce() // consumes remaining 10, zero-fills rest, completes

	events := rl.events.Poll()
	var sawStarted, sawCompleted bool
	for _, ev := range events {
		switch ev.(type) {
		case SourceStartedEvent:
			sawStarted = true
		case SourceCompletedEvent:
			sawCompleted = true
		}
	}
	if !sawStarted {
		t.Error("expected SourceStartedEvent")
	}
	if !sawCompleted {
		t.Error("expected SourceCompletedEvent")
	}

	dst := make([]float32, testBlockSize*testChannels)
	r.Pop(dst)
	r.Pop(dst)
	n := r.Pop(dst)
	if n > 0 {
		for _, v := range dst[:n*testChannels] {
			if v != 0 {
				t.Fatalf("expected silence after completion, got %v", v)
			}
		}
	}
}

func TestRegisterAndPlayInfiniteLoops(t *testing.T) {
	rl, cmds, _ := newTestLoop(t)
	buf := monoToneBuffer(t, testBlockSize/2)
	cmds <- RegisterBufferCmd{ID: 1, Buffer: buf, Config: playback.NonSpatial(1)}
	cmds <- PlayCmd{ID: 1, Loop: playback.Infinite()}

	rl.tickOnce()
	rl.tickOnce()
	rl.tickOnce()

	var loopCount int
	for _, ev := range rl.events.Poll() {
		if _, ok := ev.(SourceLoopedEvent); ok {
			loopCount++
		}
	}
	if loopCount == 0 {
		t.Error("expected at least one SourceLoopedEvent")
	}
}

func TestSpatialRegistrationRejectsStereoBuffer(t *testing.T) {
	rl, cmds, _ := newTestLoop(t)
	samples := make([]float32, testBlockSize*2)
	buf, err := audio.NewBuffer(testRate, 2, samples)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	cmds <- RegisterBufferCmd{ID: 1, Buffer: buf, Config: playback.SpatialAt(playback.Vec3{}, 1)}
	rl.tickOnce()

	var sawRejection bool
	for _, ev := range rl.events.Poll() {
		if ee, ok := ev.(EngineErrorEvent); ok && ee.Kind == EngineErrorRegistrationRejected {
			sawRejection = true
		}
	}
	if !sawRejection {
		t.Error("expected EngineErrorEvent for stereo spatial registration")
	}
	if _, ok := rl.instances[1]; ok {
		t.Error("rejected registration should not create an instance")
	}
}

func TestSetConfigRejectsSpatialitySwitch(t *testing.T) {
	rl, cmds, _ := newTestLoop(t)
	buf := monoToneBuffer(t, testBlockSize)
	cmds <- RegisterBufferCmd{ID: 1, Buffer: buf, Config: playback.NonSpatial(1)}
	rl.tickOnce()
	rl.events.Poll()

	cmds <- SetConfigCmd{ID: 1, Config: playback.SpatialAt(playback.Vec3{}, 1)}
	rl.tickOnce()

	var sawStateError bool
	for _, ev := range rl.events.Poll() {
		if ee, ok := ev.(EngineErrorEvent); ok && ee.Kind == EngineErrorStateError {
			sawStateError = true
		}
	}
	if !sawStateError {
		t.Error("expected EngineErrorEvent(StateError) when switching spatiality")
	}
	if rl.instances[1].Config.Spatial {
		t.Error("config should not have changed")
	}
}

func TestReplayingCompletedSpatialSourceDoesNotPanic(t *testing.T) {
	rl, cmds, _ := newTestLoop(t)
	buf := monoToneBuffer(t, testBlockSize/2)
	cmds <- RegisterBufferCmd{ID: 1, Buffer: buf, Config: playback.SpatialAt(playback.Vec3{X: 1}, 1)}
	cmds <- PlayCmd{ID: 1, Loop: playback.Once()}

	rl.tickOnce() // consumes the half-block buffer and completes

	var sawCompleted bool
	for _, ev := range rl.events.Poll() {
		if _, ok := ev.(SourceCompletedEvent); ok {
			sawCompleted = true
		}
	}
	if !sawCompleted {
		t.Fatal("expected SourceCompletedEvent before replay")
	}

	cmds <- PlayCmd{ID: 1, Loop: playback.Once()}
	rl.tickOnce() // must not panic: spatializer/monoScratch state must survive completion

	var sawReplayStart bool
	for _, ev := range rl.events.Poll() {
		if _, ok := ev.(SourceStartedEvent); ok {
			sawReplayStart = true
		}
	}
	if !sawReplayStart {
		t.Error("expected a second SourceStartedEvent on replay")
	}
}

func TestOverrunEmittedWhenRingFull(t *testing.T) {
	rl, cmds, _ := newTestLoop(t)
	buf := monoToneBuffer(t, testBlockSize*20)
	cmds <- RegisterBufferCmd{ID: 1, Buffer: buf, Config: playback.NonSpatial(1)}
	cmds <- PlayCmd{ID: 1, Loop: playback.Infinite()}

	// Fill the ring (capacity 8 blocks) without ever draining it.
	for i := 0; i < 9; i++ {
		rl.tickOnce()
	}

	var sawOverrun bool
	for _, ev := range rl.events.Poll() {
		if _, ok := ev.(BufferOverrunEvent); ok {
			sawOverrun = true
		}
	}
	if !sawOverrun {
		t.Error("expected BufferOverrunEvent once the ring fills")
	}
}

func TestObserveUnderrunsEmitsDelta(t *testing.T) {
	rl, _, _ := newTestLoop(t)
	fu := rl.device.(*fakeUnderruns)
	fu.n = 500

	rl.tickOnce()

	var found *BufferUnderrunEvent
	for _, ev := range rl.events.Poll() {
		if u, ok := ev.(BufferUnderrunEvent); ok {
			found = &u
		}
	}
	if found == nil || found.MissingFrames != 500 {
		t.Fatalf("expected BufferUnderrunEvent{500}, got %+v", found)
	}
}
