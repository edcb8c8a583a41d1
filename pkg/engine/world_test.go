// ABOUTME: Black-box World tests: synchronous validation plus short async smoke tests against the real render loop
package engine

import (
	"testing"
	"time"

	"github.com/vectoraudio/spatialengine/pkg/audio"
	"github.com/vectoraudio/spatialengine/pkg/device"
	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

func smallWorldConfig() WorldConfig {
	return WorldConfig{SampleRate: 48000, BlockSize: 64, Channels: 2, RingBlocks: 4, MaxSources: 4}
}

func newTestWorld(t *testing.T) (*World, *device.MemorySink) {
	t.Helper()
	sink := device.NewMemorySink()
	w, err := NewWorld(smallWorldConfig(), sink, spatial.NewPanning())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	t.Cleanup(func() { _ = w.Shutdown() })
	return w, sink
}

func TestNewWorldRejectsNonStereoChannels(t *testing.T) {
	cfg := smallWorldConfig()
	cfg.Channels = 1
	_, err := NewWorld(cfg, device.NewMemorySink(), spatial.NewPanning())
	if err == nil {
		t.Fatal("expected ConfigError for non-stereo channels")
	}
}

func TestRegisterAudioRejectsRateMismatch(t *testing.T) {
	w, _ := newTestWorld(t)
	buf, _ := audio.NewBuffer(44100, 1, make([]float32, 64))
	_, err := w.RegisterAudio(buf, playback.NonSpatial(1))
	if err == nil {
		t.Fatal("expected RegistrationError for rate mismatch")
	}
}

func TestRegisterAudioRejectsStereoSpatial(t *testing.T) {
	w, _ := newTestWorld(t)
	buf, _ := audio.NewBuffer(48000, 2, make([]float32, 128))
	_, err := w.RegisterAudio(buf, playback.SpatialAt(playback.Vec3{}, 1))
	if err == nil {
		t.Fatal("expected RegistrationError for stereo spatial registration")
	}
}

func TestRegisterAudioEnforcesMaxSources(t *testing.T) {
	w, _ := newTestWorld(t)
	buf, _ := audio.NewBuffer(48000, 1, make([]float32, 64))
	for i := 0; i < 4; i++ {
		if _, err := w.RegisterAudio(buf, playback.NonSpatial(1)); err != nil {
			t.Fatalf("RegisterAudio #%d: %v", i, err)
		}
	}
	if _, err := w.RegisterAudio(buf, playback.NonSpatial(1)); err == nil {
		t.Fatal("expected RegistrationError once max_sources is exceeded")
	}
}

func TestPlayOnUnknownSourceReturnsStateError(t *testing.T) {
	w, _ := newTestWorld(t)
	if err := w.Play(999, playback.Once()); err == nil {
		t.Fatal("expected StateError for unknown source id")
	}
}

func TestSilentWorldUnderrunsOnPump(t *testing.T) {
	_, sink := newTestWorld(t)

	got := sink.Pump(4800)
	// Whatever the render loop managed to push before this call, every
	// frame Pump asked for was either supplied or counted as underrun.
	if uint64(got)+sink.Underruns() != 4800 {
		t.Fatalf("got=%d underruns=%d, want sum 4800", got, sink.Underruns())
	}
}

func TestRegisterPlayAndPollEventsObservesStart(t *testing.T) {
	w, _ := newTestWorld(t)
	samples := make([]float32, 48000) // 1 second mono
	for i := range samples {
		samples[i] = 0.5
	}
	buf, err := audio.NewBuffer(48000, 1, samples)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	id, err := w.RegisterAudio(buf, playback.NonSpatial(1))
	if err != nil {
		t.Fatalf("RegisterAudio: %v", err)
	}
	if err := w.Play(id, playback.Once()); err != nil {
		t.Fatalf("Play: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var sawStarted bool
	for time.Now().Before(deadline) && !sawStarted {
		for _, ev := range w.PollEvents() {
			if se, ok := ev.(SourceStartedEvent); ok && se.ID == id {
				sawStarted = true
			}
		}
		if !sawStarted {
			time.Sleep(5 * time.Millisecond)
		}
	}
	if !sawStarted {
		t.Fatal("expected SourceStartedEvent within the deadline")
	}
}
