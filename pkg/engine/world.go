// ABOUTME: World: the thread-safe facade control threads use to drive the engine
// ABOUTME: Performs synchronous validation, owns the command channel and event bus, starts/joins the render loop

package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vectoraudio/spatialengine/pkg/audio"
	"github.com/vectoraudio/spatialengine/pkg/device"
	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/ring"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

// WorldConfig configures a World's render loop, device, and source table.
type WorldConfig struct {
	SampleRate int    // Hz, typical 48000
	BlockSize  int    // frames per render tick, typical 512-1024
	Channels   int    // 2; only stereo output is supported for now
	RingBlocks int    // ring capacity = BlockSize * RingBlocks
	MaxSources int     // hard cap on concurrent registered sources
	HRTFPath   string // optional custom HRTF data path; NewWorld does not pass it to the spatializer
}

// RegistrationError is returned synchronously by World methods when
// validation fails before any command is sent.
type RegistrationError struct {
	Detail string
}

func (e *RegistrationError) Error() string { return "engine: registration error: " + e.Detail }

// StateError is returned synchronously for operations on an unknown id.
type StateError struct {
	Detail string
}

func (e *StateError) Error() string { return "engine: state error: " + e.Detail }

// ConfigError is returned by NewWorld for an invalid WorldConfig.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string { return "engine: config error: " + e.Detail }

type sourceMeta struct {
	channels int
	spatial  bool
}

// World is the thread-safe facade exposed to host code. Every exported
// method is safe to call concurrently from multiple control-thread
// goroutines.
type World struct {
	cfg    WorldConfig
	cmds   chan Command
	events *EventBus
	ring   *ring.Ring
	device device.Output
	stats  *Stats

	render *RenderLoop
	cancel context.CancelFunc

	nextID atomic.Uint64

	mu      sync.Mutex
	sources map[uint64]sourceMeta
}

// NewWorld validates cfg, opens dev at the world's rate/channels, starts the
// render loop, and returns a ready-to-use World.
func NewWorld(cfg WorldConfig, dev device.Output, sp spatial.Spatializer, opts ...Option) (*World, error) {
	if cfg.Channels != 2 {
		return nil, &ConfigError{Detail: fmt.Sprintf("only stereo output is supported, got %d channels", cfg.Channels)}
	}
	if cfg.SampleRate <= 0 {
		return nil, &ConfigError{Detail: "sample rate must be positive"}
	}
	if cfg.BlockSize <= 0 {
		return nil, &ConfigError{Detail: "block size must be positive"}
	}
	if cfg.RingBlocks <= 0 {
		return nil, &ConfigError{Detail: "ring blocks must be positive"}
	}
	if cfg.MaxSources <= 0 {
		return nil, &ConfigError{Detail: "max sources must be positive"}
	}

	if err := sp.Prepare(cfg.SampleRate, cfg.BlockSize, cfg.Channels); err != nil {
		return nil, &ConfigError{Detail: fmt.Sprintf("spatializer prepare: %v", err)}
	}

	frameRing := ring.New(cfg.BlockSize*cfg.RingBlocks, cfg.Channels)

	w := &World{
		cfg:     cfg,
		cmds:    make(chan Command, cfg.MaxSources*4+16),
		events:  NewEventBus(1024),
		ring:    frameRing,
		device:  dev,
		stats:   &Stats{},
		sources: make(map[uint64]sourceMeta, cfg.MaxSources),
	}

	if err := dev.Open(cfg.SampleRate, cfg.Channels, cfg.BlockSize, frameRing.Pop); err != nil {
		return nil, fmt.Errorf("engine: device open: %w", err)
	}

	rlCfg := RenderLoopConfig{SampleRate: cfg.SampleRate, BlockSize: cfg.BlockSize, Channels: cfg.Channels, MaxSources: cfg.MaxSources}
	w.render = NewRenderLoop(rlCfg, w.cmds, w.events, frameRing, sp, dev, w.stats, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.render.Run(ctx)

	return w, nil
}

// RegisterAudio allocates a source id for buf under cfg, validating rate
// match and the mono-for-spatial constraint synchronously, then sends
// RegisterBufferCmd. Returns the allocated id.
func (w *World) RegisterAudio(buf *audio.Buffer, cfg playback.Config) (uint64, error) {
	if buf.Rate() != w.cfg.SampleRate {
		return 0, &RegistrationError{Detail: fmt.Sprintf("buffer rate %d does not match world rate %d", buf.Rate(), w.cfg.SampleRate)}
	}
	if cfg.Spatial && buf.Channels() != 1 {
		return 0, &RegistrationError{Detail: fmt.Sprintf("spatial registration requires a mono buffer, got %d channels", buf.Channels())}
	}

	w.mu.Lock()
	if len(w.sources) >= w.cfg.MaxSources {
		w.mu.Unlock()
		return 0, &RegistrationError{Detail: fmt.Sprintf("max_sources (%d) exceeded", w.cfg.MaxSources)}
	}
	id := w.nextID.Add(1)
	w.sources[id] = sourceMeta{channels: buf.Channels(), spatial: cfg.Spatial}
	w.mu.Unlock()

	w.cmds <- RegisterBufferCmd{ID: id, Buffer: buf, Config: cfg}
	return id, nil
}

func (w *World) knownSource(id uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.sources[id]
	return ok
}

// Play sends a play command for id with the given loop mode.
func (w *World) Play(id uint64, loop playback.LoopMode) error {
	if !w.knownSource(id) {
		return &StateError{Detail: fmt.Sprintf("play: unknown source %d", id)}
	}
	w.cmds <- PlayCmd{ID: id, Loop: loop}
	return nil
}

// Pause sends a pause command for id.
func (w *World) Pause(id uint64) error {
	if !w.knownSource(id) {
		return &StateError{Detail: fmt.Sprintf("pause: unknown source %d", id)}
	}
	w.cmds <- PauseCmd{ID: id}
	return nil
}

// Stop sends a stop command for id.
func (w *World) Stop(id uint64) error {
	if !w.knownSource(id) {
		return &StateError{Detail: fmt.Sprintf("stop: unknown source %d", id)}
	}
	w.cmds <- StopCmd{ID: id}
	return nil
}

// Unregister sends an unregister command for id, freeing its slot against
// max_sources.
func (w *World) Unregister(id uint64) error {
	if !w.knownSource(id) {
		return &StateError{Detail: fmt.Sprintf("unregister: unknown source %d", id)}
	}
	w.mu.Lock()
	delete(w.sources, id)
	w.mu.Unlock()
	w.cmds <- UnregisterCmd{ID: id}
	return nil
}

// SetSourceConfig sends a configuration update for id. Switching a source
// between spatial and non-spatial is rejected asynchronously by the render
// loop via EngineErrorEvent.
func (w *World) SetSourceConfig(id uint64, cfg playback.Config) error {
	if !w.knownSource(id) {
		return &StateError{Detail: fmt.Sprintf("set_source_config: unknown source %d", id)}
	}
	w.cmds <- SetConfigCmd{ID: id, Config: cfg}
	return nil
}

// SetListenerPose sends a listener pose update.
func (w *World) SetListenerPose(pose spatial.Pose) {
	w.cmds <- SetListenerPoseCmd{Pose: pose}
}

// PollEvents drains every event the render loop has published since the
// last call.
func (w *World) PollEvents() []Event {
	return w.events.Poll()
}

// Stats returns the shared atomic counters for observability.
func (w *World) Stats() *Stats { return w.stats }

// Shutdown sends ShutdownCmd, waits for the render loop to exit, and closes
// the device. It is synchronous from the caller's perspective and safe to
// call once.
func (w *World) Shutdown() error {
	w.cmds <- ShutdownCmd{}
	<-w.render.Done()
	w.cancel()
	return w.device.Close()
}
