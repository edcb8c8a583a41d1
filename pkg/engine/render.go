// ABOUTME: The block-rate render loop: drains commands, advances playheads, spatializes, mixes, pushes frames
// ABOUTME: Runs on exactly one goroutine; shared scratch is pre-allocated, per-source scratch is allocated at registration

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/ring"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

// underrunSource is the subset of device.Output the render loop needs to
// observe, so it can emit BufferUnderrunEvent without importing pkg/device.
type underrunSource interface {
	Underruns() uint64
}

// RenderLoopConfig carries the fixed parameters a RenderLoop needs at
// construction; it mirrors the relevant fields of WorldConfig.
type RenderLoopConfig struct {
	SampleRate int
	BlockSize  int
	Channels   int
	MaxSources int
}

// Option configures optional RenderLoop behavior.
type Option func(*RenderLoop)

// WithTiming enables RenderTimingEvent every n ticks.
func WithTiming(everyNTicks int) Option {
	return func(r *RenderLoop) { r.timingEveryN = everyNTicks }
}

// RenderLoop is the render-thread-owned pipeline. It owns
// the playback-instance table and the spatializer exclusively; nothing else
// may touch either.
type RenderLoop struct {
	cfg         RenderLoopConfig
	cmds        <-chan Command
	events      *EventBus
	ring        *ring.Ring
	spatializer spatial.Spatializer
	device      underrunSource
	stats       *Stats

	instances map[uint64]*playback.Instance

	mixScratch  []float32 // block_size*channels output accumulator
	spatialOut  []float32 // block_size*channels spatializer output
	voiceScratch []float32 // block_size*max(channels, widest registered source) scratch for one source's native-channel Advance
	monoScratch map[uint64][]float32
	spatialInputs []spatial.SourceInput

	timingEveryN  int
	tick          uint64
	lastUnderruns uint64

	done chan struct{}
}

// NewRenderLoop builds a RenderLoop with its shared mix, spatializer-output
// and voice scratch buffers pre-allocated. Per-source scratch is not: a
// spatial source's mono scratch, and a larger voice scratch for a source
// wider than the output, are allocated on the render goroutine when its
// RegisterBufferCmd is applied. cmds is the render loop's end of the command channel;
// events is the bus it publishes to; r is the producer end of the frame
// ring; sp is the spatializer it exclusively owns; device lets it observe
// the device sink's underrun counter.
func NewRenderLoop(cfg RenderLoopConfig, cmds <-chan Command, events *EventBus, r *ring.Ring, sp spatial.Spatializer, device underrunSource, stats *Stats, opts ...Option) *RenderLoop {
	rl := &RenderLoop{
		cfg:           cfg,
		cmds:          cmds,
		events:        events,
		ring:          r,
		spatializer:   sp,
		device:        device,
		stats:         stats,
		instances:     make(map[uint64]*playback.Instance, cfg.MaxSources),
		mixScratch:    make([]float32, cfg.BlockSize*cfg.Channels),
		spatialOut:    make([]float32, cfg.BlockSize*cfg.Channels),
		voiceScratch:  make([]float32, cfg.BlockSize*cfg.Channels),
		monoScratch:   make(map[uint64][]float32, cfg.MaxSources),
		spatialInputs: make([]spatial.SourceInput, 0, cfg.MaxSources),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Done returns a channel closed once Run has returned.
func (r *RenderLoop) Done() <-chan struct{} { return r.done }

// Run executes the render loop until a ShutdownCmd is drained or ctx is
// cancelled. It paces itself with a ticker at block duration; the ring's own
// backpressure is the secondary throttle if a tick runs long.
func (r *RenderLoop) Run(ctx context.Context) {
	defer close(r.done)

	blockDuration := time.Duration(r.cfg.BlockSize) * time.Second / time.Duration(r.cfg.SampleRate)
	ticker := time.NewTicker(blockDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.tickOnce() {
				return
			}
		}
	}
}

// tickOnce runs one render tick; it returns true if a ShutdownCmd was
// applied and the loop should exit.
func (r *RenderLoop) tickOnce() (shutdown bool) {
	start := time.Now()

	if r.drainCommands() {
		return true
	}

	for i := range r.mixScratch {
		r.mixScratch[i] = 0
	}

	mixStart := time.Now()
	r.advanceNonSpatial()
	mixElapsed := time.Since(mixStart)

	spatialStart := time.Now()
	r.advanceSpatialAndMix()
	spatialElapsed := time.Since(spatialStart)

	r.pushOutput()
	r.observeUnderruns()

	r.tick++
	if r.timingEveryN > 0 && r.tick%uint64(r.timingEveryN) == 0 {
		r.events.Send(RenderTimingEvent{
			BlockMicros:   time.Since(start).Microseconds(),
			MixMicros:     mixElapsed.Microseconds(),
			SpatialMicros: spatialElapsed.Microseconds(),
		})
	}
	return false
}

// drainCommands applies every queued command to the instance table and
// spatializer. It returns true on ShutdownCmd.
func (r *RenderLoop) drainCommands() bool {
	for {
		select {
		case cmd, ok := <-r.cmds:
			if !ok {
				return true
			}
			if r.apply(cmd) {
				return true
			}
		default:
			return false
		}
	}
}

func (r *RenderLoop) apply(cmd Command) (shutdown bool) {
	switch c := cmd.(type) {
	case RegisterBufferCmd:
		if c.Config.Spatial && c.Buffer.Channels() != 1 {
			r.events.Send(EngineErrorEvent{Kind: EngineErrorRegistrationRejected, Detail: fmt.Sprintf("source %d: spatial registration requires a mono buffer", c.ID)})
			return false
		}
		if need := r.cfg.BlockSize * c.Buffer.Channels(); need > len(r.voiceScratch) {
			r.voiceScratch = make([]float32, need)
		}
		inst := playback.NewInstance(c.ID, c.Buffer, c.Config)
		r.instances[c.ID] = inst
		if c.Config.Spatial {
			if err := r.spatializer.CreateSource(c.ID, spatial.Vec3{X: c.Config.Position.X, Y: c.Config.Position.Y, Z: c.Config.Position.Z}); err != nil {
				r.events.Send(SpatializationErrorEvent{Detail: err.Error()})
				delete(r.instances, c.ID)
				return false
			}
			r.monoScratch[c.ID] = make([]float32, r.cfg.BlockSize)
		}

	case UnregisterCmd:
		inst, ok := r.instances[c.ID]
		if !ok {
			r.events.Send(EngineErrorEvent{Kind: EngineErrorUnknownSource, Detail: fmt.Sprintf("unregister: unknown source %d", c.ID)})
			return false
		}
		if inst.State == playback.Playing {
			r.stats.ActiveSources.Add(-1)
		}
		if inst.Config.Spatial {
			r.spatializer.DestroySource(c.ID)
			delete(r.monoScratch, c.ID)
		}
		delete(r.instances, c.ID)

	case SetConfigCmd:
		inst, ok := r.instances[c.ID]
		if !ok {
			r.events.Send(EngineErrorEvent{Kind: EngineErrorUnknownSource, Detail: fmt.Sprintf("set_config: unknown source %d", c.ID)})
			return false
		}
		if inst.Config.Spatial != c.Config.Spatial {
			r.events.Send(EngineErrorEvent{Kind: EngineErrorStateError, Detail: fmt.Sprintf("source %d: cannot switch between spatial and non-spatial", c.ID)})
			return false
		}
		inst.Config = c.Config
		if c.Config.Spatial {
			r.spatializer.SetSourcePosition(c.ID, spatial.Vec3{X: c.Config.Position.X, Y: c.Config.Position.Y, Z: c.Config.Position.Z})
		}

	case PlayCmd:
		inst, ok := r.instances[c.ID]
		if !ok {
			r.events.Send(EngineErrorEvent{Kind: EngineErrorUnknownSource, Detail: fmt.Sprintf("play: unknown source %d", c.ID)})
			return false
		}
		if inst.Play(c.Loop) {
			r.stats.ActiveSources.Add(1)
			r.events.Send(SourceStartedEvent{ID: c.ID})
		}

	case PauseCmd:
		if inst, ok := r.instances[c.ID]; ok {
			if inst.Pause() {
				r.stats.ActiveSources.Add(-1)
			}
		} else {
			r.events.Send(EngineErrorEvent{Kind: EngineErrorUnknownSource, Detail: fmt.Sprintf("pause: unknown source %d", c.ID)})
		}

	case StopCmd:
		inst, ok := r.instances[c.ID]
		if !ok {
			r.events.Send(EngineErrorEvent{Kind: EngineErrorUnknownSource, Detail: fmt.Sprintf("stop: unknown source %d", c.ID)})
			return false
		}
		wasPlaying := inst.State == playback.Playing
		if inst.Stop() {
			if wasPlaying {
				r.stats.ActiveSources.Add(-1)
			}
			r.events.Send(SourceStoppedEvent{ID: c.ID})
		}

	case SetListenerPoseCmd:
		r.spatializer.SetListener(c.Pose)

	case ShutdownCmd:
		return true
	}
	return false
}

// advanceNonSpatial advances every Playing non-spatial instance and mixes
// it directly into mixScratch.
func (r *RenderLoop) advanceNonSpatial() {
	for id, inst := range r.instances {
		if inst.Config.Spatial || inst.State != playback.Playing {
			continue
		}
		r.advanceOneAndMix(id, inst)
	}
}

func (r *RenderLoop) advanceOneAndMix(id uint64, inst *playback.Instance) {
	srcChannels := inst.Buffer.Channels()
	voice := r.voiceScratch[:r.cfg.BlockSize*srcChannels]
	res := inst.Advance(r.cfg.BlockSize, voice)
	r.emitAdvanceEvents(id, res)

	gain := inst.Config.Gain
	out := r.mixScratch
	outChannels := r.cfg.Channels
	for f := 0; f < r.cfg.BlockSize; f++ {
		if srcChannels == outChannels {
			for ch := 0; ch < outChannels; ch++ {
				out[f*outChannels+ch] += voice[f*srcChannels+ch] * gain
			}
		} else if srcChannels == 1 {
			v := voice[f] * gain
			for ch := 0; ch < outChannels; ch++ {
				out[f*outChannels+ch] += v
			}
		} else {
			// Downmix a wider source to the output's channel count by averaging.
			var sum float32
			for ch := 0; ch < srcChannels; ch++ {
				sum += voice[f*srcChannels+ch]
			}
			v := sum / float32(srcChannels) * gain
			for ch := 0; ch < outChannels; ch++ {
				out[f*outChannels+ch] += v
			}
		}
	}
}

// advanceSpatialAndMix advances every Playing spatial instance into its own
// mono scratch, hands the batch to the Spatializer, and adds the result
// into mixScratch.
func (r *RenderLoop) advanceSpatialAndMix() {
	r.spatialInputs = r.spatialInputs[:0]
	for id, inst := range r.instances {
		if !inst.Config.Spatial || inst.State != playback.Playing {
			continue
		}
		mono := r.monoScratch[id]
		res := inst.Advance(r.cfg.BlockSize, mono)
		r.emitAdvanceEvents(id, res)

		gain := inst.Config.Gain
		if gain != 1 {
			for i := range mono {
				mono[i] *= gain
			}
		}
		r.spatialInputs = append(r.spatialInputs, spatial.SourceInput{ID: id, Mono: mono, Gain: 1})
	}

	if len(r.spatialInputs) == 0 {
		return
	}

	if err := r.spatializer.Process(r.spatialInputs, r.spatialOut); err != nil {
		r.events.Send(SpatializationErrorEvent{Detail: err.Error()})
		return
	}
	for i := range r.mixScratch {
		r.mixScratch[i] += r.spatialOut[i]
	}
}

func (r *RenderLoop) emitAdvanceEvents(id uint64, res playback.AdvanceResult) {
	switch {
	case res.Completed:
		r.events.Send(SourceCompletedEvent{ID: id})
		// Spatializer/monoScratch resources stay allocated: a completed
		// source is Stopped, not gone, and PlayCmd must be able to replay it
		// without re-creating anything. They are released only in
		// UnregisterCmd.
		r.stats.ActiveSources.Add(-1)
	case res.Looped:
		r.events.Send(SourceLoopedEvent{ID: id, Iteration: res.Iteration})
	}
}

// pushOutput pushes exactly one block into the frame ring, emitting
// BufferOverrunEvent for whatever the ring could not accept. It never blocks.
func (r *RenderLoop) pushOutput() {
	n := r.ring.Push(r.mixScratch)
	if n < r.cfg.BlockSize {
		missing := r.cfg.BlockSize - n
		r.stats.Overruns.Add(uint64(missing))
		r.events.Send(BufferOverrunEvent{MissingFrames: missing})
	}
}

// observeUnderruns polls the device sink's cumulative underrun counter by
// delta and emits BufferUnderrunEvent for newly observed underruns.
func (r *RenderLoop) observeUnderruns() {
	if r.device == nil {
		return
	}
	total := r.device.Underruns()
	if total > r.lastUnderruns {
		delta := total - r.lastUnderruns
		r.lastUnderruns = total
		r.events.Send(BufferUnderrunEvent{MissingFrames: int(delta)})
	}
}
