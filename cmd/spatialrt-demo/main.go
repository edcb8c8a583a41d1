// ABOUTME: Entry point for the spatial audio runtime demo
// ABOUTME: Loads an audio file, plays it through a World, and optionally exposes the remote control surface

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/vectoraudio/spatialengine/pkg/audio/decode"
	"github.com/vectoraudio/spatialengine/pkg/audio/loader"
	"github.com/vectoraudio/spatialengine/pkg/device"
	"github.com/vectoraudio/spatialengine/pkg/engine"
	"github.com/vectoraudio/spatialengine/pkg/netctl"
	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

var (
	audioFile  = flag.String("audio", "", "audio file to play (WAV, MP3, or raw .opus packet stream); required")
	sampleRate = flag.Int("rate", 48000, "world sample rate in Hz")
	blockSize  = flag.Int("block", 1024, "render block size in frames")
	ringBlocks = flag.Int("ring-blocks", 8, "frame ring capacity in blocks")
	maxSources = flag.Int("max-sources", 64, "hard cap on concurrent sources")
	spatialize = flag.Bool("spatial", false, "register as a spatial source at (1,0,0) instead of non-spatial")
	loopMode   = flag.String("loop", "once", "once | infinite | count:N")
	controlAddr = flag.String("control-addr", "", "if set, expose the remote control surface on this address, e.g. :7711")
	enableMDNS = flag.Bool("mdns", false, "advertise the control surface via mDNS")
	opusChannels = flag.Int("opus-channels", 2, "channel count to assume when -audio is a raw .opus packet stream")
)

func main() {
	flag.Parse()

	if *audioFile == "" {
		log.Fatal("spatialrt-demo: -audio is required")
	}

	world, err := buildWorld()
	if err != nil {
		log.Fatalf("spatialrt-demo: %v", err)
	}
	defer world.Shutdown()

	id, err := registerSource(world)
	if err != nil {
		log.Fatalf("spatialrt-demo: %v", err)
	}

	loop, err := parseLoopMode(*loopMode)
	if err != nil {
		log.Fatalf("spatialrt-demo: %v", err)
	}
	if err := world.Play(id, loop); err != nil {
		log.Fatalf("spatialrt-demo: play: %v", err)
	}
	log.Printf("spatialrt-demo: playing source %d from %s", id, *audioFile)

	var ctlServer *netctl.Server
	if *controlAddr != "" {
		ctlServer = netctl.NewServer(netctl.ServerConfig{Addr: *controlAddr, EnableMDNS: *enableMDNS}, world)
		go func() {
			if err := ctlServer.Start(); err != nil {
				log.Printf("spatialrt-demo: control server: %v", err)
			}
		}()
		log.Printf("spatialrt-demo: remote control listening on %s", *controlAddr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	eventTicker := time.NewTicker(500 * time.Millisecond)
	defer eventTicker.Stop()

	for {
		select {
		case sig := <-sigChan:
			log.Printf("spatialrt-demo: received %v, shutting down", sig)
			if ctlServer != nil {
				ctlServer.Stop()
			}
			return
		case <-eventTicker.C:
			for _, ev := range world.PollEvents() {
				log.Printf("spatialrt-demo: event: %+v", ev)
			}
		}
	}
}

func buildWorld() (*engine.World, error) {
	cfg := engine.WorldConfig{
		SampleRate: *sampleRate,
		BlockSize:  *blockSize,
		Channels:   2,
		RingBlocks: *ringBlocks,
		MaxSources: *maxSources,
	}
	return engine.NewWorld(cfg, device.NewOtoSink(), spatial.NewPanning())
}

func registerSource(world *engine.World) (uint64, error) {
	data, err := os.ReadFile(*audioFile)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", *audioFile, err)
	}

	dec, err := decoderFor(*audioFile)
	if err != nil {
		return 0, err
	}

	opts := loader.Options{TargetRate: *sampleRate}
	if *spatialize {
		opts.ConvertToMono = loader.ForceMono
	}

	buf, err := loader.Load(data, dec, opts)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", *audioFile, err)
	}

	var cfg playback.Config
	if *spatialize {
		cfg = playback.SpatialAt(playback.Vec3{X: 1}, 1)
	} else {
		cfg = playback.NonSpatial(1)
	}

	return world.RegisterAudio(buf, cfg)
}

func decoderFor(path string) (decode.Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decode.WAV{}, nil
	case ".mp3":
		return decode.MP3{}, nil
	case ".opus":
		return decode.NewOpus(*sampleRate, *opusChannels)
	default:
		return nil, fmt.Errorf("unsupported audio extension %q", filepath.Ext(path))
	}
}

func parseLoopMode(s string) (playback.LoopMode, error) {
	switch {
	case s == "once" || s == "":
		return playback.Once(), nil
	case s == "infinite":
		return playback.Infinite(), nil
	case strings.HasPrefix(s, "count:"):
		var n int
		if _, err := fmt.Sscanf(s, "count:%d", &n); err != nil || n < 1 {
			return playback.LoopMode{}, fmt.Errorf("invalid count loop mode %q", s)
		}
		return playback.Repeat(n), nil
	default:
		return playback.LoopMode{}, fmt.Errorf("unknown loop mode %q", s)
	}
}
