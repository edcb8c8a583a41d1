// ABOUTME: Loader decodes, downmixes, resamples, and optionally normalizes audio into a Buffer
// ABOUTME: Usable off the control thread; allocates freely, unlike the render path

// Package loader turns an encoded byte blob into an audio.Buffer ready for
// registration with a World. It is the only component permitted to
// allocate on every call — it runs off the render thread.
package loader

import (
	"fmt"
	"math"

	"github.com/vectoraudio/spatialengine/pkg/audio"
	"github.com/vectoraudio/spatialengine/pkg/audio/decode"
	"github.com/vectoraudio/spatialengine/pkg/audio/resample"
)

// MonoPolicy controls channel downmixing behavior.
type MonoPolicy int

const (
	// Never leaves the channel count untouched.
	Never MonoPolicy = iota
	// IfMultiChannel downmixes only when the source has more than one channel.
	IfMultiChannel
	// ForceMono always downmixes to a single channel, even from mono input.
	ForceMono
)

// Options controls how a blob is turned into a Buffer.
type Options struct {
	// TargetRate is the output sample rate in Hz. Required.
	TargetRate int
	// ConvertToMono selects the downmix policy. Default: Never.
	ConvertToMono MonoPolicy
	// Normalize peak-normalizes the result to -1 dBFS.
	Normalize bool
}

const targetPeakDBFS = -1.0

// Load decodes data with dec and transforms the result per opts, producing
// a Buffer at opts.TargetRate.
func Load(data []byte, dec decode.Decoder, opts Options) (*audio.Buffer, error) {
	if opts.TargetRate <= 0 {
		return nil, fmt.Errorf("loader: target rate must be positive, got %d", opts.TargetRate)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("loader: empty input")
	}

	rate, channels, samples, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loader: decode failed: %w", err)
	}
	if rate <= 0 || channels <= 0 || len(samples) == 0 {
		return nil, fmt.Errorf("loader: decoder produced invalid output (rate=%d channels=%d samples=%d)", rate, channels, len(samples))
	}

	if opts.ConvertToMono == ForceMono || (opts.ConvertToMono == IfMultiChannel && channels > 1) {
		samples = downmixToMono(samples, channels)
		channels = 1
	}

	if rate != opts.TargetRate {
		samples, err = resampleTo(samples, rate, opts.TargetRate, channels)
		if err != nil {
			return nil, fmt.Errorf("loader: resample failed: %w", err)
		}
		rate = opts.TargetRate
	}

	if opts.Normalize {
		normalizePeak(samples, targetPeakDBFS)
	}

	buf, err := audio.NewBuffer(rate, channels, samples)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return buf, nil
}

func downmixToMono(samples []float32, channels int) []float32 {
	frames := len(samples) / channels
	out := make([]float32, frames)
	inv := float32(1.0 / float64(channels))
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		out[i] = sum * inv
	}
	return out
}

func resampleTo(samples []float32, srcRate, dstRate, channels int) ([]float32, error) {
	r := resample.New(srcRate, dstRate, channels)
	frames := len(samples) / channels
	outFrames := r.OutputFrames(frames) + 1
	out := make([]float32, outFrames*channels)
	n := r.Resample(samples, out)
	return out[:n], nil
}

// normalizePeak scales samples in place so the loudest sample reaches
// targetDBFS (a negative number of dB relative to full scale).
func normalizePeak(samples []float32, targetDBFS float64) {
	var peak float32
	for _, s := range samples {
		if a := abs32(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}

	targetLinear := float32(math.Pow(10, targetDBFS/20))
	gain := targetLinear / peak
	for i := range samples {
		samples[i] *= gain
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
