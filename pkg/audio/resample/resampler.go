// ABOUTME: Bandlimited polyphase resampler for converting audio sample rates
// ABOUTME: Precomputes a windowed-sinc polyphase filter bank for a fixed input/output ratio
package resample

import "math"

const (
	numPhases  = 256 // polyphase subdivisions of one input-sample interval
	halfTaps   = 8   // filter half-width in input samples (zero crossings per side)
)

// Resampler converts interleaved PCM from inputRate to outputRate using a
// fixed-ratio bandlimited polyphase filter. The filter bank is built once at
// construction for a cutoff that anti-aliases when downsampling and is
// flat-passband when upsampling.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64 // input samples advanced per output sample
	cutoff     float64 // relative to input Nyquist; <1 when downsampling
	phase      [numPhases][2*halfTaps + 1]float64

	pos float64 // fractional read position into the pending input, in input samples
}

// New builds a polyphase resampler for the given input/output rate pair.
func New(inputRate, outputRate, channels int) *Resampler {
	r := &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
	r.cutoff = 1.0
	if r.ratio > 1.0 {
		r.cutoff = 1.0 / r.ratio // downsampling: lower the cutoff to avoid aliasing
	}
	r.buildPhaseTable()
	return r
}

func (r *Resampler) buildPhaseTable() {
	for p := 0; p < numPhases; p++ {
		frac := float64(p) / float64(numPhases)
		var sum float64
		for t := -halfTaps; t <= halfTaps; t++ {
			x := (float64(t) - frac) * r.cutoff
			w := sincValue(x) * hann(float64(t)-frac, halfTaps)
			r.phase[p][t+halfTaps] = w
			sum += w
		}
		if sum != 0 {
			for i := range r.phase[p] {
				r.phase[p][i] /= sum // normalize so a DC input passes through at unity gain
			}
		}
	}
}

func sincValue(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func hann(x float64, radius int) float64 {
	if x < -float64(radius) || x > float64(radius) {
		return 0
	}
	return 0.5 + 0.5*math.Cos(math.Pi*x/float64(radius))
}

// Resample converts as much of input as fits into output, both interleaved
// at this Resampler's channel count, returning the number of output samples
// (not frames) written. Only the fractional read position persists across
// calls; no filter history is kept between chunks.
func (r *Resampler) Resample(input []float32, output []float32) int {
	if len(input) == 0 || r.channels == 0 {
		return 0
	}

	inFrames := len(input) / r.channels
	outFrames := len(output) / r.channels
	outIdx := 0

	for outIdx < outFrames {
		if int(r.pos)+halfTaps+1 >= inFrames {
			break
		}

		frac := r.pos - math.Floor(r.pos)
		phaseIdx := int(frac * float64(numPhases))
		if phaseIdx >= numPhases {
			phaseIdx = numPhases - 1
		}
		kernel := &r.phase[phaseIdx]

		base := int(math.Floor(r.pos))
		for ch := 0; ch < r.channels; ch++ {
			var acc float64
			for t := -halfTaps; t <= halfTaps; t++ {
				idx := base + t
				if idx < 0 || idx >= inFrames {
					continue
				}
				acc += float64(input[idx*r.channels+ch]) * kernel[t+halfTaps]
			}
			output[outIdx*r.channels+ch] = float32(acc)
		}

		outIdx++
		r.pos += r.ratio
	}

	// Carry the fractional remainder forward; the caller is responsible for
	// re-presenting any unconsumed tail of input on the next call.
	consumedFrames := int(r.pos)
	r.pos -= float64(consumedFrames)

	return outIdx * r.channels
}

// Reset clears resampler state (fractional position) without rebuilding the
// filter bank.
func (r *Resampler) Reset() {
	r.pos = 0
}

// OutputFrames reports how many output frames a given number of input
// frames will produce, for preallocating destination buffers.
func (r *Resampler) OutputFrames(inputFrames int) int {
	return int(float64(inputFrames) / r.ratio)
}
