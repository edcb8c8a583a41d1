// ABOUTME: Tests for the Loader decode/downmix/resample/normalize pipeline
// ABOUTME: Uses the PCM decoder as a stand-in for a real file format
package loader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/vectoraudio/spatialengine/pkg/audio/decode"
)

func pcm16Tone(rate int, freq float64, channels, frames int) []byte {
	buf := make([]byte, frames*channels*2)
	for i := 0; i < frames; i++ {
		v := int16(math.Sin(2*math.Pi*freq*float64(i)/float64(rate)) * 16000)
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(buf[(i*channels+ch)*2:], uint16(v))
		}
	}
	return buf
}

func TestLoadRejectsEmptyInput(t *testing.T) {
	dec, _ := decode.NewPCM(48000, 1, 16)
	if _, err := Load(nil, dec, Options{TargetRate: 48000}); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLoadMatchesTargetRate(t *testing.T) {
	dec, _ := decode.NewPCM(48000, 1, 16)
	data := pcm16Tone(48000, 440, 1, 4800)

	buf, err := Load(data, dec, Options{TargetRate: 48000})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if buf.Rate() != 48000 {
		t.Errorf("rate = %d, want 48000", buf.Rate())
	}
	if buf.Channels() != 1 {
		t.Errorf("channels = %d, want 1", buf.Channels())
	}
}

func TestLoadResamplesToTargetRate(t *testing.T) {
	dec, _ := decode.NewPCM(44100, 1, 16)
	data := pcm16Tone(44100, 440, 1, 4410)

	buf, err := Load(data, dec, Options{TargetRate: 48000})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if buf.Rate() != 48000 {
		t.Errorf("rate = %d, want 48000", buf.Rate())
	}
	// Roughly rate-proportional frame count (the polyphase filter stops a
	// few input frames short of the end of the input).
	wantFrames := 4410 * 48000 / 44100
	if diff := buf.Frames() - wantFrames; diff < -32 || diff > 32 {
		t.Errorf("frames = %d, want ~%d", buf.Frames(), wantFrames)
	}
}

func TestLoadForceMonoAveragesChannels(t *testing.T) {
	dec, _ := decode.NewPCM(48000, 2, 16)
	// Two frames: (1.0, -1.0) and (0.5, 0.5) in 16-bit PCM.
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:], uint16(int16(32767)))
	binary.LittleEndian.PutUint16(data[2:], uint16(int16(-32768)))
	binary.LittleEndian.PutUint16(data[4:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(data[6:], uint16(int16(16384)))

	buf, err := Load(data, dec, Options{TargetRate: 48000, ConvertToMono: ForceMono})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if buf.Channels() != 1 {
		t.Fatalf("channels = %d, want 1", buf.Channels())
	}
	if buf.Frames() != 2 {
		t.Fatalf("frames = %d, want 2", buf.Frames())
	}

	samples := buf.Samples()
	if math.Abs(float64(samples[0])) > 0.01 {
		t.Errorf("frame 0 average = %v, want ~0", samples[0])
	}
	if math.Abs(float64(samples[1])-0.5) > 0.01 {
		t.Errorf("frame 1 average = %v, want ~0.5", samples[1])
	}
}

func TestLoadNormalizePeaksNearTarget(t *testing.T) {
	dec, _ := decode.NewPCM(48000, 1, 16)
	data := pcm16Tone(48000, 440, 1, 4800) // peak well under full scale already

	buf, err := Load(data, dec, Options{TargetRate: 48000, Normalize: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var peak float32
	for _, s := range buf.Samples() {
		if a := s; a > peak {
			peak = a
		} else if -a > peak {
			peak = -a
		}
	}

	wantPeak := float32(math.Pow(10, -1.0/20))
	if math.Abs(float64(peak-wantPeak)) > 0.02 {
		t.Errorf("peak = %v, want ~%v (-1 dBFS)", peak, wantPeak)
	}
}
