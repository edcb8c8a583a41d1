// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to float32 samples via go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// MP3 decodes MP3 audio using go-mp3, which always produces 16-bit stereo
// PCM at the stream's native sample rate.
type MP3 struct{}

// NewMP3 creates an MP3 decoder.
func NewMP3() *MP3 { return &MP3{} }

// Decode converts a complete MP3 blob to interleaved float32 samples.
func (MP3) Decode(data []byte) (rate, channels int, samples []float32, err error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode: mp3: %w", err)
	}

	const chunk = 8192
	buf := make([]byte, 0, len(data)*4)
	tmp := make([]byte, chunk)
	for {
		n, rerr := dec.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, 0, nil, fmt.Errorf("decode: mp3: %w", rerr)
		}
		if n == 0 {
			break
		}
	}

	numSamples := len(buf) / 2
	samples = make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		v := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		samples[i] = float32(v) / 32768.0
	}

	return dec.SampleRate(), 2, samples, nil
}
