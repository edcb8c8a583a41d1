// ABOUTME: Raw PCM audio decoder
// ABOUTME: Decodes headerless 16-bit or 24-bit little-endian PCM to float32 samples
package decode

import (
	"encoding/binary"
	"fmt"
)

// PCM decodes headerless little-endian PCM. Since raw PCM carries no
// self-describing header, rate and channel count must be supplied by the
// caller at construction time.
type PCM struct {
	rate     int
	channels int
	bitDepth int
}

// NewPCM creates a PCM decoder for the given format. bitDepth must be 16 or 24.
func NewPCM(rate, channels, bitDepth int) (*PCM, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("decode: unsupported PCM bit depth %d (supported: 16, 24)", bitDepth)
	}
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("decode: invalid PCM format rate=%d channels=%d", rate, channels)
	}
	return &PCM{rate: rate, channels: channels, bitDepth: bitDepth}, nil
}

// Decode converts raw PCM bytes to interleaved float32 samples in [-1, 1].
func (d *PCM) Decode(data []byte) (rate, channels int, samples []float32, err error) {
	if len(data) == 0 {
		return 0, 0, nil, fmt.Errorf("decode: empty PCM input")
	}

	if d.bitDepth == 24 {
		n := len(data) / 3
		samples = make([]float32, n)
		for i := 0; i < n; i++ {
			b := data[i*3 : i*3+3]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			samples[i] = float32(v) / 8388608.0
		}
	} else {
		n := len(data) / 2
		samples = make([]float32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = float32(v) / 32768.0
		}
	}

	return d.rate, d.channels, samples, nil
}
