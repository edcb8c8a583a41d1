// ABOUTME: Opus audio decoder
// ABOUTME: Decodes a sequence of length-prefixed Opus packets to float32 samples via hraban/opus

package decode

import (
	"encoding/binary"
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

// Opus decodes a byte stream holding 2-byte-length-prefixed Opus packets,
// the same framing Opus-over-datagram transports use. Unlike WAV or PCM,
// Opus carries no self-describing rate/channel header in each packet, so
// both are supplied at construction time the same way PCM requires them.
type Opus struct {
	rate     int
	channels int
}

// NewOpus creates an Opus decoder for the given sample rate (one of the
// codec's five supported rates: 8000, 12000, 16000, 24000, 48000) and
// channel count (1 or 2).
func NewOpus(rate, channels int) (*Opus, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("decode: opus channels must be 1 or 2, got %d", channels)
	}
	return &Opus{rate: rate, channels: channels}, nil
}

// Decode parses data as consecutive uint16-length-prefixed Opus packets and
// decodes each in turn, concatenating the resulting float32 samples.
func (d *Opus) Decode(data []byte) (rate, channels int, samples []float32, err error) {
	dec, err := opus.NewDecoder(d.rate, d.channels)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode: opus: new decoder: %w", err)
	}

	pcm16 := make([]int16, 5760*d.channels) // 120ms at 48kHz, the largest Opus frame
	for off := 0; off < len(data); {
		if off+2 > len(data) {
			return 0, 0, nil, fmt.Errorf("decode: opus: truncated packet length at offset %d", off)
		}
		packetLen := int(binary.LittleEndian.Uint16(data[off : off+2]))
		off += 2
		if off+packetLen > len(data) {
			return 0, 0, nil, fmt.Errorf("decode: opus: truncated packet body at offset %d", off)
		}
		packet := data[off : off+packetLen]
		off += packetLen

		n, err := dec.Decode(packet, pcm16)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("decode: opus: decode packet: %w", err)
		}
		frameSamples := n * d.channels
		for i := 0; i < frameSamples; i++ {
			samples = append(samples, float32(pcm16[i])/32768)
		}
	}

	return d.rate, d.channels, samples, nil
}
