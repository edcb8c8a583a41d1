// ABOUTME: WAV container decoder
// ABOUTME: Parses a canonical RIFF/WAVE header and decodes the PCM data chunk
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WAV decodes RIFF/WAVE files carrying 16-bit or 24-bit PCM. The fmt and
// data chunks are found in whichever order they appear and other chunks
// are skipped. Compressed WAV formats are not supported; this is a
// readable-byte-source Decoder, not a general-purpose container parser.
type WAV struct{}

// NewWAV creates a WAV decoder.
func NewWAV() *WAV { return &WAV{} }

// Decode parses the RIFF header, locates the fmt and data chunks, and
// converts the PCM payload to interleaved float32 samples.
func (WAV) Decode(data []byte) (rate, channels int, samples []float32, err error) {
	if len(data) < 44 {
		return 0, 0, nil, fmt.Errorf("decode: WAV input too short (%d bytes)", len(data))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return 0, 0, nil, fmt.Errorf("decode: not a RIFF/WAVE file")
	}

	var (
		fmtFound     bool
		dataStart    int
		dataLen      int
		audioFormat  uint16
		bitDepth     int
		foundRate    int
		foundChans   int
	)

	pos := 12
	for pos+8 <= len(data) {
		chunkID := data[pos : pos+4]
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch {
		case bytes.Equal(chunkID, []byte("fmt ")):
			if body+16 > len(data) {
				return 0, 0, nil, fmt.Errorf("decode: truncated fmt chunk")
			}
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			foundChans = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			foundRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			fmtFound = true
		case bytes.Equal(chunkID, []byte("data")):
			dataStart = body
			dataLen = chunkSize
		}

		// Chunks are padded to even length.
		pos = body + chunkSize
		if chunkSize%2 != 0 {
			pos++
		}
		if fmtFound && dataLen > 0 {
			break
		}
	}

	if !fmtFound {
		return 0, 0, nil, fmt.Errorf("decode: missing fmt chunk")
	}
	if dataStart == 0 || dataLen == 0 {
		return 0, 0, nil, fmt.Errorf("decode: missing data chunk")
	}
	if audioFormat != 1 {
		return 0, 0, nil, fmt.Errorf("decode: unsupported WAV audio format %d (only PCM supported)", audioFormat)
	}
	if bitDepth != 16 && bitDepth != 24 {
		return 0, 0, nil, fmt.Errorf("decode: unsupported WAV bit depth %d", bitDepth)
	}
	if dataStart+dataLen > len(data) {
		dataLen = len(data) - dataStart
	}

	pcm, err := NewPCM(foundRate, foundChans, bitDepth)
	if err != nil {
		return 0, 0, nil, err
	}
	_, _, samples, err = pcm.Decode(data[dataStart : dataStart+dataLen])
	if err != nil {
		return 0, 0, nil, err
	}
	return foundRate, foundChans, samples, nil
}
