// ABOUTME: Tests for the Opus decoder's framing and construction errors
package decode

import "testing"

func TestNewOpusRejectsBadChannelCount(t *testing.T) {
	if _, err := NewOpus(48000, 3); err == nil {
		t.Fatal("expected error for 3-channel opus decoder")
	}
}

func TestOpusDecodeRejectsTruncatedLength(t *testing.T) {
	d, err := NewOpus(48000, 1)
	if err != nil {
		t.Fatalf("NewOpus: %v", err)
	}
	if _, _, _, err := d.Decode([]byte{0x01}); err == nil {
		t.Fatal("expected error for truncated packet length prefix")
	}
}

func TestOpusDecodeRejectsTruncatedBody(t *testing.T) {
	d, err := NewOpus(48000, 1)
	if err != nil {
		t.Fatalf("NewOpus: %v", err)
	}
	// length prefix claims 10 bytes follow, but none are present.
	if _, _, _, err := d.Decode([]byte{0x0a, 0x00}); err == nil {
		t.Fatal("expected error for truncated packet body")
	}
}

func TestOpusDecodeEmptyInputYieldsNoSamples(t *testing.T) {
	d, err := NewOpus(48000, 1)
	if err != nil {
		t.Fatalf("NewOpus: %v", err)
	}
	_, _, samples, err := d.Decode(nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(samples) != 0 {
		t.Fatalf("expected no samples for empty input, got %d", len(samples))
	}
}
