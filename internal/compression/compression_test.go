package compression

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	data := []byte("Hello, World! This message is long enough to compress meaningfully across every supported algorithm.")

	for _, tag := range []Tag{Store, Deflate, Zstd, LZ4} {
		t.Run(tag.String(), func(t *testing.T) {
			packed, err := Compress(tag, data)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			unpacked, err := Decompress(tag, packed, int64(len(data)))
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}
			if !bytes.Equal(unpacked, data) {
				t.Fatalf("round trip mismatch: got %q want %q", unpacked, data)
			}
		})
	}
}

func TestStoreLengthMismatchFails(t *testing.T) {
	_, err := Decompress(Store, []byte("abc"), 4)
	if err == nil {
		t.Fatal("expected an error on length mismatch")
	}
}

func TestUnsupportedTagFails(t *testing.T) {
	_, err := Decompress(Tag(12345), []byte("abc"), 3)
	if err == nil {
		t.Fatal("expected unsupported-compression error")
	}
}

func TestCRC32(t *testing.T) {
	data := []byte("Hello")
	const want = 0xF7D18982
	if got := CRC32(data); got != want {
		t.Fatalf("crc32 = %#x, want %#x", got, want)
	}
	if !VerifyCRC32(data, want) {
		t.Fatal("VerifyCRC32 should accept the matching checksum")
	}
	if VerifyCRC32(data, want+1) {
		t.Fatal("VerifyCRC32 should reject a mismatched checksum")
	}
}

func TestLZ4FrameDetection(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)
	frame, err := Compress(LZ4, data)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	// Compress(LZ4) emits a raw block, which does not start with the frame
	// magic, so this checks that such data is not mistaken for a frame and
	// goes through the block decode path end-to-end. No test in this file
	// feeds Decompress a real lz4 frame.
	out, err := Decompress(LZ4, frame, int64(len(data)))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("lz4 block round trip mismatch")
	}
}
