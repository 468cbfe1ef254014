package pipeline

import (
	"errors"
	"testing"
)

func TestSniffAudio_Wav(t *testing.T) {
	t.Parallel()

	data := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
	ext, mime, err := SniffAudio(data)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if ext != ".wav" {
		t.Fatalf("ext=%q", ext)
	}
	if mime == "" {
		t.Fatal("empty mime")
	}
}

func TestSniffAudio_MP3(t *testing.T) {
	t.Parallel()

	data := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x21"), make([]byte, 64)...)
	ext, _, err := SniffAudio(data)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if ext != ".mp3" {
		t.Fatalf("ext=%q", ext)
	}
}

func TestSniffAudio_RejectsNonAudio(t *testing.T) {
	t.Parallel()

	_, _, err := SniffAudio([]byte("this is not audio at all"))
	if !errors.Is(err, ErrUnsupportedAudio) {
		t.Fatalf("err=%v", err)
	}
}
