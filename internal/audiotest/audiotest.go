// Package audiotest writes small audio fixtures for tests.
package audiotest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.senan.xyz/taglib"
)

const (
	sampleRate = 44100
	bitDepth   = 16
)

// WriteWAV writes a tenth of a second of mono 16-bit silence to path,
// creating parent directories as needed.
func WriteWAV(t testing.TB, path string) {
	t.Helper()
	writeSilence(t, path, func(f *os.File) encoder {
		return wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	})
}

// WriteAIFF is WriteWAV for AIFF containers.
func WriteAIFF(t testing.TB, path string) {
	t.Helper()
	writeSilence(t, path, func(f *os.File) encoder {
		return aiff.NewEncoder(f, sampleRate, bitDepth, 1)
	})
}

type encoder interface {
	Write(buf *audio.IntBuffer) error
	Close() error
}

func writeSilence(t testing.TB, path string, newEncoder func(*os.File) encoder) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture %s: %v", path, err)
	}
	defer f.Close()

	enc := newEncoder(f)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, sampleRate/10),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to encode fixture %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finish fixture %s: %v", path, err)
	}
}

// WriteTagged writes a fixture to path and stores tags in it. Paths ending
// in .aif or .aiff get an AIFF container, anything else a WAV.
// Skips the test if the tags do not survive a write/read round trip.
func WriteTagged(t testing.TB, path string, tags map[string]string) {
	t.Helper()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".aif", ".aiff":
		WriteAIFF(t, path)
	default:
		WriteWAV(t, path)
	}

	props := make(map[string][]string, len(tags))
	for key, value := range tags {
		props[strings.ToUpper(key)] = []string{value}
	}
	if err := taglib.WriteTags(path, props, 0); err != nil {
		t.Skipf("taglib cannot tag %s: %v", path, err)
	}

	got, err := taglib.ReadTags(path)
	if err != nil {
		t.Skipf("taglib cannot read back %s: %v", path, err)
	}
	for key := range props {
		if vals := got[key]; len(vals) == 0 {
			t.Skipf("taglib dropped tag %s on %s", key, path)
		}
	}
}
