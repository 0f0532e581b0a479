package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgcompare/internal/audiotest"
	"rgcompare/internal/config"
	"rgcompare/internal/logger"
	"rgcompare/internal/probe"
	"rgcompare/internal/replaygain"
	"rgcompare/internal/report"
)

// tableProber answers from a fixed path → tags table.
type tableProber map[string]replaygain.Tags

func (tableProber) Name() string { return "table" }

func (t tableProber) Probe(_ context.Context, path string) (replaygain.Tags, error) {
	tags, ok := t[path]
	if !ok {
		return replaygain.Tags{}, errors.New("unreadable")
	}
	return tags, nil
}

func tagsOf(gain, peak, rng float64) replaygain.Tags {
	return replaygain.Tags{Track: replaygain.Record{
		Gain:  replaygain.Of(gain, replaygain.Decibel),
		Peak:  replaygain.Of(peak, replaygain.Linear),
		Range: replaygain.Of(rng, replaygain.Decibel),
	}}
}

func newFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/one", 0755))
	require.NoError(t, fs.MkdirAll("/two", 0755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("x"), 0644))
	}
	return fs
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.FirstDir = "/one"
	cfg.SecondDir = "/two"
	cfg.Workers = 2
	return cfg
}

func quietLogger() *logger.Logger {
	return logger.NewWithOutput(false, io.Discard)
}

func TestRunSinglePair(t *testing.T) {
	fs := newFs(t, "/one/song1.flac", "/two/song1.ogg")
	p := tableProber{
		"/one/song1.flac": tagsOf(1.00, 0.900000, 5.00),
		"/two/song1.ogg":  tagsOf(2.50, 0.905000, 4.00),
	}

	var matched int
	rep, err := run(context.Background(), fs, testConfig(), quietLogger(), p, Hooks{
		OnPairsMatched: func(n int) { matched = n },
	})
	require.NoError(t, err)
	assert.Equal(t, 1, matched)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, rep))
	assert.Equal(t, "Gain difference: song1: 1.50 dB\n"+
		"Peak difference: song1: 0.01\n"+
		"Range difference: song1: 1.00 dB\n", buf.String())
}

func TestRunNoMatches(t *testing.T) {
	fs := newFs(t, "/one/a.flac", "/two/b.flac")

	rep, err := run(context.Background(), fs, testConfig(), quietLogger(), tableProber{}, Hooks{})
	require.NoError(t, err)
	assert.Zero(t, rep.Pairs)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, rep))
	assert.Equal(t, "No comparable tracks found.\n", buf.String())
}

func TestRunMissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/one", 0755))

	_, err := run(context.Background(), fs, testConfig(), quietLogger(), tableProber{}, Hooks{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/two")
}

func TestRunCountsSkippedPairs(t *testing.T) {
	fs := newFs(t,
		"/one/good.flac", "/two/good.flac",
		"/one/bad.flac", "/two/bad.flac",
	)
	p := tableProber{
		"/one/good.flac": tagsOf(-6, 0.8, 4),
		"/two/good.flac": tagsOf(-7, 0.8, 4),
		"/one/bad.flac":  tagsOf(-6, 0.8, 4),
	}

	var warnings []string
	var progress atomic.Int32
	rep, err := run(context.Background(), fs, testConfig(), quietLogger(), p, Hooks{
		OnProgress: func() { progress.Add(1) },
		OnWarning:  func(msg string) { warnings = append(warnings, msg) },
	})
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Pairs)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, int32(2), progress.Load())
	assert.Len(t, warnings, 1)
	assert.Equal(t, "good", rep.Sections[0].Summary.Gain.Name)
}

func TestRunAllPairsSkipped(t *testing.T) {
	fs := newFs(t, "/one/a.flac", "/one/b.flac", "/two/a.flac", "/two/b.flac")

	var warnings []string
	rep, err := run(context.Background(), fs, testConfig(), quietLogger(), tableProber{}, Hooks{
		OnWarning: func(msg string) { warnings = append(warnings, msg) },
	})
	require.NoError(t, err)
	assert.Zero(t, rep.Pairs)
	assert.Equal(t, 2, rep.Skipped)
	assert.Equal(t, []string{"2 of 2 pairs could not be probed"}, warnings)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, rep))
	assert.NotContains(t, buf.String(), "No comparable tracks found.")
	assert.Contains(t, buf.String(), "Skipped 2 pairs that could not be probed.")
}

func TestRunWarnsThroughLoggerWithoutHook(t *testing.T) {
	fs := newFs(t, "/one/a.flac", "/two/a.flac")

	var console bytes.Buffer
	_, err := run(context.Background(), fs, testConfig(), logger.NewWithOutput(false, &console), tableProber{}, Hooks{})
	require.NoError(t, err)
	assert.Contains(t, console.String(), "1 of 1 pairs could not be probed")
}

func TestRunModes(t *testing.T) {
	fs := newFs(t, "/one/x.flac", "/two/x.flac")
	withAlbum := func(tags replaygain.Tags, gain float64) replaygain.Tags {
		tags.Album = replaygain.Record{Gain: replaygain.Of(gain, replaygain.Decibel)}
		return tags
	}
	p := tableProber{
		"/one/x.flac": withAlbum(tagsOf(-6, 0.8, 4), -8),
		"/two/x.flac": withAlbum(tagsOf(-6, 0.8, 4), -5),
	}

	tests := []struct {
		mode   string
		titled bool
		scopes []replaygain.Scope
	}{
		{config.ModeTrack, false, []replaygain.Scope{replaygain.Track}},
		{config.ModeAlbum, true, []replaygain.Scope{replaygain.Album}},
		{config.ModeBoth, true, []replaygain.Scope{replaygain.Track, replaygain.Album}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := testConfig()
			cfg.Mode = tt.mode

			rep, err := run(context.Background(), fs, cfg, quietLogger(), p, Hooks{})
			require.NoError(t, err)
			assert.Equal(t, tt.titled, rep.Titled)
			require.Len(t, rep.Sections, len(tt.scopes))
			for i, s := range rep.Sections {
				assert.Equal(t, tt.scopes[i], s.Scope)
				if s.Scope == replaygain.Album {
					assert.Equal(t, 3.0, s.Summary.Gain.Value)
					assert.False(t, s.Summary.Peak.Found())
				}
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	fs := newFs(t, "/one/a.flac", "/two/a.flac")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run(ctx, fs, testConfig(), quietLogger(), tableProber{}, Hooks{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWithTagLib(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	a := filepath.Join(first, "track.aiff")
	b := filepath.Join(second, "track.aiff")
	audiotest.WriteTagged(t, a, map[string]string{
		"replaygain_track_gain": "-6.50 dB",
		"replaygain_track_peak": "0.950000",
	})
	audiotest.WriteTagged(t, b, map[string]string{
		"replaygain_track_gain": "-7.25 dB",
		"replaygain_track_peak": "0.940000",
	})

	cfg := config.DefaultConfig()
	cfg.FirstDir, cfg.SecondDir = first, second
	cfg.Workers = 1

	rep, err := Run(context.Background(), cfg, quietLogger(), probe.TagLib{}, Hooks{})
	require.NoError(t, err)
	require.Equal(t, 1, rep.Pairs)

	gain := rep.Sections[0].Summary.Gain
	assert.Equal(t, "track", gain.Name)
	assert.InDelta(t, 0.75, gain.Value, 1e-9)
	assert.False(t, rep.Sections[0].Summary.Range.Found())
}
