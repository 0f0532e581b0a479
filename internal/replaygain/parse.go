package replaygain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Prefix marks the keys that carry loudness information.
const Prefix = "replaygain_"

const (
	KeyTrackGain         = "replaygain_track_gain"
	KeyTrackPeak         = "replaygain_track_peak"
	KeyTrackRange        = "replaygain_track_range"
	KeyAlbumGain         = "replaygain_album_gain"
	KeyAlbumPeak         = "replaygain_album_peak"
	KeyAlbumRange        = "replaygain_album_range"
	KeyReferenceLoudness = "replaygain_reference_loudness"
)

var ErrBadTagValue = errors.New("bad replaygain tag value")

// ParseValue interprets a single tag. ok is false when the key is not a
// loudness tag or its value carries no recognised unit.
func ParseValue(key, value string) (v Value, ok bool, err error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !strings.HasPrefix(key, Prefix) {
		return Value{}, false, nil
	}

	value = strings.TrimSpace(value)
	var unit Unit
	switch {
	case strings.HasSuffix(value, "dB"):
		value, unit = strings.TrimSuffix(value, "dB"), Decibel
	case strings.HasSuffix(value, "LUFS"):
		value, unit = strings.TrimSuffix(value, "LUFS"), LoudnessUnit
	case strings.HasSuffix(value, "LU"):
		value, unit = strings.TrimSuffix(value, "LU"), LoudnessUnit
	case strings.HasSuffix(key, "peak"):
		unit = Linear
	default:
		return Value{}, false, nil
	}

	f, err := parseFloat(value)
	if err != nil {
		return Value{}, false, fmt.Errorf("%w: %s=%q: %v", ErrBadTagValue, key, value, err)
	}
	return Of(f, unit), true, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "−", "-"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return f, nil
}

// ParseTags builds Tags from a raw tag mapping as reported by a prober.
// Tags that are missing stay absent. A malformed loudness value fails the
// whole file. When keys differ only in case, the one sorting first is used.
func ParseTags(filename string, raw map[string]string) (Tags, error) {
	tags := Tags{
		Filename: filename,
		Track:    Record{Filename: filename},
		Album:    Record{Filename: filename},
		Other:    make(map[string]string),
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Keys differing only in case collapse to one; the first in sorted
	// order wins.
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		value := raw[key]
		lower := strings.ToLower(strings.TrimSpace(key))
		if seen[lower] {
			continue
		}
		seen[lower] = true

		if !strings.HasPrefix(lower, Prefix) {
			tags.Other[lower] = value
			continue
		}

		v, ok, err := ParseValue(lower, value)
		if err != nil {
			return Tags{}, err
		}
		if !ok {
			continue
		}

		switch lower {
		case KeyTrackGain:
			tags.Track.Gain = v
		case KeyTrackPeak:
			tags.Track.Peak = v
		case KeyTrackRange:
			tags.Track.Range = v
		case KeyAlbumGain:
			tags.Album.Gain = v
		case KeyAlbumPeak:
			tags.Album.Peak = v
		case KeyAlbumRange:
			tags.Album.Range = v
		case KeyReferenceLoudness:
			tags.Track.ReferenceLoudness = v
			tags.Album.ReferenceLoudness = v
		}
	}

	return tags, nil
}
