package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rgcompare/internal/replaygain"
)

var (
	ErrProbeFailed     = errors.New("probe failed")
	ErrProbeTimeout    = errors.New("probe timed out")
	ErrMalformedOutput = errors.New("malformed probe output")
	ErrFFprobeNotFound = errors.New("ffprobe not found")
	ErrNoProbers       = errors.New("no probers configured")
	ErrUnknownProber   = errors.New("unknown prober")
)

// Prober extracts the loudness tags of a single audio file.
type Prober interface {
	Name() string
	Probe(ctx context.Context, path string) (replaygain.Tags, error)
}

// Chain tries multiple probers in order, returning the result of the first
// one that succeeds.
type Chain struct {
	probers []Prober
	onError func(p Prober, path string, err error)
}

// NewChain creates a Chain that queries probers in order. onError, if not
// nil, is called for every prober that fails before the next one is tried.
func NewChain(probers []Prober, onError func(p Prober, path string, err error)) *Chain {
	return &Chain{probers: probers, onError: onError}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Probe(ctx context.Context, path string) (replaygain.Tags, error) {
	if len(c.probers) == 0 {
		return replaygain.Tags{}, ErrNoProbers
	}

	var errs []error
	for _, p := range c.probers {
		tags, err := p.Probe(ctx, path)
		if err == nil {
			return tags, nil
		}
		if c.onError != nil {
			c.onError(p, path, err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return replaygain.Tags{}, errors.Join(errs...)
}

// Options selects and configures the prober built by New.
type Options struct {
	Kind        string // auto, ffprobe or taglib
	FFprobePath string
	Timeout     time.Duration
	// OnFallback is called when the auto chain falls back from one prober
	// to the next for a file.
	OnFallback func(p Prober, path string, err error)
}

// New builds the prober described by opts. With Kind "auto" it prefers
// ffprobe and falls back to taglib per file; if ffprobe is not installed
// only taglib is used and usedFallback is true.
func New(opts Options) (p Prober, usedFallback bool, err error) {
	switch opts.Kind {
	case "ffprobe":
		path, err := LookupFFprobe(opts.FFprobePath)
		if err != nil {
			return nil, false, err
		}
		return NewFFprobe(path, opts.Timeout), false, nil

	case "taglib":
		return TagLib{}, false, nil

	case "", "auto":
		path, err := LookupFFprobe(opts.FFprobePath)
		if err != nil {
			return TagLib{}, true, nil
		}
		return NewChain([]Prober{NewFFprobe(path, opts.Timeout), TagLib{}}, opts.OnFallback), false, nil

	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownProber, opts.Kind)
	}
}
