package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"rgcompare/internal/compare"
	"rgcompare/internal/config"
	"rgcompare/internal/library"
	"rgcompare/internal/logger"
	"rgcompare/internal/probe"
	"rgcompare/internal/replaygain"
	"rgcompare/internal/report"
)

// Hooks observe a run. OnWarning, when set, receives the run's warnings
// instead of the logger so they can be shown once a progress bar is gone.
type Hooks struct {
	OnPairsMatched func(total int)
	OnProgress     func()
	OnWarning      func(msg string)
}

// Run executes the full comparison: enumerate both roots → match by stem →
// probe pairs → reduce to maxima.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger, p probe.Prober, hooks Hooks) (report.Report, error) {
	return run(ctx, afero.NewOsFs(), cfg, log, p, hooks)
}

func run(ctx context.Context, fs afero.Fs, cfg config.Config, log *logger.Logger, p probe.Prober, hooks Hooks) (report.Report, error) {
	start := time.Now()
	exts := library.NewExtensions(cfg.Extensions)

	warnf := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		if hooks.OnWarning != nil {
			hooks.OnWarning(msg)
			return
		}
		log.Warn("%s", msg)
	}
	warn := func(path string, err error) {
		warnf("skipping %s: %v", path, err)
	}

	first, err := library.Enumerate(fs, cfg.FirstDir, exts, warn)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to list first directory: %w", err)
	}
	second, err := library.Enumerate(fs, cfg.SecondDir, exts, warn)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to list second directory: %w", err)
	}
	log.Debug("Found %s files in %s and %s files in %s",
		humanize.Comma(int64(len(first))), cfg.FirstDir, humanize.Comma(int64(len(second))), cfg.SecondDir)

	matches := library.Match(cfg.FirstDir, first, cfg.SecondDir, second)
	log.Debug("Matched %d pairs (%d unmatched in first, %d unmatched in second)",
		len(matches.Pairs), len(matches.UnmatchedFirst), len(matches.UnmatchedSecond))
	for _, path := range matches.UnmatchedFirst {
		log.Debug("No counterpart for %s", path)
	}
	for _, path := range matches.UnmatchedSecond {
		log.Debug("No counterpart for %s", path)
	}

	if hooks.OnPairsMatched != nil {
		hooks.OnPairsMatched(len(matches.Pairs))
	}

	runner := compare.NewRunner(p, cfg.Workers, log)
	runner.OnProgress = hooks.OnProgress
	outcomes := runner.Run(ctx, matches.Pairs)

	scopes := scopesFor(cfg.Mode)
	reducers := make([]*compare.Reducer, len(scopes))
	for i := range reducers {
		reducers[i] = compare.NewReducer()
	}

	rep := report.Report{Titled: cfg.Mode != config.ModeTrack}
	for _, o := range outcomes {
		if o.Err != nil {
			rep.Skipped++
			log.Zerolog().Warn().
				Str("first", o.Pair.First).
				Str("second", o.Pair.Second).
				Err(o.Err).
				Msgf("Skipping %s", o.Pair.Name)
			continue
		}
		rep.Pairs++
		for i, scope := range scopes {
			reducers[i].Add(o.Pair.Name, o.First.Record(scope), o.Second.Record(scope))
		}
	}

	for i, scope := range scopes {
		rep.Sections = append(rep.Sections, report.Section{Scope: scope, Summary: reducers[i].Summary()})
	}

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("comparison interrupted: %w", err)
	}

	if rep.Skipped > 0 {
		warnf("%d of %d pairs could not be probed", rep.Skipped, len(outcomes))
	}

	log.Info("Compared %s pairs in %s", humanize.Comma(int64(rep.Pairs)), time.Since(start).Round(time.Millisecond))
	return rep, nil
}

func scopesFor(mode string) []replaygain.Scope {
	switch mode {
	case config.ModeAlbum:
		return []replaygain.Scope{replaygain.Album}
	case config.ModeBoth:
		return []replaygain.Scope{replaygain.Track, replaygain.Album}
	default:
		return []replaygain.Scope{replaygain.Track}
	}
}
