package progress

import (
	"io"
	"os"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Bar is a progress bar for the probe stage. It renders to stderr.
type Bar struct {
	p    *mpb.Progress
	bar  *mpb.Bar
	once sync.Once
}

// New creates a new progress bar
func New(total int) *Bar {
	return NewWithOutput(total, os.Stderr)
}

// NewWithOutput creates a progress bar rendering to w.
func NewWithOutput(total int, w io.Writer) *Bar {
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Probing "),
			decor.CountersNoUnit("%d/%d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Name(" ETA: "),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
	return &Bar{p: p, bar: bar}
}

// Increment increases the progress counter
func (b *Bar) Increment() {
	b.bar.Increment()
}

// Finish stops the bar and waits for the final render. A bar that has not
// reached its total (an interrupted run) is aborted in place.
func (b *Bar) Finish() {
	b.once.Do(func() {
		if !b.bar.Completed() {
			b.bar.Abort(false)
		}
		b.p.Wait()
	})
}
