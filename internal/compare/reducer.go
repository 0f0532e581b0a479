package compare

import (
	"math"

	"rgcompare/internal/replaygain"
)

// Triple holds the absolute differences between two records. A metric is
// absent when either record lacks it.
type Triple struct {
	Gain  replaygain.Value
	Peak  replaygain.Value
	Range replaygain.Value
}

// Difference computes |a-b| for gain, peak and range.
func Difference(a, b replaygain.Record) Triple {
	return Triple{
		Gain:  a.Gain.AbsDiff(b.Gain),
		Peak:  a.Peak.AbsDiff(b.Peak),
		Range: a.Range.AbsDiff(b.Range),
	}
}

// Maximum tracks the largest difference seen for one metric.
type Maximum struct {
	Name  string
	Value float64
	Unit  replaygain.Unit
	// First and Second are the records of the pair that produced Value.
	First  replaygain.Record
	Second replaygain.Record
	// Pairs counts the pairs that had this metric on both sides.
	Pairs int
	// Missing counts the pairs excluded because a side lacked the metric.
	Missing int
}

func newMaximum() Maximum {
	return Maximum{Value: math.Inf(-1)}
}

// Found reports whether any pair contributed to the maximum.
func (m Maximum) Found() bool {
	return m.Pairs > 0
}

func (m *Maximum) observe(name string, diff replaygain.Value, a, b replaygain.Record) {
	if !diff.Valid {
		m.Missing++
		return
	}
	m.Pairs++
	// Strictly greater: on ties the earliest pair keeps the maximum.
	if diff.Float > m.Value {
		m.Name = name
		m.Value = diff.Float
		m.Unit = diff.Unit
		m.First = a
		m.Second = b
	}
}

// Summary is the outcome of a reduction.
type Summary struct {
	Gain  Maximum
	Peak  Maximum
	Range Maximum
}

// Reducer keeps the running maxima over a sequence of pairs. It is not safe
// for concurrent use; pairs are fed in order so the result is deterministic.
type Reducer struct {
	summary Summary
}

// NewReducer creates a Reducer with every maximum at negative infinity.
func NewReducer() *Reducer {
	return &Reducer{summary: Summary{
		Gain:  newMaximum(),
		Peak:  newMaximum(),
		Range: newMaximum(),
	}}
}

// Add folds one pair into the maxima. name attributes the pair in reports.
func (r *Reducer) Add(name string, a, b replaygain.Record) {
	d := Difference(a, b)
	r.summary.Gain.observe(name, d.Gain, a, b)
	r.summary.Peak.observe(name, d.Peak, a, b)
	r.summary.Range.observe(name, d.Range, a, b)
}

// Summary returns the maxima seen so far.
func (r *Reducer) Summary() Summary {
	return r.summary
}
