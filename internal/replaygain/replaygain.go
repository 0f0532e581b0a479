package replaygain

import (
	"fmt"
	"math"
)

// Unit identifies what a tag value measures.
type Unit int

const (
	UnitNone Unit = iota
	Decibel
	LoudnessUnit
	Linear
)

func (u Unit) String() string {
	switch u {
	case Decibel:
		return "dB"
	case LoudnessUnit:
		return "LU"
	case Linear:
		return ""
	default:
		return "?"
	}
}

// Value is an optional tag value. The zero Value is absent, which is
// different from a present value of 0.
type Value struct {
	Float float64
	Unit  Unit
	Valid bool
}

// Of returns a present Value.
func Of(f float64, unit Unit) Value {
	return Value{Float: f, Unit: unit, Valid: true}
}

// AbsDiff returns |v-o|, absent when either side is absent.
func (v Value) AbsDiff(o Value) Value {
	if !v.Valid || !o.Valid {
		return Value{}
	}
	unit := v.Unit
	if unit == UnitNone {
		unit = o.Unit
	}
	return Of(math.Abs(v.Float-o.Float), unit)
}

func (v Value) String() string {
	if !v.Valid {
		return "absent"
	}
	if v.Unit == Linear || v.Unit == UnitNone {
		return fmt.Sprintf("%.6f", v.Float)
	}
	return fmt.Sprintf("%.2f %s", v.Float, v.Unit)
}

// Record holds the loudness tags of one file for either the track or the
// album scope.
type Record struct {
	Filename          string
	Gain              Value
	Peak              Value
	Range             Value
	ReferenceLoudness Value
}

// Tags is everything extracted from a single file.
type Tags struct {
	Filename string
	Track    Record
	Album    Record
	// Other holds tags outside the replaygain_ namespace, keyed by their
	// lower-cased name.
	Other map[string]string
}

// Scope selects the track or album record of Tags.
type Scope int

const (
	Track Scope = iota
	Album
)

func (s Scope) String() string {
	if s == Album {
		return "Album"
	}
	return "Track"
}

// Record returns the record for the given scope.
func (t Tags) Record(s Scope) Record {
	if s == Album {
		return t.Album
	}
	return t.Track
}
