package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"rgcompare/internal/compare"
	"rgcompare/internal/replaygain"
)

// Section is the comparison result for one scope (track or album).
type Section struct {
	Scope   replaygain.Scope
	Summary compare.Summary
}

// Report is everything printed at the end of a run.
type Report struct {
	Pairs    int
	Skipped  int
	Sections []Section
	// Titled prints a "Track:" / "Album:" header above each section.
	Titled bool
}

// Write renders r in the given format ("text" or "yaml").
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case "", "text":
		return WriteText(w, r)
	case "yaml":
		return WriteYAML(w, r)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteText renders the report as plain text lines.
func WriteText(w io.Writer, r Report) error {
	var b strings.Builder

	switch {
	case r.Pairs == 0 && r.Skipped == 0:
		b.WriteString("No comparable tracks found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	case r.Pairs == 0:
		b.WriteString("No matched pair could be probed.\n")
		writeSkipped(&b, r.Skipped)
		_, err := io.WriteString(w, b.String())
		return err
	}

	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if r.Titled {
			fmt.Fprintf(&b, "%s:\n", s.Scope)
		}
		writeMetric(&b, "Gain", "gain", s.Summary.Gain, " dB")
		writeMetric(&b, "Peak", "peak", s.Summary.Peak, "")
		writeMetric(&b, "Range", "range", s.Summary.Range, " dB")
	}

	writeSkipped(&b, r.Skipped)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSkipped(b *strings.Builder, skipped int) {
	if skipped > 0 {
		fmt.Fprintf(b, "\nSkipped %s %s that could not be probed.\n",
			humanize.Comma(int64(skipped)), plural(skipped, "pair", "pairs"))
	}
}

func writeMetric(b *strings.Builder, label, noun string, m compare.Maximum, suffix string) {
	if m.Found() {
		fmt.Fprintf(b, "%s difference: %s: %.2f%s\n", label, m.Name, m.Value, suffix)
	} else {
		fmt.Fprintf(b, "%s difference: no data\n", label)
	}
	if m.Missing > 0 {
		fmt.Fprintf(b, "  (%s unavailable for %s %s)\n",
			noun, humanize.Comma(int64(m.Missing)), plural(m.Missing, "pair", "pairs"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type yamlReport struct {
	Pairs    int                    `yaml:"pairs"`
	Skipped  int                    `yaml:"skipped"`
	Sections map[string]yamlSection `yaml:"sections,omitempty"`
}

type yamlSection struct {
	Gain  yamlMetric `yaml:"gain"`
	Peak  yamlMetric `yaml:"peak"`
	Range yamlMetric `yaml:"range"`
}

type yamlMetric struct {
	File       string   `yaml:"file,omitempty"`
	Difference *float64 `yaml:"difference"`
	Unit       string   `yaml:"unit,omitempty"`
	First      *string  `yaml:"first,omitempty"`
	Second     *string  `yaml:"second,omitempty"`
	Reference  *string  `yaml:"reference_loudness,omitempty"`
	Pairs      int      `yaml:"pairs"`
	Missing    int      `yaml:"missing"`
}

// WriteYAML renders the report as a YAML document.
func WriteYAML(w io.Writer, r Report) error {
	out := yamlReport{Pairs: r.Pairs, Skipped: r.Skipped}
	if r.Pairs > 0 {
		out.Sections = make(map[string]yamlSection, len(r.Sections))
		for _, s := range r.Sections {
			out.Sections[strings.ToLower(s.Scope.String())] = yamlSection{
				Gain:  toYAMLMetric(s.Summary.Gain, s.Summary.Gain.First.Gain, s.Summary.Gain.Second.Gain),
				Peak:  toYAMLMetric(s.Summary.Peak, s.Summary.Peak.First.Peak, s.Summary.Peak.Second.Peak),
				Range: toYAMLMetric(s.Summary.Range, s.Summary.Range.First.Range, s.Summary.Range.Second.Range),
			}
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

func toYAMLMetric(m compare.Maximum, first, second replaygain.Value) yamlMetric {
	ym := yamlMetric{Pairs: m.Pairs, Missing: m.Missing}
	if !m.Found() {
		return ym
	}

	value := m.Value
	ym.File = m.Name
	ym.Difference = &value
	ym.Unit = m.Unit.String()
	ym.First = stringPtr(first.String())
	ym.Second = stringPtr(second.String())
	if ref := m.First.ReferenceLoudness; ref.Valid {
		ym.Reference = stringPtr(ref.String())
	}
	return ym
}

func stringPtr(s string) *string {
	return &s
}
