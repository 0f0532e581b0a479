package library

import (
	"path/filepath"
	"sort"
	"strings"
)

// Pair is two files, one from each side, that share a stem.
type Pair struct {
	// Name identifies the pair in reports: the first-side path relative to
	// its root, without extension.
	Name   string
	First  string
	Second string
}

// Matches is the result of joining two file lists by stem.
type Matches struct {
	Pairs           []Pair
	UnmatchedFirst  []string
	UnmatchedSecond []string
}

// Stem returns the file name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Match pairs the files of first and second that share a stem. The second
// side is indexed by stem; when a stem occurs more than once on a side the
// occurrences are paired in path order and any surplus is left unmatched.
// Pairs are ordered by first-side path.
func Match(firstRoot string, first []string, secondRoot string, second []string) Matches {
	byStem := make(map[string][]string)
	for _, path := range sortedCopy(second) {
		stem := Stem(path)
		byStem[stem] = append(byStem[stem], path)
	}

	var m Matches
	for _, path := range sortedCopy(first) {
		stem := Stem(path)
		candidates := byStem[stem]
		if len(candidates) == 0 {
			m.UnmatchedFirst = append(m.UnmatchedFirst, path)
			continue
		}

		byStem[stem] = candidates[1:]
		m.Pairs = append(m.Pairs, Pair{
			Name:   pairName(firstRoot, path),
			First:  path,
			Second: candidates[0],
		})
	}

	for _, path := range sortedCopy(second) {
		stem := Stem(path)
		if rest := byStem[stem]; len(rest) > 0 && rest[0] == path {
			m.UnmatchedSecond = append(m.UnmatchedSecond, path)
			byStem[stem] = rest[1:]
		}
	}

	return m
}

func pairName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func sortedCopy(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}
