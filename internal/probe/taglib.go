package probe

import (
	"context"
	"fmt"

	"go.senan.xyz/taglib"

	"rgcompare/internal/replaygain"
)

// TagLib reads tags in-process. It needs no external binary.
type TagLib struct{}

func (TagLib) Name() string { return "taglib" }

func (TagLib) Probe(ctx context.Context, path string) (replaygain.Tags, error) {
	if err := ctx.Err(); err != nil {
		return replaygain.Tags{}, fmt.Errorf("probe cancelled: %s: %w", path, err)
	}

	raw, err := taglib.ReadTags(path)
	if err != nil {
		return replaygain.Tags{}, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}

	tags, err := replaygain.ParseTags(path, firstValues(raw))
	if err != nil {
		return replaygain.Tags{}, fmt.Errorf("%s: %w", path, err)
	}
	return tags, nil
}

func firstValues(tags map[string][]string) map[string]string {
	out := make(map[string]string, len(tags))
	for key, vals := range tags {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}
