package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"rgcompare/internal/replaygain"
)

// waitDelay bounds how long Wait blocks on output pipes after the process
// has been killed.
const waitDelay = 2 * time.Second

// LookupFFprobe resolves the ffprobe binary. An explicit path is checked
// as-is, otherwise PATH is searched.
func LookupFFprobe(path string) (string, error) {
	if path == "" {
		path = "ffprobe"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFFprobeNotFound, path)
	}
	return resolved, nil
}

// FFprobe reads container-level tags by running ffprobe with JSON output.
type FFprobe struct {
	Path    string
	Timeout time.Duration
}

// NewFFprobe creates an FFprobe prober running the binary at path.
func NewFFprobe(path string, timeout time.Duration) *FFprobe {
	return &FFprobe{Path: path, Timeout: timeout}
}

func (f *FFprobe) Name() string { return "ffprobe" }

type ffprobeOutput struct {
	Format *struct {
		Filename string            `json:"filename"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

func (f *FFprobe) Probe(ctx context.Context, path string) (replaygain.Tags, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.Path,
		"-hide_banner",
		"-show_format",
		"-print_format", "json",
		path,
	)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return replaygain.Tags{}, fmt.Errorf("%w after %s: %s", ErrProbeTimeout, f.Timeout, path)
		}
		if ctx.Err() != nil {
			return replaygain.Tags{}, fmt.Errorf("probe cancelled: %s: %w", path, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return replaygain.Tags{}, fmt.Errorf("%w: %s: exit code %d: %s",
				ErrProbeFailed, path, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return replaygain.Tags{}, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}

	return decodeFFprobe(path, stdout.Bytes())
}

func decodeFFprobe(path string, data []byte) (replaygain.Tags, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return replaygain.Tags{}, fmt.Errorf("%w: %s: %v", ErrMalformedOutput, path, err)
	}
	if out.Format == nil {
		return replaygain.Tags{}, fmt.Errorf("%w: %s: no format section", ErrMalformedOutput, path)
	}

	filename := out.Format.Filename
	if filename == "" {
		filename = path
	}

	tags, err := replaygain.ParseTags(filename, out.Format.Tags)
	if err != nil {
		return replaygain.Tags{}, fmt.Errorf("%s: %w", path, err)
	}
	return tags, nil
}
