package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexflint/go-arg"

	"rgcompare/internal/config"
)

// cliArgs are the command-line flags. Optional settings are pointers so
// that an unset flag leaves the config file value alone.
type cliArgs struct {
	FirstDir   string         `arg:"positional,required" help:"reference library directory"`
	SecondDir  string         `arg:"positional,required" help:"library directory to compare against"`
	Config     string         `arg:"-c,--config" help:"path to config file"`
	Verbose    bool           `arg:"-v,--verbose" help:"show detailed output on stderr, no progress bar"`
	Workers    *int           `arg:"-j,--workers" help:"number of files probed at once (1-256) [default: number of CPUs]"`
	Timeout    *time.Duration `arg:"--timeout" help:"per-file probe timeout [default: 30s]"`
	Mode       *string        `arg:"-m,--mode" help:"values to compare: track, album or both [default: track]"`
	Prober     *string        `arg:"--prober" help:"tag reader: auto, ffprobe or taglib [default: auto]"`
	Format     *string        `arg:"-f,--format" help:"report format: text or yaml [default: text]"`
	InitConfig bool           `arg:"--init-config" help:"create a default config file and exit"`
}

func (cliArgs) Description() string {
	return "rgcompare - find the largest ReplayGain differences between two music libraries\n\n" +
		"Files are paired by name (without extension) and the pair with the largest\n" +
		"gain, peak and range difference is reported.\n\n" +
		"Config file locations (checked in order):\n" +
		"  ./rgcompare.yaml\n" +
		"  ~/.config/rgcompare/config.yaml\n" +
		"  ~/.rgcompare.yaml\n"
}

// apply overlays the flags that were given on cfg.
func (a cliArgs) apply(cfg *config.Config) {
	cfg.FirstDir = a.FirstDir
	cfg.SecondDir = a.SecondDir
	if a.Verbose {
		cfg.Verbose = true
	}
	if a.Workers != nil {
		cfg.Workers = *a.Workers
	}
	if a.Timeout != nil {
		cfg.ProbeTimeout = config.Duration{Duration: *a.Timeout}
	}
	if a.Mode != nil {
		cfg.Mode = *a.Mode
	}
	if a.Prober != nil {
		cfg.Prober = *a.Prober
	}
	if a.Format != nil {
		cfg.Format = *a.Format
	}
}

// wantsInitConfig reports whether --init-config was given. It is checked
// before parsing because the positional directories are not needed then.
func wantsInitConfig(args []string) bool {
	for _, a := range args {
		if a == "--init-config" {
			return true
		}
	}
	return false
}

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
func parseArgs(args []string) (config.Config, string, error) {
	var a cliArgs
	p, err := arg.NewParser(arg.Config{Program: "rgcompare"}, &a)
	if err != nil {
		return config.Config{}, "", err
	}

	if err := p.Parse(args); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			p.WriteHelp(os.Stdout)
			os.Exit(exitOK)
		}
		p.WriteUsage(os.Stderr)
		return config.Config{}, "", err
	}

	cfg, err := config.LoadConfigFile(a.Config)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}

	configPath := a.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	a.apply(&cfg)
	return cfg, configPath, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile(w io.Writer, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "Config file already exists at: %s\n", path)
		fmt.Fprintln(w, "Delete it first if you want to recreate it.")
		return nil
	}

	if err := config.SaveConfigFile(config.DefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(w, "Created default config file at: %s\n", path)
	fmt.Fprintln(w, "\nYou can now edit this file to customize your settings.")
	fmt.Fprintln(w, "Available options:")
	fmt.Fprintln(w, "  workers: 1-256 (number of files probed at once)")
	fmt.Fprintln(w, "  probe_timeout: per-file limit, e.g. 30s or 2m")
	fmt.Fprintln(w, "  mode: track, album or both")
	fmt.Fprintln(w, "  prober: auto, ffprobe or taglib")
	fmt.Fprintln(w, "  ffprobe_path: ffprobe binary to use instead of the one in PATH")
	fmt.Fprintln(w, "  format: text or yaml")
	fmt.Fprintln(w, "  extensions: file extensions to compare, each starting with a dot")
	fmt.Fprintln(w, "  verbose: true/false (enable detailed logging)")
	fmt.Fprintln(w, "  log_dir: where log files are written when not verbose")
	return nil
}
