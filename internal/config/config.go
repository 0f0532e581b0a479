package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rgcompare/internal/library"
)

// Comparison modes.
const (
	ModeTrack = "track"
	ModeAlbum = "album"
	ModeBoth  = "both"
)

// Config contains the program configuration
type Config struct {
	FirstDir     string   `yaml:"-"`
	SecondDir    string   `yaml:"-"`
	Verbose      bool     `yaml:"verbose"`
	Workers      int      `yaml:"workers"`
	ProbeTimeout Duration `yaml:"probe_timeout"`
	Mode         string   `yaml:"mode"`
	Prober       string   `yaml:"prober"`
	FFprobePath  string   `yaml:"ffprobe_path,omitempty"`
	Format       string   `yaml:"format"`
	Extensions   []string `yaml:"extensions"`
	LogDir       string   `yaml:"log_dir"`
}

// Duration is a time.Duration that reads and writes as "30s" in YAML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"30s\": %w", value.Line, err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Duration = parsed
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Verbose:      false,
		Workers:      runtime.NumCPU(),
		ProbeTimeout: Duration{30 * time.Second},
		Mode:         ModeTrack,
		Prober:       "auto",
		Format:       "text",
		Extensions:   append([]string(nil), library.DefaultExtensions...),
		LogDir:       GetDefaultLogPath(),
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.LogDir = ExpandHome(cfg.LogDir)
	cfg.FFprobePath = ExpandHome(cfg.FFprobePath)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./rgcompare.yaml",
		"./rgcompare.yml",
		filepath.Join(home, ".config", "rgcompare", "config.yaml"),
		filepath.Join(home, ".config", "rgcompare", "config.yml"),
		filepath.Join(home, ".rgcompare.yaml"),
		filepath.Join(home, ".rgcompare.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "rgcompare", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "rgcompare", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.FirstDir == "" || c.SecondDir == "" {
		return fmt.Errorf("two directories are required")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Workers > 256 {
		return fmt.Errorf("workers cannot exceed 256, got %d", c.Workers)
	}

	if c.ProbeTimeout.Duration <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}

	switch c.Mode {
	case ModeTrack, ModeAlbum, ModeBoth:
	default:
		return fmt.Errorf("unsupported mode %q, valid modes: track, album, both", c.Mode)
	}

	switch c.Prober {
	case "auto", "ffprobe", "taglib":
	default:
		return fmt.Errorf("unknown prober %q, valid probers: auto, ffprobe, taglib", c.Prober)
	}

	switch c.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("unsupported format %q, valid formats: text, yaml", c.Format)
	}

	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	return nil
}
