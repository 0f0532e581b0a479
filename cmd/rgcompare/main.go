package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"rgcompare/internal/config"
	"rgcompare/internal/logger"
	"rgcompare/internal/pipeline"
	"rgcompare/internal/probe"
	"rgcompare/internal/progress"
	"rgcompare/internal/report"
	"rgcompare/internal/shutdown"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout))
}

func execute(args []string, stdout io.Writer) int {
	if wantsInitConfig(args) {
		if err := initConfigFile(stdout, config.GetDefaultConfigPath()); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			return exitError
		}
		return exitOK
	}

	cfg, configPath, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return exitError
	}

	sh := shutdown.New()
	sh.Listen()
	defer sh.Shutdown()

	log := logger.New(cfg.Verbose)
	sh.AddCleanup(func() { log.Close() })

	if !cfg.Verbose {
		openFileLog(log, config.ExpandHome(cfg.LogDir))
	}

	if configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		return exitError
	}

	if err := run(sh, cfg, log, stdout); err != nil {
		if sh.Interrupted() {
			log.Warn("Interrupted, no report written")
			return exitInterrupted
		}
		log.Error("%v", err)
		return exitError
	}
	return exitOK
}

func openFileLog(log *logger.Logger, logDir string) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		return
	}
	logFile := filepath.Join(logDir, fmt.Sprintf("rgcompare_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	if err := log.SetFileLog(logFile); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
		return
	}
	log.Debug("Logging to file: %s", logFile)
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger, stdout io.Writer) error {
	log.Debug("Checking dependencies...")
	prober, fellBack, err := probe.New(probe.Options{
		Kind:        cfg.Prober,
		FFprobePath: cfg.FFprobePath,
		Timeout:     cfg.ProbeTimeout.Duration,
		OnFallback: func(p probe.Prober, path string, err error) {
			log.Debug("%s could not read %s, trying next prober: %v", p.Name(), path, err)
		},
	})
	if err != nil {
		return fmt.Errorf("dependency check failed: %w", err)
	}
	if fellBack {
		log.Warn("ffprobe not found, reading tags with taglib")
	}

	var bar *progress.Bar
	var warnings []string
	hooks := pipeline.Hooks{
		OnPairsMatched: func(total int) {
			if !cfg.Verbose && cfg.Format == "text" && total > 0 {
				bar = progress.New(total)
				log.SetProgressBar(true)
				sh.AddCleanup(bar.Finish)
			}
		},
		OnProgress: func() {
			if bar != nil {
				bar.Increment()
			}
		},
		OnWarning: func(msg string) {
			warnings = append(warnings, msg)
		},
	}

	rep, err := pipeline.Run(sh.Context(), cfg, log, prober, hooks)

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}
	for _, msg := range warnings {
		log.Warn("%s", msg)
	}

	if err != nil {
		return err
	}

	return report.Write(stdout, cfg.Format, rep)
}
