package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/platformbuilds/acdice-core/internal/config"
	"github.com/platformbuilds/acdice-core/internal/logging"
	"github.com/platformbuilds/acdice-core/pkg/logger"
)

const usage = `Usage: acdice [flags] [check|run]

  check  load settings, install log sinks, run the startup self-checks and
         print the effective settings (default)
  run    like check, then keep running: reload settings when the env file
         changes and log a heartbeat every metrics_collection_interval

Flags:
`

// Exit codes
const (
	exitOK             = 0
	exitStartupFailed  = 1
	exitValidateFailed = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type app struct {
	envFile string
	logDir  string
	stdout  io.Writer
	console io.Writer
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	envFile := flag.String("env-file", config.DefaultEnvFile, "dotenv file with ACDICE_* overrides")
	logDir := flag.String("log-dir", logging.DefaultDir, "directory for log files")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd := "check"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Structured sinks are not installed yet, so failures go to stderr.
	boot := logger.New("info")
	a := newApp(cmd, *envFile, *logDir)

	var err error
	switch cmd {
	case "check":
		err = a.check()
	case "run":
		err = a.run(ctx)
	default:
		flag.Usage()
		return exitStartupFailed
	}

	_ = logging.Shutdown()

	if err != nil {
		code := exitStartupFailed
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		boot.Error("ACDICE "+cmd+" failed", "error", err)
		return code
	}
	return exitOK
}

// newApp wires the process streams for cmd. check keeps stdout for the
// settings YAML, so its console sink goes to stderr.
func newApp(cmd, envFile, logDir string) app {
	a := app{envFile: envFile, logDir: logDir, stdout: os.Stdout, console: os.Stdout}
	if cmd == "check" {
		a.console = os.Stderr
	}
	return a
}

// startup loads the settings, installs the sinks and runs the self-checks.
func (a app) startup() (config.Settings, *logging.Handle, error) {
	settings, err := config.Load(config.WithEnvFile(a.envFile))
	if err != nil {
		return config.Settings{}, nil, &exitError{code: exitStartupFailed, err: fmt.Errorf("failed to load configuration: %w", err)}
	}

	handle, err := logging.Initialize(settings, a.loggingOptions()...)
	if err != nil {
		return config.Settings{}, nil, &exitError{code: exitStartupFailed, err: err}
	}

	handle.Info("Starting ACDICE",
		"project", settings.ProjectID,
		"logLevel", settings.LogLevel,
		"logDir", a.logDir,
	)

	if !config.Validate(settings, logger.Global()) {
		return settings, handle, &exitError{code: exitValidateFailed, err: errors.New("configuration validation failed")}
	}

	return settings, handle, nil
}

func (a app) loggingOptions() []logging.Option {
	return []logging.Option{
		logging.WithDir(a.logDir),
		logging.WithConsole(a.console),
		logging.WithFields("run_id", runID),
	}
}

var runID = uuid.NewString()

func (a app) check() error {
	settings, _, err := a.startup()
	if err != nil {
		return err
	}

	out, err := settings.YAML()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.stdout, out)
	return err
}

func (a app) run(ctx context.Context) error {
	settings, _, err := a.startup()
	if err != nil {
		return err
	}
	log := logger.Global()

	store := config.NewStore(settings)
	watcher := config.NewConfigWatcher(a.envFile, store, log)

	// A reload is published only once its self-checks pass and its sinks
	// are installed.
	watcher.SetApplier(func(s config.Settings) error {
		if !config.Validate(s, log) {
			return errors.New("configuration validation failed")
		}
		if _, err := logging.Initialize(s, a.loggingOptions()...); err != nil {
			return fmt.Errorf("failed to reinstall log sinks: %w", err)
		}
		log.Info("Log sinks reinstalled", "logLevel", s.LogLevel)
		return nil
	})

	changed := make(chan config.Settings, 1)
	watcher.RegisterWatcher(func(s config.Settings) {
		// keep only the newest settings for the loop below
		select {
		case <-changed:
		default:
		}
		changed <- s
	})

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := watcher.Start(ctx); err != nil {
			log.Error("Configuration watcher failed", "error", err)
		}
	}()

	ticker := time.NewTicker(store.Settings().MetricsInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutdown signal received")
			// a reload in flight must finish before the caller shuts logging down
			watcher.Stop()
			<-watchDone
			return nil
		case s := <-changed:
			ticker.Reset(s.MetricsInterval())
		case <-ticker.C:
			heartbeat(log)
		}
	}
}

func heartbeat(log logger.Logger) {
	counts, err := logging.EntryCounts(prometheus.DefaultGatherer)
	if err != nil {
		log.Warn("Failed to collect log metrics", "error", err)
		return
	}
	log.Debug("Heartbeat", "logEntries", counts)
}
