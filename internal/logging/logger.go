// Package logging hands out component loggers that share one configured
// logrus.Logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"hexplorer/internal/config"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// LevelEnv overrides the configured level when set.
const LevelEnv = "HEXPLORER_LOG_LEVEL"

var (
	base      = newBase()
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	sink      io.Closer
)

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Options controls where Setup sends log output.
type Options struct {
	// Stderr allows logging to stderr. The TUI turns it off because stderr
	// shares the terminal with the alternate screen.
	Stderr bool
	// Stderr output is only used when stderr is not a terminal or the level
	// is debug, unless ForceStderr is set.
	ForceStderr bool
}

// Setup configures the shared logger from cfg. It may be called again; the
// previous log file is closed.
func Setup(cfg config.Log, opts Options) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelStr := "warn"
	if env := os.Getenv(LevelEnv); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.WarnLevel
	}
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if sink != nil {
		_ = sink.Close()
		sink = nil
	}

	var writers []io.Writer
	if cfg.File != "" {
		path := expandPath(cfg.File)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		sink = f
		writers = append(writers, f)
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	if opts.Stderr {
		interactive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		if opts.ForceStderr || level >= logrus.DebugLevel || !interactive {
			writers = append(writers, os.Stderr)
		}
	}

	switch len(writers) {
	case 0:
		base.SetOutput(io.Discard)
	case 1:
		base.SetOutput(writers[0])
	default:
		base.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

// SetOutput points the shared logger at w. Used by tests.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	base.SetOutput(w)
}

func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// NewLogger returns the logger for component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}
	entry := base.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Close releases the log file, if any.
func Close() error {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	if sink == nil {
		return nil
	}
	err := sink.Close()
	sink = nil
	base.SetOutput(io.Discard)
	return err
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
