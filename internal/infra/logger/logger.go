// Package logger installs the process-wide structured logger. Output is JSON
// lines in <root>/.stockyard/logs/stockyard.log; until Setup runs, and after
// its cleanup, everything is discarded.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileName = "stockyard.log"

type Config struct {
	Root  string
	Debug bool
}

// sink is the active logger together with the file it writes to.
type sink struct {
	log  *slog.Logger
	file *os.File
	path string
}

var (
	mu     sync.RWMutex
	active = sink{log: slog.New(slog.DiscardHandler)}
)

// Dir is the log directory for a workspace root.
func Dir(root string) string {
	return filepath.Join(root, ".stockyard", "logs")
}

// Setup opens the workspace log file and makes it the global logger. The
// returned cleanup closes the file and goes back to discarding.
func Setup(cfg Config) (func() error, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	path := filepath.Join(Dir(filepath.Clean(root)), fileName)

	f, err := openAppend(path)
	if err != nil {
		_ = swap(sink{log: slog.New(slog.DiscardHandler)})
		return nil, err
	}

	l := slog.New(newHandler(f, cfg.Debug)).With("app", "stockyard")
	_ = swap(sink{log: l, file: f, path: path})
	l.Info("logger.initialized", "path", path, "debug", cfg.Debug)

	return func() error { return release(f) }, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

func newHandler(w io.Writer, debug bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.NewJSONHandler(w, opts)
}

// swap installs s and closes the file of the sink it replaces.
func swap(s sink) error {
	mu.Lock()
	prev := active
	active = s
	mu.Unlock()

	if prev.file != nil && prev.file != s.file {
		return prev.file.Close()
	}
	return nil
}

// release undoes the Setup that opened f. A later Setup has already closed it.
func release(f *os.File) error {
	mu.Lock()
	current := active.file == f
	if current {
		active = sink{log: slog.New(slog.DiscardHandler)}
	}
	mu.Unlock()

	if !current {
		return nil
	}
	return f.Close()
}

func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return active.log
}

// Component returns the global logger tagged with a component name.
func Component(name string) *slog.Logger {
	return L().With("component", name)
}

func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return active.path
}

func IsReady() error {
	mu.RLock()
	defer mu.RUnlock()
	if active.file == nil {
		return errors.New("logger not initialized")
	}
	return nil
}
