package pool

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape LoadConfig parses: pool-wide settings plus
// a list of sources, each of which may carry its own max_size. The
// per-source max_size is only decoded into SourceConfig.MaxSize;
// Pool.AddSource gives every source the pool-wide limit.
type Config struct {
	MaxSize      int            `yaml:"max_size"`
	IdleTime     time.Duration  `yaml:"idle_time"`
	MonitorSleep time.Duration  `yaml:"monitor_sleep"`
	WaitTime     time.Duration  `yaml:"wait_time"`
	Sources      []SourceConfig `yaml:"sources"`
}

// SourceConfig is one entry of Config.Sources: a Source, whose fields sit
// inline in the entry, plus an optional per-source MaxSize. This package
// does not apply MaxSize: AddSource takes a Source and sizes it with the
// pool-wide limit.
type SourceConfig struct {
	Source  `yaml:",inline"`
	MaxSize int `yaml:"max_size"`
}

// LoadConfig reads a YAML document shaped like Config and returns the
// pool-wide Options it implies. Call AddSource separately for each
// entry in the returned Config.Sources (LoadConfig only decodes the
// document; it never touches a Pool itself, so a caller choosing not to
// use every source it lists doesn't pay for opening it).
func LoadConfig(r io.Reader) (Config, []Option, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("pool: decode config: %w", err)
	}
	var opts []Option
	if cfg.MaxSize > 0 {
		opts = append(opts, WithMaxSize(cfg.MaxSize))
	}
	if cfg.IdleTime > 0 {
		opts = append(opts, WithIdleTime(cfg.IdleTime))
	}
	if cfg.MonitorSleep > 0 {
		opts = append(opts, WithMonitorSleep(cfg.MonitorSleep))
	}
	return cfg, opts, nil
}

// LoadConfigFile reads and parses the YAML config at path, the
// file-backed counterpart to LoadConfig.
func LoadConfigFile(path string) (Config, []Option, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("pool: open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// WatchConfigFile watches path for writes and re-parses it on every
// change, calling onChange with the freshly decoded Config (a parse
// error is logged and otherwise ignored — the pool keeps running on its
// last-good configuration rather than tearing down on a bad edit).
// Callers apply whatever of Config they want to hot-reload (typically
// adding/removing sources; Pool's own size/idle-time fields are fixed
// at New and are not retroactively adjustable here).
// The returned watcher must be Close'd by the caller when done.
func WatchConfigFile(path string, logger *slog.Logger, onChange func(Config)) (*fsnotify.Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pool: watch config: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("pool: watch config %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, _, err := LoadConfigFile(path)
				if err != nil {
					logger.Warn("pool: reload config failed, keeping previous", "path", path, "error", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("pool: config watcher error", "path", path, "error", err)
			}
		}
	}()
	return w, nil
}
