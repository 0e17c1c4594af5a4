package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	configFileName = "config.json"
	reloadDebounce = 300 * time.Millisecond
)

var ErrUnknownKey = errors.New("unknown config key")

// Manager owns the config file. Defaults for keys missing from the file are
// rooted at the working directory, not at the file's directory.
type Manager struct {
	path   string
	root   string
	logger logrus.FieldLogger

	mu       sync.RWMutex
	cfg      Config
	onChange func(Config)
	watching bool

	// ownWrite is set while the manager writes the file itself so the
	// watcher does not reload its own change.
	ownWrite atomic.Bool
}

type ManagerOption func(*Manager)

func WithConfigPath(path string) ManagerOption {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithRoot sets the directory the default project and results dirs hang off.
func WithRoot(dir string) ManagerOption {
	return func(m *Manager) {
		if dir != "" {
			m.root = dir
		}
	}
}

func WithLogger(logger logrus.FieldLogger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(m)
	}

	if m.root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working dir: %w", err)
		}
		m.root = wd
	}
	if m.path == "" {
		path, err := defaultConfigPath()
		if err != nil {
			return nil, err
		}
		m.path = path
	}
	m.logger = m.logger.WithField("config", m.path)

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	cfg, err := m.load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = m.defaults()
		if err := m.write(cfg); err != nil {
			return nil, fmt.Errorf("write initial config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := check(cfg); err != nil {
		return nil, err
	}

	m.cfg = cfg
	return m, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

// UpdateFromJSON applies a JSON object over the current config. Keys that
// are absent keep their values.
func (m *Manager) UpdateFromJSON(jsonStr string) error {
	cfg := m.Get()
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return m.Update(cfg)
}

// Set applies key=value assignments, converting each value to the type of
// the key's current value.
func (m *Manager) Set(assignments ...string) error {
	current, err := toFields(m.Get())
	if err != nil {
		return err
	}

	patch := make(map[string]any, len(assignments))
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid assignment %q, want key=value", a)
		}
		old, known := current[key]
		if !known {
			return fmt.Errorf("%w %q", ErrUnknownKey, key)
		}

		raw = strings.TrimSpace(raw)
		switch old.(type) {
		case float64:
			v, err := cast.ToFloat64E(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			patch[key] = v
		case bool:
			v, err := cast.ToBoolE(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			patch[key] = v
		default:
			patch[key] = raw
		}
	}

	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	return m.UpdateFromJSON(string(data))
}

// Reset restores the built-in defaults.
func (m *Manager) Reset() error {
	return m.Update(m.defaults())
}

func (m *Manager) Update(next Config) error {
	if err := check(next); err != nil {
		return err
	}
	if len(changes(m.Get(), next)) == 0 {
		return nil
	}

	m.ownWrite.Store(true)
	defer time.AfterFunc(reloadDebounce, func() { m.ownWrite.Store(false) })
	if err := m.write(next); err != nil {
		m.ownWrite.Store(false)
		return err
	}

	m.apply(next, "config updated")
	return nil
}

// Watch reloads the file after external edits and passes every accepted
// config to onChange, including updates made through this manager. It
// stops when ctx is done.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	m.mu.Lock()
	m.onChange = onChange
	if m.watching {
		m.mu.Unlock()
		return nil
	}
	m.watching = true
	m.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors replace files, so the directory is watched rather than the file.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go m.watch(ctx, watcher)
	return nil
}

func (m *Manager) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(m.path) ||
				evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 ||
				m.ownWrite.Load() {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			m.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.WithError(err).Warn("config watcher error")
		}
	}
}

func (m *Manager) reload() {
	cfg, err := m.load()
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = m.defaults(), nil
		if werr := m.write(cfg); werr != nil {
			m.logger.WithError(werr).Error("config recreate failed")
			return
		}
	}
	if err != nil {
		m.logger.WithError(err).Error("config reload failed")
		return
	}
	if err := check(cfg); err != nil {
		m.logger.WithError(err).Error("edited config rejected, keeping the previous one")
		return
	}
	if len(changes(m.Get(), cfg)) == 0 {
		return
	}
	m.apply(cfg, "config reloaded")
}

func (m *Manager) apply(cfg Config, msg string) {
	m.mu.Lock()
	prev := m.cfg
	m.cfg = cfg
	cb := m.onChange
	m.mu.Unlock()

	m.logger.WithFields(changes(prev, cfg)).Info(msg)
	if cb != nil {
		cb(cfg)
	}
}

func (m *Manager) defaults() Config {
	return *DefaultConfigWithRoot(m.root)
}

// load decodes the file over the defaults so keys missing from an older
// file keep their default values.
func (m *Manager) load() (Config, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return Config{}, err
	}
	cfg := m.defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", m.path, err)
	}
	return cfg, nil
}

// write replaces the file atomically.
func (m *Manager) write(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), "cfg-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	return os.Rename(tmp.Name(), m.path)
}

// check accepts a config only if it validates and yields a solver.
func check(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err := cfg.Solver()
	return err
}

// changes lists the keys whose values differ, as "old -> new".
func changes(prev, next Config) logrus.Fields {
	a, errA := toFields(prev)
	b, errB := toFields(next)
	if errA != nil || errB != nil {
		return logrus.Fields{"changed": "unknown"}
	}

	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	diff := logrus.Fields{}
	for _, k := range keys {
		if fmt.Sprint(a[k]) != fmt.Sprint(b[k]) {
			diff[k] = fmt.Sprintf("%v -> %v", a[k], b[k])
		}
	}
	return diff
}

func toFields(cfg Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		if dir, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "EquilibriumGo", configFileName), nil
}
