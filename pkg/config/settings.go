package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/word-ntfy/pkg/trigger"
)

// Settings is a key/value view over a Config persisted to a YAML file.
// An empty path keeps the settings in memory only. Reads see environment
// overrides; writes change and persist the file's own values.
type Settings struct {
	path   string
	logger *zap.Logger

	// env marks settings whose reads carry environment overrides
	env bool

	mu     sync.RWMutex
	stored *Config
	cfg    *Config
}

// NewSettings wraps cfg without environment overrides. The logger may be nil.
func NewSettings(cfg *Config, path string, logger *zap.Logger) *Settings {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Settings{path: path, logger: logger, stored: cfg.Clone(), cfg: cfg}
}

// Open loads the settings file at path and applies environment overrides
func Open(path string, logger *zap.Logger) (*Settings, error) {
	stored, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := withEnv(stored)
	if err != nil {
		return nil, err
	}
	s := NewSettings(cfg, path, logger)
	s.stored = stored
	s.env = true
	return s, nil
}

// Path returns the backing file, if any
func (s *Settings) Path() string {
	return s.path
}

// Snapshot returns a copy of the current configuration
func (s *Settings) Snapshot() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Get returns the value stored under key, or def for unknown keys
func (s *Settings) Get(key string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.cfg
	switch key {
	case "triggers":
		return slices.Clone(c.Triggers)
	case "triggerType":
		return c.TriggerType
	case "ignoreSelf":
		return c.IgnoreSelf
	case "ignoreBots":
		return c.IgnoreBots
	case "ignoreBlocked":
		return c.IgnoreBlocked
	case "ignoreMentions":
		return c.IgnoreMentions
	case "ignoreLurking":
		return c.IgnoreLurking
	case "ignoreMuted":
		return c.IgnoreMuted
	case "whitelistFriends":
		return c.WhitelistFriends
	case "mutedGuilds":
		return slices.Clone(c.MutedGuilds)
	case "headerFormat":
		return c.HeaderFormat
	case "bodyFormat":
		return c.BodyFormat
	case "toastTimeout":
		return c.ToastTimeout
	case "notificationType":
		return c.NotificationType
	case "contextRadius":
		return c.ContextRadius
	default:
		return def
	}
}

// Set stores value under key and persists the settings
func (s *Settings) Set(key string, value any) error {
	s.mu.Lock()
	next := s.stored.Clone()
	if err := assign(next, key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	if key == "triggerType" {
		if err := switchable(next); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if err := Validate(next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	effective, err := s.effective(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	s.stored = next
	s.cfg = effective
	s.mu.Unlock()

	return s.Save()
}

// switchable reports the first saved trigger that the new trigger type rejects
func switchable(c *Config) error {
	mode, err := trigger.ParseMode(c.TriggerType)
	if err != nil {
		return err
	}
	if err := trigger.ValidateAll(c.Triggers, mode); err != nil {
		return fmt.Errorf("cannot switch to %s triggers, remove the trigger first: %w", mode, err)
	}
	return nil
}

func (s *Settings) effective(stored *Config) (*Config, error) {
	if !s.env {
		return stored.Clone(), nil
	}
	return withEnv(stored)
}

func assign(c *Config, key string, value any) error {
	var ok bool
	switch key {
	case "triggers":
		var v []string
		if v, ok = value.([]string); ok {
			c.Triggers = slices.Clone(v)
		}
	case "mutedGuilds":
		var v []string
		if v, ok = value.([]string); ok {
			c.MutedGuilds = slices.Clone(v)
		}
	case "triggerType":
		c.TriggerType, ok = value.(string)
	case "headerFormat":
		c.HeaderFormat, ok = value.(string)
	case "bodyFormat":
		c.BodyFormat, ok = value.(string)
	case "notificationType":
		c.NotificationType, ok = value.(string)
	case "ignoreSelf":
		c.IgnoreSelf, ok = value.(bool)
	case "ignoreBots":
		c.IgnoreBots, ok = value.(bool)
	case "ignoreBlocked":
		c.IgnoreBlocked, ok = value.(bool)
	case "ignoreMentions":
		c.IgnoreMentions, ok = value.(bool)
	case "ignoreLurking":
		c.IgnoreLurking, ok = value.(bool)
	case "ignoreMuted":
		c.IgnoreMuted, ok = value.(bool)
	case "whitelistFriends":
		c.WhitelistFriends, ok = value.(bool)
	case "toastTimeout":
		c.ToastTimeout, ok = value.(int)
	case "contextRadius":
		c.ContextRadius, ok = value.(int)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if !ok {
		return fmt.Errorf("setting %q cannot hold %T", key, value)
	}
	return nil
}

// Triggers returns the active trigger list
func (s *Settings) Triggers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cfg.Triggers)
}

// TriggerMode returns how triggers are interpreted
func (s *Settings) TriggerMode() trigger.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Mode()
}

// SetTriggers replaces and persists the trigger list
func (s *Settings) SetTriggers(triggers []string) error {
	return s.Set("triggers", triggers)
}

// Stored returns a trigger.Store over the file's own trigger list, so edits
// made while WORD_NTFY_TRIGGERS is set do not copy the override to disk.
func (s *Settings) Stored() trigger.Store {
	return storedTriggers{s}
}

type storedTriggers struct {
	s *Settings
}

func (t storedTriggers) Triggers() []string {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return slices.Clone(t.s.stored.Triggers)
}

func (t storedTriggers) TriggerMode() trigger.Mode {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.stored.Mode()
}

func (t storedTriggers) SetTriggers(triggers []string) error {
	return t.s.SetTriggers(triggers)
}

// Save writes the settings to disk, replacing the file atomically
func (s *Settings) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	data, err := yaml.Marshal(s.stored)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// Reload re-reads the settings file. An invalid file leaves the current
// settings untouched.
func (s *Settings) Reload() error {
	if s.path == "" {
		return nil
	}
	stored, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	cfg, err := s.effective(stored)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.stored = stored
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Watch reloads the settings whenever the file changes until ctx is done.
// onChange, if set, runs after each successful reload.
func (s *Settings) Watch(ctx context.Context, onChange func()) error {
	if s.path == "" {
		return fmt.Errorf("settings have no backing file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// editors and Save replace the file, so watch the directory
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		name := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if err := s.Reload(); err != nil {
					s.logger.Warn("ignoring invalid settings file", zap.String("path", s.path), zap.Error(err))
					continue
				}
				s.logger.Info("settings reloaded", zap.String("path", s.path))
				if onChange != nil {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
