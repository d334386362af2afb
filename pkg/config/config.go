// Package config holds the settings store backing triggers and notification options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/word-ntfy/pkg/format"
	"github.com/Veraticus/word-ntfy/pkg/trigger"
)

// Notification types
const (
	NotificationToasts  = "toasts"
	NotificationDesktop = "desktop"
)

// NoTimeout keeps a toast visible until dismissed
const NoTimeout = -1

// Config holds all settings for word-ntfy
type Config struct {
	Triggers    []string `yaml:"triggers"`
	TriggerType string   `yaml:"triggerType"`

	// Ignore rules
	IgnoreSelf       bool     `yaml:"ignoreSelf"`
	IgnoreBots       bool     `yaml:"ignoreBots"`
	IgnoreBlocked    bool     `yaml:"ignoreBlocked"`
	IgnoreMentions   bool     `yaml:"ignoreMentions"`
	IgnoreLurking    bool     `yaml:"ignoreLurking"`
	IgnoreMuted      bool     `yaml:"ignoreMuted"`
	WhitelistFriends bool     `yaml:"whitelistFriends"`
	MutedGuilds      []string `yaml:"mutedGuilds"`

	// Presentation
	HeaderFormat     string `yaml:"headerFormat"`
	BodyFormat       string `yaml:"bodyFormat"`
	ToastTimeout     int    `yaml:"toastTimeout"`
	NotificationType string `yaml:"notificationType"`
	ContextRadius    int    `yaml:"contextRadius"`

	Cache       CacheConfig     `yaml:"cache"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	BatchWindow time.Duration   `yaml:"batchWindow"`
	Ntfy        NtfyConfig      `yaml:"ntfy"`
}

// CacheConfig bounds the notification cache
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxMessages int           `yaml:"maxMessages"`
}

// NtfyConfig configures the ntfy presentation sink
type NtfyConfig struct {
	Server   string `yaml:"server"`
	Topic    string `yaml:"topic"`
	LinkBase string `yaml:"linkBase"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Triggers:         []string{},
		TriggerType:      string(trigger.Plain),
		IgnoreSelf:       true,
		IgnoreBots:       true,
		IgnoreBlocked:    true,
		IgnoreMentions:   true,
		IgnoreLurking:    true,
		IgnoreMuted:      true,
		WhitelistFriends: true,
		MutedGuilds:      []string{},
		HeaderFormat:     format.DefaultHeader,
		BodyFormat:       format.DefaultBody,
		ToastTimeout:     5,
		NotificationType: NotificationToasts,
		ContextRadius:    5,
		Cache: CacheConfig{
			Size: 1000,
			TTL:  24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Window:      1 * time.Minute,
			MaxMessages: 10,
		},
		Ntfy: NtfyConfig{
			Server: "https://ntfy.sh",
		},
	}
}

// Mode returns the parsed trigger type
func (c *Config) Mode() trigger.Mode {
	m, err := trigger.ParseMode(c.TriggerType)
	if err != nil {
		return trigger.Plain
	}
	return m
}

// Timeout converts ToastTimeout to a duration, zero meaning no timeout
func (c *Config) Timeout() time.Duration {
	if c.ToastTimeout <= 0 {
		return 0
	}
	return time.Duration(c.ToastTimeout) * time.Second
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	out := *c
	out.Triggers = slices.Clone(c.Triggers)
	out.MutedGuilds = slices.Clone(c.MutedGuilds)
	return &out
}

// Path returns the config file path: explicit, then WORD_NTFY_CONFIG, then
// the XDG config directory.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path := os.Getenv("WORD_NTFY_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(xdg.ConfigHome, "word-ntfy", "config.yaml")
}

// Load loads configuration from file and environment
func Load(path string) (*Config, error) {
	stored, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return withEnv(stored)
}

// LoadFile loads the defaults overlaid with the file at path, ignoring the
// environment. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	return cfg, nil
}

// withEnv returns a validated copy of stored with environment overrides applied
func withEnv(stored *Config) (*Config, error) {
	cfg := stored.Clone()
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - the path comes from the command line, env or the XDG directory
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if topic := os.Getenv("WORD_NTFY_TOPIC"); topic != "" {
		cfg.Ntfy.Topic = topic
	}

	if server := os.Getenv("WORD_NTFY_SERVER"); server != "" {
		cfg.Ntfy.Server = server
	}

	if mode := os.Getenv("WORD_NTFY_TRIGGER_TYPE"); mode != "" {
		cfg.TriggerType = mode
	}

	if triggers := os.Getenv("WORD_NTFY_TRIGGERS"); triggers != "" {
		cfg.Triggers = nil
		for _, t := range strings.Split(triggers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Triggers = append(cfg.Triggers, t)
			}
		}
	}

	if ttl := os.Getenv("WORD_NTFY_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid WORD_NTFY_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}

	if v := os.Getenv("WORD_NTFY_IGNORE_SELF"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WORD_NTFY_IGNORE_SELF value: %w", err)
		}
		cfg.IgnoreSelf = b
	}

	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%q (use true/false)", v)
	}
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	mode, err := trigger.ParseMode(cfg.TriggerType)
	if err != nil {
		return err
	}

	if err := trigger.ValidateAll(cfg.Triggers, mode); err != nil {
		return fmt.Errorf("triggers: %w", err)
	}

	switch cfg.NotificationType {
	case NotificationToasts, NotificationDesktop:
	default:
		return fmt.Errorf("notificationType must be %q or %q", NotificationToasts, NotificationDesktop)
	}

	if cfg.ToastTimeout < NoTimeout {
		return fmt.Errorf("toastTimeout must be -1 or non-negative")
	}

	if cfg.ContextRadius < 0 {
		return fmt.Errorf("contextRadius must be non-negative")
	}

	if cfg.Cache.Size < 0 {
		return fmt.Errorf("cache.size must be non-negative")
	}

	if cfg.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("rateLimit.maxMessages must be non-negative")
	}

	if cfg.RateLimit.Window < 0 {
		return fmt.Errorf("rateLimit.window must be non-negative")
	}

	if cfg.BatchWindow < 0 {
		return fmt.Errorf("batchWindow must be non-negative")
	}

	return nil
}
