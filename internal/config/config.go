package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"partners-cli/internal/recordstore"

	"gopkg.in/yaml.v3"
)

// GlobalConfig is the user's console configuration (~/.partners/config.json).
type GlobalConfig struct {
	// Endpoint is the base URL of the record store, e.g. http://localhost:3001.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// Collection is the REST collection name (default "users").
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	// Timeout bounds every store request (Go duration, e.g. "10s").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// LogFile is where the interactive console writes logs.
	LogFile string `json:"logFile,omitempty" yaml:"logFile,omitempty"`

	// TUI holds optional user preferences for the interactive console.
	TUI *TUIConfig `json:"tui,omitempty" yaml:"tui,omitempty"`
}

type TUIConfig struct {
	// Theme is light|dark|auto.
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty"`
	// ToastSeconds is how long a notification stays on screen.
	ToastSeconds int `json:"toastSeconds,omitempty" yaml:"toastSeconds,omitempty"`
}

const (
	configJSONName = "config.json"
	configYAMLName = "config.yaml"
)

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.partners).
	if v := strings.TrimSpace(os.Getenv("PARTNERS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".partners"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configJSONName), nil
}

// LoadConfig reads config.json, falling back to config.yaml. A missing file is
// an empty config.
func LoadConfig() (*GlobalConfig, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(filepath.Join(dir, configJSONName))
	if err == nil {
		var cfg GlobalConfig
		if err := json.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configJSONName, err)
		}
		return &cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	b, err = os.ReadFile(filepath.Join(dir, configYAMLName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configYAMLName, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// SaveConfig writes config.json atomically, keeping the previous file as config.json.bak.
func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// Overrides are values from flags; empty fields defer to env, file, default.
type Overrides struct {
	Endpoint   string
	Collection string
	Timeout    time.Duration
	LogFile    string
}

// Settings is the effective configuration.
type Settings struct {
	Endpoint     string        `json:"endpoint"`
	Collection   string        `json:"collection"`
	Timeout      time.Duration `json:"-"`
	TimeoutText  string        `json:"timeout"`
	LogFile      string        `json:"logFile"`
	Theme        string        `json:"theme"`
	ToastSeconds int           `json:"toastSeconds"`
	ConfigPath   string        `json:"configPath"`
}

// Resolve applies flag > env > file > default precedence.
func Resolve(cfg *GlobalConfig, o Overrides) (Settings, error) {
	if cfg == nil {
		cfg = &GlobalConfig{}
	}
	s := Settings{
		Endpoint:     firstNonEmpty(o.Endpoint, os.Getenv("PARTNERS_ENDPOINT"), cfg.Endpoint, recordstore.DefaultEndpoint),
		Collection:   firstNonEmpty(o.Collection, os.Getenv("PARTNERS_COLLECTION"), cfg.Collection, recordstore.DefaultCollection),
		Timeout:      recordstore.DefaultTimeout,
		Theme:        "auto",
		ToastSeconds: 4,
	}

	switch {
	case o.Timeout > 0:
		s.Timeout = o.Timeout
	case strings.TrimSpace(cfg.Timeout) != "":
		d, err := time.ParseDuration(strings.TrimSpace(cfg.Timeout))
		if err != nil {
			return Settings{}, fmt.Errorf("config: invalid timeout %q: %w", cfg.Timeout, err)
		}
		if d <= 0 {
			return Settings{}, fmt.Errorf("config: timeout must be positive, got %q", cfg.Timeout)
		}
		s.Timeout = d
	}
	s.TimeoutText = s.Timeout.String()

	logFile := firstNonEmpty(o.LogFile, os.Getenv("PARTNERS_LOG_FILE"), cfg.LogFile)
	if logFile == "" {
		dir, err := ConfigDir()
		if err != nil {
			return Settings{}, err
		}
		logFile = filepath.Join(dir, "partners.log")
	}
	s.LogFile = logFile

	if cfg.TUI != nil {
		if t := strings.ToLower(strings.TrimSpace(cfg.TUI.Theme)); t != "" {
			s.Theme = t
		}
		if cfg.TUI.ToastSeconds > 0 {
			s.ToastSeconds = cfg.TUI.ToastSeconds
		}
	}

	if p, err := ConfigPath(); err == nil {
		s.ConfigPath = p
	}
	return s, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Set updates a single key by its json name. Used by `partners config set`.
func (cfg *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "endpoint":
		cfg.Endpoint = value
	case "collection":
		cfg.Collection = value
	case "timeout":
		if value != "" {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid timeout %q: %w", value, err)
			}
		}
		cfg.Timeout = value
	case "logFile":
		cfg.LogFile = value
	case "tui.theme":
		switch strings.ToLower(value) {
		case "", "auto", "light", "dark":
		default:
			return fmt.Errorf("invalid theme %q (expected light|dark|auto)", value)
		}
		if cfg.TUI == nil {
			cfg.TUI = &TUIConfig{}
		}
		cfg.TUI.Theme = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Keys lists the keys accepted by Set.
func Keys() []string {
	return []string{"endpoint", "collection", "timeout", "logFile", "tui.theme"}
}
