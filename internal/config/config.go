package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gravitrone/mentionly/internal/mention"
)

// Trigger sources understood by the sources package.
const (
	SourceStatic   = "static"
	SourceFiles    = "files"
	SourceRemote   = "remote"
	SourceCommands = "commands"
)

const defaultBlurDelay = 150 * time.Millisecond

// Config holds editor configuration stored at ~/.mentionly/config.yaml.
type Config struct {
	ServerURL        string    `yaml:"server_url,omitempty"`
	APIKey           string    `yaml:"api_key,omitempty"`
	InsertSpaceAfter *bool     `yaml:"insert_space_after,omitempty"`
	PopupMode        string    `yaml:"popup_mode,omitempty"`
	BlurDelayMS      int       `yaml:"blur_delay_ms,omitempty"`
	DraftsPath       string    `yaml:"drafts_path,omitempty"`
	Triggers         []Trigger `yaml:"triggers"`
}

// Trigger is the on-disk form of a mention trigger.
type Trigger struct {
	Char       string          `yaml:"char"`
	Mode       string          `yaml:"mode,omitempty"`
	Source     string          `yaml:"source"`
	Items      []mention.Item  `yaml:"items,omitempty"`
	DebounceMS int             `yaml:"debounce_ms,omitempty"`
	Root       string          `yaml:"root,omitempty"`
	Limit      int             `yaml:"limit,omitempty"`
	Schema     *mention.Schema `yaml:"schema,omitempty"`
}

// Debounce returns the configured debounce as a duration.
func (t Trigger) Debounce() time.Duration {
	return time.Duration(t.DebounceMS) * time.Millisecond
}

// Dir returns the config directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mentionly")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration: people, files and commands.
func Default() *Config {
	return &Config{
		PopupMode:   string(mention.PopupCursor),
		BlurDelayMS: int(defaultBlurDelay / time.Millisecond),
		Triggers: []Trigger{
			{
				Char:   "@",
				Source: SourceStatic,
				Items: []mention.Item{
					{ID: "u-ada", Label: "Ada Lovelace", Extra: map[string]any{"email": "ada@example.com"}},
					{ID: "u-grace", Label: "Grace Hopper", Extra: map[string]any{"email": "grace@example.com"}},
					{ID: "u-linus", Label: "Linus Torvalds", Extra: map[string]any{"email": "linus@example.com"}},
					{ID: "u-ken", Label: "Ken Thompson", Extra: map[string]any{"email": "ken@example.com"}},
				},
			},
			{
				Char:       "#",
				Source:     SourceFiles,
				Root:       ".",
				Limit:      20,
				DebounceMS: 80,
				Schema: &mention.Schema{
					Type:    "file",
					Mapping: map[string]string{"path": "id", "name": "label"},
				},
			},
			{
				Char:   "/",
				Mode:   string(mention.ModeCommand),
				Source: SourceCommands,
			},
		},
	}
}

// SpaceAfter reports whether an inline selection is followed by a non-breaking space.
func (c *Config) SpaceAfter() bool {
	return c.InsertSpaceAfter == nil || *c.InsertSpaceAfter
}

// BlurDelay returns the popup close grace period.
func (c *Config) BlurDelay() time.Duration {
	if c.BlurDelayMS <= 0 {
		return defaultBlurDelay
	}
	return time.Duration(c.BlurDelayMS) * time.Millisecond
}

// Popup returns the popup placement mode.
func (c *Config) Popup() mention.PopupMode {
	if c.PopupMode == "" {
		return mention.PopupCursor
	}
	return mention.PopupMode(c.PopupMode)
}

// Validate checks the configuration for errors the editor cannot recover from at runtime.
func (c *Config) Validate() error {
	switch c.Popup() {
	case mention.PopupCursor, mention.PopupFixed:
	default:
		return fmt.Errorf("unknown popup_mode %q", c.PopupMode)
	}
	if c.BlurDelayMS < 0 {
		return fmt.Errorf("blur_delay_ms must not be negative")
	}
	if len(c.Triggers) == 0 {
		return fmt.Errorf("config has no triggers")
	}

	seen := make(map[string]struct{}, len(c.Triggers))
	for i, t := range c.Triggers {
		if strings.TrimSpace(t.Char) == "" {
			return fmt.Errorf("trigger %d: empty char", i)
		}
		if _, ok := seen[t.Char]; ok {
			return fmt.Errorf("trigger %q: %w", t.Char, mention.ErrDuplicateTrigger)
		}
		seen[t.Char] = struct{}{}

		switch mention.Mode(t.Mode) {
		case "", mention.ModeInline, mention.ModeCommand:
		default:
			return fmt.Errorf("trigger %q: unknown mode %q", t.Char, t.Mode)
		}
		switch t.Source {
		case SourceStatic, SourceFiles, SourceCommands:
		case SourceRemote:
			if c.ServerURL == "" {
				return fmt.Errorf("trigger %q: remote source needs server_url", t.Char)
			}
		case "":
			return fmt.Errorf("trigger %q: missing source", t.Char)
		default:
			return fmt.Errorf("trigger %q: unknown source %q", t.Char, t.Source)
		}
		if t.DebounceMS < 0 {
			return fmt.Errorf("trigger %q: debounce_ms must not be negative", t.Char)
		}
		if t.Limit < 0 {
			return fmt.Errorf("trigger %q: limit must not be negative", t.Char)
		}
		if t.Schema != nil && t.Schema.Type == "" {
			return fmt.Errorf("trigger %q: schema missing type", t.Char)
		}
	}
	return nil
}

// Load reads and parses the config file. Returns error if missing, insecure or invalid.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile is Save for an explicit path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}
