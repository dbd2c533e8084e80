package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfigPath names an alternative config file.
const EnvConfigPath = "REDDITMINI_CONFIG"

// Config is the persistent application configuration.
//
// Sources, lowest priority first: DefaultConfig, the JSON file, then
// REDDITMINI_* environment variables.
type Config struct {
	API     APIConfig     `json:"api"`
	Feed    FeedConfig    `json:"feed"`
	Daily   DailyConfig   `json:"daily"`
	Popular PopularConfig `json:"popular"`
	Sidebar SidebarConfig `json:"sidebar"`
	Assets  AssetsConfig  `json:"assets"`
	Journal JournalConfig `json:"journal"`
	Log     LogConfig     `json:"log"`
}

// APIConfig holds upstream client settings
type APIConfig struct {
	BaseURL     string   `json:"base_url" env:"REDDITMINI_BASE_URL"`
	UserAgent   string   `json:"user_agent" env:"REDDITMINI_USER_AGENT"`
	Timeout     Duration `json:"timeout" env:"REDDITMINI_TIMEOUT"` // 0 = transport defaults only
	MaxPerHost  int      `json:"max_per_host" env:"REDDITMINI_MAX_PER_HOST"`
	MinInterval Duration `json:"min_interval" env:"REDDITMINI_MIN_INTERVAL"`
}

// FeedConfig holds main-feed settings
type FeedConfig struct {
	PageSize        int    `json:"page_size" env:"REDDITMINI_PAGE_SIZE"`
	DefaultCategory string `json:"default_category" env:"REDDITMINI_DEFAULT_CATEGORY"`
}

// DailyConfig lists the daily-thread sources. An entry starting with
// "http" is an RSS/Atom URL; anything else is a category name.
type DailyConfig struct {
	Sources []string `json:"sources" env:"REDDITMINI_DAILY_SOURCES" env-separator:","`
	Limit   int      `json:"limit" env:"REDDITMINI_DAILY_LIMIT"`
}

// PopularConfig holds popular-communities settings
type PopularConfig struct {
	Limit int `json:"limit" env:"REDDITMINI_POPULAR_LIMIT"`
}

// SidebarConfig holds the fixed category shortcuts
type SidebarConfig struct {
	Categories []string `json:"categories" env:"REDDITMINI_CATEGORIES" env-separator:","`
}

// AssetsConfig holds fallback image paths shown when nothing resolved
type AssetsConfig struct {
	DefaultAvatar        string `json:"default_avatar" env:"REDDITMINI_DEFAULT_AVATAR"`
	DefaultCommunityIcon string `json:"default_community_icon" env:"REDDITMINI_DEFAULT_COMMUNITY_ICON"`
}

// JournalConfig controls the opt-in request journal
type JournalConfig struct {
	Enabled   bool     `json:"enabled" env:"REDDITMINI_JOURNAL"`
	Path      string   `json:"path" env:"REDDITMINI_JOURNAL_PATH"`
	Retention Duration `json:"retention" env:"REDDITMINI_JOURNAL_RETENTION"`
}

// LogConfig holds file-logger settings
type LogConfig struct {
	Level string `json:"level" env:"REDDITMINI_LOG_LEVEL"`
	Dir   string `json:"dir,omitempty" env:"REDDITMINI_LOG_DIR"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "https://www.reddit.com",
			UserAgent:   "redditmini/0.1 (terminal reader)",
			MaxPerHost:  6,
			MinInterval: Duration(50 * time.Millisecond),
		},
		Feed: FeedConfig{
			PageSize:        20,
			DefaultCategory: "all",
		},
		Daily: DailyConfig{
			Sources: []string{"AskReddit", "news", "movies"},
			Limit:   5,
		},
		Popular: PopularConfig{
			Limit: 20,
		},
		Sidebar: SidebarConfig{
			Categories: []string{"All", "Technology", "Worldnews", "Funny", "Sports"},
		},
		Assets: AssetsConfig{
			DefaultAvatar:        "./public/images/default-avatar.avif",
			DefaultCommunityIcon: "/default-avatar.png",
		},
		Journal: JournalConfig{
			Enabled:   false,
			Path:      filepath.Join(Dir(), "journal.db"),
			Retention: Duration(7 * 24 * time.Hour),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the per-user state directory (~/.redditmini).
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".redditmini")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config by priority: an explicit path (must exist), then
// REDDITMINI_CONFIG or ~/.redditmini/config.json (optional). Environment
// overrides are applied last in every case.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != "" || os.Getenv(EnvConfigPath) != ""
	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks values a user can get wrong in the file or environment.
func (c *Config) validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.Feed.PageSize <= 0 || c.Feed.PageSize > 100 {
		return fmt.Errorf("feed.page_size must be in 1..100")
	}
	if c.Daily.Limit <= 0 {
		return fmt.Errorf("daily.limit must be > 0")
	}
	if len(c.Daily.Sources) == 0 {
		return fmt.Errorf("daily.sources must name at least one source")
	}
	if c.Popular.Limit <= 0 {
		return fmt.Errorf("popular.limit must be > 0")
	}
	if c.API.MaxPerHost < 0 || c.API.MinInterval < 0 || c.API.Timeout < 0 {
		return fmt.Errorf("api limits must not be negative")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}
	return nil
}

// Save writes config to path, or to ConfigPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Duration is a time.Duration written as "1.5s" in JSON and accepted in
// the same form from the environment.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("duration must be a string like \"30s\": %w", err)
		}
		*d = Duration(n)
		return nil
	}
	return d.SetValue(s)
}

// SetValue implements cleanenv.Setter.
func (d *Duration) SetValue(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
