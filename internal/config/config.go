package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	UI       UIConfig
	Logging  LoggingConfig
	Prefs    PrefsConfig
	Keys     []KeyOverride
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Heading    string
	LinkBanner string `mapstructure:"link_banner"`
	DateFormat string `mapstructure:"date_format"`
	Width      int
}

// LoggingConfig controls the zerolog output. The TUI owns the terminal so
// the default sink is a file.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// PrefsConfig points at the directory holding remembered UI state.
type PrefsConfig struct {
	Dir string
}

// KeyOverride rebinds one action in one key scope.
type KeyOverride struct {
	Scope  string
	Action string
	Keys   []string
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "embark")
}

func configPath() string {
	if p := os.Getenv("EMBARK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "embark", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix EMBARK_.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file; an empty path falls back to
// $EMBARK_CONFIG and then the default search path.
func LoadFile(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(dataDir(), "embark.db"))
	v.SetDefault("ui.heading", "Subject Records")
	v.SetDefault("ui.link_banner", "Link mode: select a record to link it to the active subject")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.width", 72)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", filepath.Join(dataDir(), "embark.log"))
	v.SetDefault("prefs.dir", filepath.Join(os.Getenv("HOME"), ".config", "embark"))

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("EMBARK_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "embark"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EMBARK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine; a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.heading", cfg.UI.Heading)
	v.Set("ui.link_banner", cfg.UI.LinkBanner)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.width", cfg.UI.Width)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("prefs.dir", cfg.Prefs.Dir)
	if len(cfg.Keys) > 0 {
		keys := make([]map[string]any, 0, len(cfg.Keys))
		for _, k := range cfg.Keys {
			keys = append(keys, map[string]any{"scope": k.Scope, "action": k.Action, "keys": k.Keys})
		}
		v.Set("keys", keys)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
