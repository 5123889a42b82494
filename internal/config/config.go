package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database      DatabaseConfig
	Mapping       MappingConfig
	Normalization NormalizationConfig
	Log           LogConfig
	Metrics       MetricsConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// MappingConfig points at the YAML header mapping. Empty means the built-in mapping.
type MappingConfig struct {
	Path string
}

// NormalizationConfig holds transformation settings.
type NormalizationConfig struct {
	LogicVersion      string `mapstructure:"logic_version"`
	RefinePassThrough bool   `mapstructure:"refine_pass_through"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string
	Format    string
	File      string
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// MetricsConfig holds the optional Prometheus textfile path.
type MetricsConfig struct {
	Textfile string
}

// Path returns the config file location. EXTRACTA_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv("EXTRACTA_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "extracta", "config.toml")
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "extracta")
	v.SetDefault("database.path", filepath.Join(dataDir, "extracta.db"))
	v.SetDefault("mapping.path", "")
	v.SetDefault("normalization.logic_version", "1.0.0")
	v.SetDefault("normalization.refine_pass_through", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", filepath.Join(dataDir, "logs", "pipeline.log"))
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("metrics.textfile", "")
}

// Load reads configuration from file and env. Env var overrides use prefix EXTRACTA_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EXTRACTA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// the config file is optional
	path := Path()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
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
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("mapping.path", cfg.Mapping.Path)
	v.Set("normalization.logic_version", cfg.Normalization.LogicVersion)
	v.Set("normalization.refine_pass_through", cfg.Normalization.RefinePassThrough)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.Set("metrics.textfile", cfg.Metrics.Textfile)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
