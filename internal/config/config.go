package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Engine  EngineConfig  `mapstructure:"engine"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type EngineConfig struct {
	// SynergyFile points at a YAML catalog replacing the builtin synergies.
	SynergyFile string `mapstructure:"synergy_file"`
}

// Load reads configuration from an optional explicit file, the standard
// lookup paths, and CRYSTALLINE_* environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/crystalline")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CRYSTALLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "warn")
	v.SetDefault("storage.db_path", "")
	v.SetDefault("engine.synergy_file", "")
}
