// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port            int `mapstructure:"port"`
	RefreshInterval int `mapstructure:"refresh_interval"` // seconds between job list refreshes
	Source          struct {
		URL    string `mapstructure:"url"`
		APIKey string `mapstructure:"api_key"`
		File   string `mapstructure:"file"` // when set, read jobs from a local JSON file instead
	} `mapstructure:"source"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Auth struct {
		Username     string `mapstructure:"username"`
		PasswordHash string `mapstructure:"password_hash"` // bcrypt; auth disabled when empty
	} `mapstructure:"auth"`
	History struct {
		KeepSnapshots int `mapstructure:"keep_snapshots"`
	} `mapstructure:"history"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "JOBDECK_" prefix.
	// e.g., JOBDECK_SOURCE_URL will override the `source.url` key.
	viper.SetEnvPrefix("JOBDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8085)
	viper.SetDefault("refresh_interval", 15)
	viper.SetDefault("source.url", "http://localhost:6767")
	viper.SetDefault("database.path", "./jobdeck.db")
	viper.SetDefault("history.keep_snapshots", 100)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
