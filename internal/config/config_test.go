// This test file verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if default values are set
		if cfg.Port != 8085 {
			t.Errorf("Expected default port 8085, got %d", cfg.Port)
		}
		if cfg.Database.Path != "./jobdeck.db" {
			t.Errorf("Expected default db path './jobdeck.db', got '%s'", cfg.Database.Path)
		}
		if cfg.RefreshInterval != 15 {
			t.Errorf("Expected default refresh interval of 15, got %d", cfg.RefreshInterval)
		}
		if cfg.History.KeepSnapshots != 100 {
			t.Errorf("Expected default snapshot retention of 100, got %d", cfg.History.KeepSnapshots)
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		// Create a temporary config file for this test
		configContent := `
port: 9999
source:
  url: "http://jobs.example.com"
  file: "/tmp/jobs.json"
database:
  path: "/tmp/test.db"
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		// Note: `t.TempDir()` is not used here because Viper looks in the CWD.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		// Clean up the file after the test
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if values from the file were loaded
		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Source.URL != "http://jobs.example.com" {
			t.Errorf("Expected source url 'http://jobs.example.com', got '%s'", cfg.Source.URL)
		}
		if cfg.Source.File != "/tmp/jobs.json" {
			t.Errorf("Expected source file '/tmp/jobs.json', got '%s'", cfg.Source.File)
		}
		if cfg.Database.Path != "/tmp/test.db" {
			t.Errorf("Expected db path '/tmp/test.db', got '%s'", cfg.Database.Path)
		}
		if cfg.RefreshInterval != 15 {
			t.Errorf("Expected default refresh interval of 15, got %d", cfg.RefreshInterval)
		}
	})
}
