package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", config.Version)
	}
	if config.API.BaseURL == "" {
		t.Error("Expected a default base URL")
	}
	if config.Download.OutputDir != "." {
		t.Errorf("Expected output dir '.', got %s", config.Download.OutputDir)
	}
	if config.Output.ColorMode != "auto" {
		t.Errorf("Expected color mode auto, got %s", config.Output.ColorMode)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid https base URL",
			mutate: func(c *Config) { c.API.BaseURL = "https://domains.example.com/api" },
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: true,
			errMsg:  "api.base_url is required",
		},
		{
			name:    "base URL without scheme",
			mutate:  func(c *Config) { c.API.BaseURL = "localhost:8080" },
			wantErr: true,
			errMsg:  "invalid api.base_url",
		},
		{
			name:    "base URL with ftp scheme",
			mutate:  func(c *Config) { c.API.BaseURL = "ftp://files.example.com" },
			wantErr: true,
			errMsg:  "invalid api.base_url",
		},
		{
			name:    "empty extension list",
			mutate:  func(c *Config) { c.Upload.AllowedExtensions = nil },
			wantErr: true,
			errMsg:  "must not be empty",
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.Upload.AllowedExtensions = []string{"txt"} },
			wantErr: true,
			errMsg:  "invalid extension",
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Output.DefaultFormat = "markdown" },
			wantErr: true,
			errMsg:  "invalid output format",
		},
		{
			name:    "invalid color mode",
			mutate:  func(c *Config) { c.Output.ColorMode = "sometimes" },
			wantErr: true,
			errMsg:  "invalid color mode",
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.Output.Theme = "neon" },
			wantErr: true,
			errMsg:  "invalid theme",
		},
		{
			name:    "negative log size",
			mutate:  func(c *Config) { c.Logging.MaxSizeMB = -1 },
			wantErr: true,
			errMsg:  "logging.max_size_mb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected validation error but got none")
					return
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no validation error but got: %v", err)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	config := DefaultConfig()
	config.API.BaseURL = "http://api:9000"
	config.Logging.File = "/var/log/domainslab.log"
	config.Logging.Compress = true

	apiCfg := config.APIClientConfig()
	if apiCfg.BaseURL != "http://api:9000" || apiCfg.UserAgent != "domainslab" {
		t.Errorf("Unexpected api config: %+v", apiCfg)
	}
	if err := apiCfg.Validate(); err != nil {
		t.Errorf("Converted api config should be valid: %v", err)
	}

	logCfg := config.LogFileConfig()
	if logCfg.Path != "/var/log/domainslab.log" || !logCfg.Compress {
		t.Errorf("Unexpected log config: %+v", logCfg)
	}
}

func TestMergeConfigsKeepsUnsetValues(t *testing.T) {
	dst := DefaultConfig()
	mergeConfigs(dst, &Config{Output: OutputConfig{Theme: "minimal"}})

	if dst.Output.Theme != "minimal" {
		t.Errorf("Expected theme minimal, got %s", dst.Output.Theme)
	}
	if dst.Output.DefaultFormat != "text" {
		t.Errorf("Expected format to stay text, got %s", dst.Output.DefaultFormat)
	}
	if dst.API.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected base URL to stay default, got %s", dst.API.BaseURL)
	}
}
