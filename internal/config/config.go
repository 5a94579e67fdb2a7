package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/logger"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	API      APIConfig      `yaml:"api" json:"api"`
	Upload   UploadConfig   `yaml:"upload" json:"upload"`
	Download DownloadConfig `yaml:"download" json:"download"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
}

// APIConfig configures the backend connection
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`     // Domains Lab API root
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`       // 0 waits indefinitely
	UserAgent string        `yaml:"user_agent" json:"user_agent"` // sent with every request
}

// UploadConfig configures file selection
type UploadConfig struct {
	AllowedExtensions []string `yaml:"allowed_extensions" json:"allowed_extensions"`
}

// DownloadConfig configures where result files are saved
type DownloadConfig struct {
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Theme         string `yaml:"theme" json:"theme"`                   // default|high-contrast|minimal
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LoggingConfig configures the rotating log file used while the TUI owns
// the terminal. An empty file keeps logs on stderr.
type LoggingConfig struct {
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// WatchConfig configures the drop folder
type WatchConfig struct {
	Directory    string `yaml:"directory" json:"directory"`
	Keyword      string `yaml:"keyword" json:"keyword"`
	AutoDownload bool   `yaml:"auto_download" json:"auto_download"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL:   api.DefaultBaseURL,
			Timeout:   0,
			UserAgent: api.DefaultUserAgent,
		},
		Upload: UploadConfig{
			AllowedExtensions: []string{".txt", ".csv"},
		},
		Download: DownloadConfig{
			OutputDir: ".",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Theme:         "default",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			File:       "~/.cache/domainslab/domainslab.log",
			MaxSizeMB:  logger.DefaultMaxSizeMB,
			MaxBackups: logger.DefaultMaxBackups,
			MaxAgeDays: logger.DefaultMaxAgeDays,
		},
		Watch: WatchConfig{
			Directory: "./inbox",
		},
	}
}

// APIClientConfig converts the api section for api.New
func (c *Config) APIClientConfig() *api.Config {
	return &api.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		UserAgent: c.API.UserAgent,
	}
}

// LogFileConfig converts the logging section for logger.NewFileWriter
func (c *Config) LogFileConfig() logger.FileConfig {
	return logger.FileConfig{
		Path:       expandPath(c.Logging.File),
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAPIConfig(); err != nil {
		return err
	}
	if err := c.validateUploadConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateLoggingConfig(); err != nil {
		return err
	}
	return nil
}

// validateAPIConfig validates backend settings
func (c *Config) validateAPIConfig() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (or set DOMAINS_LAB_API)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %s (must be an http or https URL)", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be non-negative")
	}
	return nil
}

// validateUploadConfig validates the allowed extensions
func (c *Config) validateUploadConfig() error {
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must not be empty")
	}
	for _, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension %q in upload.allowed_extensions (must look like .txt)", ext)
		}
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json": true,
			"text": true,
			"csv":  true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Output.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Output.Theme)
		}
	}
	return nil
}

// validateLoggingConfig validates log rotation settings
func (c *Config) validateLoggingConfig() error {
	if c.Logging.MaxSizeMB < 0 {
		return fmt.Errorf("logging.max_size_mb must be non-negative")
	}
	if c.Logging.MaxBackups < 0 {
		return fmt.Errorf("logging.max_backups must be non-negative")
	}
	if c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("logging.max_age_days must be non-negative")
	}
	return nil
}
