package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.domainslab.yaml",               // Project-specific config (highest priority)
	"~/.config/domainslab/config.yaml", // User config
	"/etc/domainslab/config.yaml",      // System config (lowest priority)
}

// BaseURLEnvVars are the environment variables naming the API root, in
// priority order. The VITE_ name is what the web client used.
var BaseURLEnvVars = []string{
	"DOMAINSLAB_API_BASE_URL",
	"DOMAINS_LAB_API",
	"VITE_DOMAINS_LAB_API",
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables (including values loaded from .env)
// 3. ./.domainslab.yaml
// 4. ~/.config/domainslab/config.yaml
// 5. /etc/domainslab/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	for i := len(BaseURLEnvVars) - 1; i >= 0; i-- {
		if value := l.getenv(BaseURLEnvVars[i]); value != "" {
			config.API.BaseURL = strings.TrimSpace(value)
		}
	}

	envMappings := map[string]func(string) error{
		// API Config
		"DOMAINSLAB_API_TIMEOUT":    func(v string) error { return parseDuration(v, &config.API.Timeout) },
		"DOMAINSLAB_API_USER_AGENT": func(v string) error { config.API.UserAgent = v; return nil },

		// Download Config
		"DOMAINSLAB_DOWNLOAD_OUTPUT_DIR": func(v string) error { config.Download.OutputDir = v; return nil },

		// Output Config
		"DOMAINSLAB_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"DOMAINSLAB_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"DOMAINSLAB_OUTPUT_THEME":          func(v string) error { config.Output.Theme = v; return nil },
		"DOMAINSLAB_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },

		// Logging Config
		"DOMAINSLAB_LOGGING_FILE":         func(v string) error { config.Logging.File = v; return nil },
		"DOMAINSLAB_LOGGING_MAX_SIZE_MB":  func(v string) error { return parseInt(v, &config.Logging.MaxSizeMB) },
		"DOMAINSLAB_LOGGING_MAX_BACKUPS":  func(v string) error { return parseInt(v, &config.Logging.MaxBackups) },
		"DOMAINSLAB_LOGGING_MAX_AGE_DAYS": func(v string) error { return parseInt(v, &config.Logging.MaxAgeDays) },
		"DOMAINSLAB_LOGGING_COMPRESS":     func(v string) error { return parseBool(v, &config.Logging.Compress) },

		// Watch Config
		"DOMAINSLAB_WATCH_DIRECTORY":     func(v string) error { config.Watch.Directory = v; return nil },
		"DOMAINSLAB_WATCH_KEYWORD":       func(v string) error { config.Watch.Keyword = v; return nil },
		"DOMAINSLAB_WATCH_AUTO_DOWNLOAD": func(v string) error { return parseBool(v, &config.Watch.AutoDownload) },
	}

	for envVar, setter := range envMappings {
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// comma-separated list
	if exts := l.getenv("DOMAINSLAB_UPLOAD_ALLOWED_EXTENSIONS"); exts != "" {
		config.Upload.AllowedExtensions = splitList(exts)
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ExpandPath is expandPath for callers outside the package
func ExpandPath(path string) string {
	return expandPath(path)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeConfigs merges source config into destination config.
// Only non-zero values from source overwrite destination.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeAPIConfig(&dst.API, &src.API)
	if len(src.Upload.AllowedExtensions) > 0 {
		dst.Upload.AllowedExtensions = src.Upload.AllowedExtensions
	}
	if src.Download.OutputDir != "" {
		dst.Download.OutputDir = src.Download.OutputDir
	}
	mergeOutputConfig(&dst.Output, &src.Output)
	mergeLoggingConfig(&dst.Logging, &src.Logging)
	mergeWatchConfig(&dst.Watch, &src.Watch)
}

func mergeAPIConfig(dst, src *APIConfig) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.UserAgent != "" {
		dst.UserAgent = src.UserAgent
	}
}

func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	// every boolean defaults to false, so only an explicit true can change it
	if src.Verbose {
		dst.Verbose = true
	}
}

func mergeLoggingConfig(dst, src *LoggingConfig) {
	if src.File != "" {
		dst.File = src.File
	}
	if src.MaxSizeMB != 0 {
		dst.MaxSizeMB = src.MaxSizeMB
	}
	if src.MaxBackups != 0 {
		dst.MaxBackups = src.MaxBackups
	}
	if src.MaxAgeDays != 0 {
		dst.MaxAgeDays = src.MaxAgeDays
	}
	if src.Compress {
		dst.Compress = true
	}
}

func mergeWatchConfig(dst, src *WatchConfig) {
	if src.Directory != "" {
		dst.Directory = src.Directory
	}
	if src.Keyword != "" {
		dst.Keyword = src.Keyword
	}
	if src.AutoDownload {
		dst.AutoDownload = true
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
