package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultUserAgent = "domainslab"

	// UploadField is the multipart form field the backend reads the file from
	UploadField = "domainsFile"
)

type Config struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent"`

	// HTTPClient overrides the client built from Timeout (tests, proxies)
	HTTPClient *http.Client `json:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return newError(ErrTypeConfiguration, "configure", "API base URL is required (set DOMAINS_LAB_API)")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return newErrorWithCause(ErrTypeConfiguration, "configure", fmt.Sprintf("invalid base URL %q", c.BaseURL), err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return newError(ErrTypeConfiguration, "configure", fmt.Sprintf("base URL must use http or https, got %q", c.BaseURL))
	}

	if c.Timeout < 0 {
		return newError(ErrTypeConfiguration, "configure", "timeout must be non-negative")
	}

	return nil
}
