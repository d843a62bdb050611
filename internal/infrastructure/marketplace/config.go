package marketplace

import (
	"errors"
	"time"
)

// DefaultAPIBaseURL is the production seller API endpoint
const DefaultAPIBaseURL = "https://api-seller.example.com"

// ErrConfigMissingBaseURL indicates an empty API base URL
var ErrConfigMissingBaseURL = errors.New("marketplace: api base url is required")

// ClientConfig holds transport settings for the seller API client
type ClientConfig struct {
	// BaseURL is the API endpoint root
	BaseURL string
	// TimeoutSeconds is the per-request HTTP timeout
	TimeoutSeconds int
	// MaxRetries is the number of retries after a transient failure
	MaxRetries int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt
	RetryBaseDelay time.Duration
}

// NewClientConfig creates a client configuration with defaults
func NewClientConfig(baseURL string) *ClientConfig {
	return &ClientConfig{
		BaseURL:        baseURL,
		TimeoutSeconds: 30,
		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,
	}
}

// Validate validates the client configuration, filling defaults
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	return nil
}
