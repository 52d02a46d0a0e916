package exporter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultPort    = 8080
	DefaultTimeout = 60 * time.Second
)

type Config struct {
	Port    int
	Timeout time.Duration

	BaseURL    string
	OrgID      string
	PublicKey  string
	PrivateKey string

	PollSchedule    string
	ScrapeOnRequest bool
}

// Valid reports the first problem with the config.
func (cfg *Config) Valid() error {
	var missing []string
	if cfg.OrgID == "" {
		missing = append(missing, "org")
	}
	if cfg.PublicKey == "" {
		missing = append(missing, "public-key")
	}
	if cfg.PrivateKey == "" {
		missing = append(missing, "private-key")
	}
	if len(missing) != 0 {
		return fmt.Errorf("the following flags are required: %s", strings.Join(missing, ","))
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url %q: scheme and host are required", cfg.BaseURL)
	}
	if !cfg.ScrapeOnRequest && cfg.PollSchedule == "" {
		return errors.New("a poll schedule is required when scrape-on-request is disabled")
	}
	return nil
}

// ValidPort reports whether port can be listened on.
func ValidPort(port int) bool {
	return port > 0 && port <= 65535
}
