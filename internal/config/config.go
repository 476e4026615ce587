// Package config loads the mangamux ini configuration.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds everything tunable from the config file.
type Config struct {
	// EnabledProviders limits which reading providers participate in
	// resolution; empty means all.
	EnabledProviders []string
	// NotificationProviders limits update checking; empty means all.
	NotificationProviders []string
	// RestrictToKnownSource checks a follow only against the source it
	// was originally followed on.
	RestrictToKnownSource bool

	// StorePath is where the JSON document store lives.
	StorePath string

	// Provider call budget.
	Timeout   time.Duration
	Retries   int
	RetryBase time.Duration
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		StorePath: "mangamux.json",
		Timeout:   10 * time.Second,
		Retries:   2,
		RetryBase: time.Second,
	}
}

// Load reads an ini file over the defaults. An empty path returns the
// defaults untouched.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	providers := f.Section("providers")
	if key := providers.Key("enabled"); key.String() != "" {
		c.EnabledProviders = key.Strings(",")
	}
	if key := providers.Key("notifications"); key.String() != "" {
		c.NotificationProviders = key.Strings(",")
	}

	updates := f.Section("updates")
	c.RestrictToKnownSource = updates.Key("restrict_to_known_source").MustBool(false)

	storeSec := f.Section("store")
	if p := storeSec.Key("path").String(); p != "" {
		c.StorePath = p
	}

	httpSec := f.Section("http")
	c.Timeout = httpSec.Key("timeout").MustDuration(c.Timeout)
	c.Retries = httpSec.Key("retries").MustInt(c.Retries)
	c.RetryBase = httpSec.Key("retry_base").MustDuration(c.RetryBase)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate ensures the values are coherent.
func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("store path cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries cannot be negative")
	}
	if c.RetryBase <= 0 {
		return fmt.Errorf("retry base delay must be positive")
	}
	return nil
}
