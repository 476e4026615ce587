package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mangamux.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[providers]
enabled = toonily, manhuaplus
notifications = toonily

[updates]
restrict_to_known_source = true

[store]
path = /var/lib/mangamux/data.json

[http]
timeout = 30s
retries = 4
retry_base = 500ms
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"toonily", "manhuaplus"}, c.EnabledProviders)
	assert.Equal(t, []string{"toonily"}, c.NotificationProviders)
	assert.True(t, c.RestrictToKnownSource)
	assert.Equal(t, "/var/lib/mangamux/data.json", c.StorePath)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 4, c.Retries)
	assert.Equal(t, 500*time.Millisecond, c.RetryBase)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "[store]\npath = custom.json\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom.json", c.StorePath)
	assert.Nil(t, c.EnabledProviders)
	assert.False(t, c.RestrictToKnownSource)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, 2, c.Retries)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty store path", mutate: func(c *Config) { c.StorePath = "" }},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "negative retries", mutate: func(c *Config) { c.Retries = -1 }},
		{name: "zero retry base", mutate: func(c *Config) { c.RetryBase = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
