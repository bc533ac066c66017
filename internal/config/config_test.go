package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Verify())
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"empty_task", func(c *Config) { c.Task = "" }, "'task'"},
		{"zero_size", func(c *Config) { c.Size = 0 }, "'size'"},
		{"negative_max_value", func(c *Config) { c.MaxValue = -1 }, "'max-value'"},
		{"zero_rounds", func(c *Config) { c.Rounds = 0 }, "'rounds'"},
		{"negative_workers", func(c *Config) { c.Workers = -2 }, "'workers'"},
		{"bad_log_format", func(c *Config) { c.Log.Format = "xml" }, "'log.format'"},
		{"bad_log_level", func(c *Config) { c.Log.Level = "trace" }, "'log.level'"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(cfg)
			err := cfg.Verify()
			require.Error(t, err)
			require.Contains(t, err.Error(), test.errMsg)
		})
	}

	cfg := DefaultConfig()
	cfg.Store.URI = ""
	cfg.Log.Level = "none"
	require.NoError(t, cfg.Verify())
}
