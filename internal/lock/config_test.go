package lock

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero acquire timeout", func(c *Config) { c.AcquireTimeout = 0 }},
		{"negative retry interval", func(c *Config) { c.RetryInterval = -time.Millisecond }},
		{"retry exceeds timeout", func(c *Config) { c.RetryInterval = c.AcquireTimeout + time.Millisecond }},
		{"zero heartbeat interval", func(c *Config) { c.HeartbeatInterval = 0 }},
		{"staleness equals heartbeat", func(c *Config) { c.StalenessThreshold = c.HeartbeatInterval }},
		{"staleness below heartbeat", func(c *Config) { c.StalenessThreshold = c.HeartbeatInterval / 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should reject the configuration")
			}
		})
	}
}
