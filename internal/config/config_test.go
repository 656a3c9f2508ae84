package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default configuration must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"threshold too high", func(c *Config) { c.Threshold = 1.2 }, false},
		{"threshold negative", func(c *Config) { c.Threshold = -0.1 }, false},
		{"threshold boundary", func(c *Config) { c.Threshold = 1.0 }, true},
		{"quorum zero", func(c *Config) { c.Quorum = 0 }, false},
		{"quorum one", func(c *Config) { c.Quorum = 1 }, true},
		{"unknown backend", func(c *Config) { c.Backend = "sqlite" }, false},
		{"badger backend", func(c *Config) { c.Backend = BackendBadger }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
