package config

import (
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("LEDGER_DATABASE_DRIVER", "sqlite")
	t.Setenv("LEDGER_DATABASE_URL", "file:test.db")
	t.Setenv("LEDGER_SEAL_DELETED_POSTS", "true")
	t.Setenv("LEDGER_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Expected database driver from env, got: %s", cfg.Database.Driver)
	}
	if cfg.Database.URL != "file:test.db" {
		t.Errorf("Expected database URL from env, got: %s", cfg.Database.URL)
	}
	if !cfg.Ledger.SealDeletedPosts {
		t.Error("Expected seal_deleted_posts from env")
	}
	if !cfg.Redis.Enabled {
		t.Error("Expected redis to be enabled when redis_url is set")
	}
	if cfg.Ledger.Denom != "ujunox" {
		t.Errorf("Expected default denom, got: %s", cfg.Ledger.Denom)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "postgres", URL: "postgresql://test@localhost/test"},
			Server:   ServerConfig{Port: 8080},
			Ledger: LedgerConfig{
				ContractName:    "rome-contract",
				ContractVersion: "0.1.0",
				ContractAddress: "juno1qszqgpqyqszqgpqyqszqgpqyqszqgpqy59zyvt",
				AddressPrefix:   "juno",
				Denom:           "ujunox",
				GatewayPrefix:   "https://alxandria.infura-ipfs.io/ipfs/",
				PayoutAddress:   "juno1ggtuwvungvx5t3awqpcqvxxvgt7gvwdkanuwtm",
			},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Valid config should not error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty url", func(c *Config) { c.Database.URL = "" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty denom", func(c *Config) { c.Ledger.Denom = "" }},
		{"empty gateway", func(c *Config) { c.Ledger.GatewayPrefix = "" }},
		{"empty prefix", func(c *Config) { c.Ledger.AddressPrefix = "" }},
		{"empty payout", func(c *Config) { c.Ledger.PayoutAddress = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
