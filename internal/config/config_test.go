package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
}

func TestParse_ExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("COMPLYDEX_TEST_ADDR", "redis:6380")

	cfg, err := Parse([]byte(`
http:
  port: ${COMPLYDEX_TEST_PORT:-9090}
database:
  addrs: ["${COMPLYDEX_TEST_ADDR}"]
history:
  retention: 25
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "redis:6380" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.History.Retention != 25 {
		t.Errorf("retention = %d", cfg.History.Retention)
	}
	if cfg.Search.CandidateLimit != 200 {
		t.Errorf("candidate limit = %d", cfg.Search.CandidateLimit)
	}
	if cfg.Search.SuggestCacheTTL() != time.Minute {
		t.Errorf("suggest ttl = %v", cfg.Search.SuggestCacheTTL())
	}
	if cfg.Worker.TaskTimeout() != 2*time.Second {
		t.Errorf("task timeout = %v", cfg.Worker.TaskTimeout())
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("http: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("err = %v", err)
	}
}

func TestSuggestCacheTTL_Disabled(t *testing.T) {
	c := SearchConfig{SuggestCacheTTLSec: -1}
	if c.SuggestCacheTTL() != 0 {
		t.Errorf("ttl = %v, want 0", c.SuggestCacheTTL())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"huge candidate limit", func(c *Config) { c.Search.CandidateLimit = 20000 }, "search.candidate_limit"},
		{"bad ttl", func(c *Config) { c.Search.SuggestCacheTTLSec = -5 }, "suggest_cache_ttl_sec"},
		{"blank api key", func(c *Config) { c.Auth.APIKeys = []string{"k1", " "} }, "auth.api_keys[1]"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("COMPLYDEX_SET", "x")
	got := string(expandEnvVars([]byte("${COMPLYDEX_SET}-${COMPLYDEX_UNSET:-d}-${COMPLYDEX_UNSET}")))
	if got != "x-d-" {
		t.Errorf("got %q", got)
	}
}
