package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	FileEnv, "PORT", "DB_PATH", "JWT_SECRET", "TOKEN_DURATION", "LOG_LEVEL", "LOG_FORMAT",
	"CACHE_SIZE", "CACHE_TTL", "AMQP_URL", "AMQP_EXCHANGE", "AUTO_ROLLOVER",
	"ROLLOVER_SCHEDULE", "TIMEZONE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func validConfig() *Config {
	cfg := Default()
	cfg.JWTSecret = "0123456789abcdef0123"
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "./data/duesbook.db" {
		t.Errorf("unexpected defaults: port=%s db=%s", cfg.Port, cfg.DBPath)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("cache TTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.AutoRollover {
		t.Error("auto rollover should be off by default")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "duesbook.toml")
	content := `
port = "9090"
db_path = "/var/lib/duesbook/ledger.db"
jwt_secret = "from-the-config-file"
cache_ttl = "30s"
auto_rollover = true
timezone = "Europe/Rome"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("CACHE_SIZE", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "7070" {
		t.Errorf("env should override file: port = %s", cfg.Port)
	}
	if cfg.DBPath != "/var/lib/duesbook/ledger.db" {
		t.Errorf("db path = %s", cfg.DBPath)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("cache TTL = %v, want 30s", cfg.CacheTTL)
	}
	if cfg.CacheSize != 8 {
		t.Errorf("cache size = %d, want 8", cfg.CacheSize)
	}
	if !cfg.AutoRollover || cfg.Timezone != "Europe/Rome" {
		t.Errorf("scheduler settings not read: %+v", cfg)
	}
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "duesbook.toml")
	if err := os.WriteFile(path, []byte(`log_format = "json"`), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(FileEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("log format = %s, want json", cfg.LogFormat)
	}
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte(`port = `), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT secret is required",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "bad amqp scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672/" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name: "bad schedule only checked when enabled",
			mutate: func(c *Config) {
				c.RolloverSchedule = "every month"
			},
			wantErr: false,
		},
		{
			name: "bad schedule",
			mutate: func(c *Config) {
				c.AutoRollover = true
				c.RolloverSchedule = "every month"
			},
			wantErr:     true,
			errorString: "invalid rollover schedule 'every month'",
		},
		{
			name:        "unknown timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateAggregatesEnvErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_SIZE", "lots")
	t.Setenv("TOKEN_DURATION", "forever")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"invalid CACHE_SIZE 'lots'", "invalid TOKEN_DURATION 'forever'"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}
