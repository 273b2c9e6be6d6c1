package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LAUNCHBAR_DEVICE_ID", "laptop")

	cfg := Load()

	if cfg.ListenAddr != "127.0.0.1:8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DeviceID != "laptop" {
		t.Errorf("DeviceID = %q, want laptop", cfg.DeviceID)
	}
	if cfg.SharedStoreEnabled() {
		t.Error("shared store should default to memory")
	}
	if cfg.LoadMaxAttempts != 0 {
		t.Errorf("LoadMaxAttempts = %d, want unbounded (0)", cfg.LoadMaxAttempts)
	}
	if cfg.TokenMaxDepth != 32 {
		t.Errorf("TokenMaxDepth = %d, want 32", cfg.TokenMaxDepth)
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v, want loopback defaults", cfg.AllowedCIDRS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LAUNCHBAR_REDIS_ADDR", "redis:6379")
	t.Setenv("LAUNCHBAR_LOAD_MAX_ATTEMPTS", "5")
	t.Setenv("LAUNCHBAR_SYNC_INTERVAL", "250ms")
	t.Setenv("LAUNCHBAR_ALLOWED_CIDRS", `"10.0.0.0/8", 192.168.1.0/24`)

	cfg := Load()

	if !cfg.SharedStoreEnabled() {
		t.Error("redis address should enable the shared store")
	}
	if cfg.LoadMaxAttempts != 5 {
		t.Errorf("LoadMaxAttempts = %d, want 5", cfg.LoadMaxAttempts)
	}
	if cfg.SyncInterval != 250*time.Millisecond {
		t.Errorf("SyncInterval = %v", cfg.SyncInterval)
	}
	want := []string{"10.0.0.0/8", "192.168.1.0/24"}
	if len(cfg.AllowedCIDRS) != len(want) {
		t.Fatalf("AllowedCIDRS = %v, want %v", cfg.AllowedCIDRS, want)
	}
	for i := range want {
		if cfg.AllowedCIDRS[i] != want[i] {
			t.Errorf("AllowedCIDRS[%d] = %q, want %q", i, cfg.AllowedCIDRS[i], want[i])
		}
	}
}

func TestValidatePanics(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "redis password required",
			cfg:  Config{RedisAddr: "redis:6379", RedisPasswordRequired: true, TokenMaxDepth: 1, LoadTimeout: time.Second},
		},
		{
			name: "zero token depth",
			cfg:  Config{TokenMaxDepth: 0, LoadTimeout: time.Second},
		},
		{
			name: "negative attempts",
			cfg:  Config{TokenMaxDepth: 1, LoadMaxAttempts: -1, LoadTimeout: time.Second},
		},
		{
			name: "no load timeout",
			cfg:  Config{TokenMaxDepth: 1},
		},
		{
			name: "no request timeout",
			cfg:  Config{TokenMaxDepth: 1, LoadTimeout: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("validate() should have panicked")
				}
			}()
			tt.cfg.validate()
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{RedisUser: "me", RedisPassword: "secret"}
	r := cfg.Redacted()
	if r.RedisPassword == "secret" || r.RedisUser == "me" {
		t.Errorf("credentials leaked: %+v", r)
	}
	if cfg.RedisPassword != "secret" {
		t.Error("Redacted must not modify the original")
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{"valid duration", "5s", time.Second, 5 * time.Second},
		{"invalid duration uses default", "invalid", 10 * time.Second, 10 * time.Second},
		{"missing variable uses default", "", 15 * time.Second, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := mustDuration("TEST_DURATION", tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{"true value", "true", false, true},
		{"false value", "false", true, false},
		{"invalid value uses default", "invalid", true, true},
		{"missing variable uses default", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := mustBool("TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty")

	if got := getenvInt("TEST_INT", 1); got != 42 {
		t.Errorf("getenvInt() = %d, want 42", got)
	}
	if got := getenvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("getenvInt() = %d, want default 7", got)
	}
}
