package sessionauth

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := testConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"missing secret":    func(c *Config) { c.JWT.Secret = nil },
		"bad algorithm":     func(c *Config) { c.JWT.Algorithm = "none" },
		"zero ttl":          func(c *Config) { c.JWT.TokenTTL = 0 },
		"negative ttl":      func(c *Config) { c.JWT.TokenTTL = -time.Minute },
		"missing key":       func(c *Config) { c.Cipher.Key = nil },
		"short key":         func(c *Config) { c.Cipher.Key = []byte("0123456789") },
		"oversize key":      func(c *Config) { c.Cipher.Key = make([]byte, 48) },
		"empty prefix":      func(c *Config) { c.Session.RedisPrefix = "" },
	}
	for name, mutate := range cases {
		cfg := testConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestConfigKeyLengths(t *testing.T) {
	for _, n := range []int{16, 24, 32} {
		cfg := testConfig()
		cfg.Cipher.Key = make([]byte, n)
		for i := range cfg.Cipher.Key {
			cfg.Cipher.Key[i] = byte(i)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("key length %d rejected: %v", n, err)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.JWT.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected default TTL %v", cfg.JWT.TokenTTL)
	}
	if cfg.Session.RedisPrefix == "" {
		t.Fatal("expected a default redis prefix")
	}
	if len(cfg.JWT.Secret) != 0 || len(cfg.Cipher.Key) != 0 {
		t.Fatal("defaults must not ship key material")
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("defaults alone must not validate")
	}
}

func TestBuilderClonesConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(newMockUserStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	before, err := engine.PasswordDigest("probe")
	if err != nil {
		t.Fatalf("PasswordDigest failed: %v", err)
	}

	// Mutating the caller's copy after Build must not affect the engine.
	cfg.JWT.Secret[0] ^= 0xff
	cfg.Cipher.Key[0] ^= 0xff

	after, err := engine.PasswordDigest("probe")
	if err != nil {
		t.Fatalf("PasswordDigest failed: %v", err)
	}
	if before != after {
		t.Fatal("engine aliased the caller's key material")
	}
}
