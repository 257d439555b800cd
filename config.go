package sessionauth

import (
	"errors"
	"time"
)

// Config is the process-wide configuration: signing secret, algorithm, token
// expiry, and cipher key. It is constructed once at startup, cloned by
// Builder.Build, and never mutated afterwards.
type Config struct {
	JWT     JWTConfig
	Cipher  CipherConfig
	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls token issuance and verification.
type JWTConfig struct {
	Secret    []byte
	Algorithm string // "hs256" (default), "hs384", "hs512"
	TokenTTL  time.Duration
}

/*
====================================
CIPHER CONFIG
====================================
*/

// CipherConfig holds the payload cipher key. The key is fixed at process
// start and never rotated at runtime; 16, 24, or 32 bytes (AES-128/192/256).
type CipherConfig struct {
	Key []byte
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the Redis session index.
type SessionConfig struct {
	RedisPrefix string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration. Secrets and keys have no
// defaults and must be supplied before Build.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Algorithm: "hs256",
			TokenTTL:  24 * time.Hour,
		},
		Session: SessionConfig{
			RedisPrefix: "sa",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if len(c.JWT.Secret) == 0 {
		return errors.New("jwt secret required")
	}
	switch c.JWT.Algorithm {
	case "hs256", "hs384", "hs512":
	default:
		return errors.New("unsupported signing algorithm")
	}
	if c.JWT.TokenTTL <= 0 {
		return errors.New("invalid token TTL configuration")
	}
	switch len(c.Cipher.Key) {
	case 16, 24, 32:
	default:
		return errors.New("cipher key must be 16, 24, or 32 bytes")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("invalid audit buffer size")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	out.Cipher.Key = cloneBytes(cfg.Cipher.Key)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
