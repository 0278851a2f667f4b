package auth

import (
	"errors"
	"time"

	"github.com/lumenweb/auth/password"
	"github.com/lumenweb/auth/token"
)

// SessionConfig controls the credential store.
type SessionConfig struct {
	// RedisPrefix namespaces all session keys. Defaults to "lw".
	RedisPrefix string

	// Lifetime bounds a session's age. Rotation extends expiry forward to
	// now+Lifetime but never shortens it.
	Lifetime time.Duration
}

// SecurityConfig tunes the login and rotation throttles.
type SecurityConfig struct {
	EnableIPThrottle     bool
	EnableRotateThrottle bool
	MaxLoginAttempts     int
	LoginCooldown        time.Duration
	MaxRotateAttempts    int
	RotateCooldown       time.Duration
}

// Config aggregates all service settings. Zero values are filled from
// [DefaultConfig] only when the whole struct is zero; otherwise Validate
// rejects incomplete configs early.
type Config struct {
	Token    token.Config
	Session  SessionConfig
	Password password.Config
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// DefaultConfig returns a baseline configuration. Key material is not
// defaulted; callers must set Token.PrivateKey (and PublicKey for ed25519).
func DefaultConfig() Config {
	return Config{
		Token: token.Config{
			AccessTTL:     10 * time.Minute,
			SigningMethod: token.MethodEd25519,
			Issuer:        "lumenweb",
		},
		Session: SessionConfig{
			RedisPrefix: "lw",
			Lifetime:    30 * 24 * time.Hour,
		},
		Password: password.DefaultConfig(),
		Security: SecurityConfig{
			EnableIPThrottle:     true,
			EnableRotateThrottle: true,
			MaxLoginAttempts:     10,
			LoginCooldown:        15 * time.Minute,
			MaxRotateAttempts:    30,
			RotateCooldown:       time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks cross-field consistency. Token and password parameters are
// additionally validated by their own constructors at build time.
func (c Config) Validate() error {
	if c.Session.Lifetime <= 0 {
		return errors.New("session lifetime must be positive")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.Token.AccessTTL >= c.Session.Lifetime {
		return errors.New("access TTL must be shorter than session lifetime")
	}
	if c.Security.MaxLoginAttempts <= 0 || c.Security.LoginCooldown <= 0 {
		return errors.New("login throttle requires positive attempts and cooldown")
	}
	if c.Security.EnableRotateThrottle &&
		(c.Security.MaxRotateAttempts <= 0 || c.Security.RotateCooldown <= 0) {
		return errors.New("rotate throttle requires positive attempts and cooldown")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	if cfg.Token.VerifyKeys != nil {
		out.Token.VerifyKeys = make(map[string][]byte, len(cfg.Token.VerifyKeys))
		for kid, key := range cfg.Token.VerifyKeys {
			out.Token.VerifyKeys[kid] = cloneBytes(key)
		}
	}
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
