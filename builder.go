package auth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/lumenweb/auth/internal/audit"
	"github.com/lumenweb/auth/internal/rate"
	"github.com/lumenweb/auth/password"
	"github.com/lumenweb/auth/session"
	"github.com/lumenweb/auth/token"
)

// Builder assembles a [Service]. Obtain one from [New], chain the With
// methods, then call Build exactly once.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	directory UserDirectory
	auditSink AuditSink

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the default configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing sessions and throttles.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserDirectory sets the application's account lookup.
func (b *Builder) WithUserDirectory(dir UserDirectory) *Builder {
	b.directory = dir
	return b
}

// WithAuditSink enables audit delivery to the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the gate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready [Service].
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.directory == nil {
		return nil, errors.New("user directory required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(cfg.Token)
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		config:    cfg,
		tokens:    tokens,
		store:     session.NewStore(b.redis, cfg.Session.RedisPrefix),
		hasher:    hasher,
		directory: b.directory,
		limiter: rate.New(b.redis, rate.Config{
			EnableIPThrottle:     cfg.Security.EnableIPThrottle,
			EnableRotateThrottle: cfg.Security.EnableRotateThrottle,
			MaxLoginAttempts:     cfg.Security.MaxLoginAttempts,
			LoginCooldown:        cfg.Security.LoginCooldown,
			MaxRotateAttempts:    cfg.Security.MaxRotateAttempts,
			RotateCooldown:       cfg.Security.RotateCooldown,
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true
	return svc, nil
}
