package sessionauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/cdi-dev/sessionauth/cipher"
	"github.com/cdi-dev/sessionauth/jwt"
	"github.com/cdi-dev/sessionauth/session"
)

/*==== BUILDER ====*/

// Builder assembles an Engine. Configure it with the With* methods, then call
// Build exactly once.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	users     UserStore
	auditSink AuditSink
	built     bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the session index.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the credential store.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithAuditSink sets the sink audit events are dispatched to. Defaults to
// NoOpSink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Engine. The Builder is
// single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("sessionauth: builder already used")
	}
	b.built = true

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("sessionauth: redis client is required")
	}
	if b.users == nil {
		return nil, errors.New("sessionauth: user store is required")
	}

	cfg := cloneConfig(b.config)

	c, err := cipher.New(cfg.Cipher.Key)
	if err != nil {
		return nil, err
	}

	manager, err := jwt.NewManager(jwt.Config{
		Secret:        cfg.JWT.Secret,
		SigningMethod: jwt.SigningMethod(cfg.JWT.Algorithm),
		TokenTTL:      cfg.JWT.TokenTTL,
	})
	if err != nil {
		return nil, err
	}

	sink := b.auditSink
	if sink == nil {
		sink = NoOpSink{}
	}

	return &Engine{
		config:     cfg,
		cipher:     c,
		jwtManager: manager,
		sessions:   session.NewIndex(b.redis, cfg.Session.RedisPrefix),
		users:      b.users,
		audit:      newAuditDispatcher(cfg.Audit, sink),
		metrics:    NewMetrics(cfg.Metrics),
	}, nil
}
