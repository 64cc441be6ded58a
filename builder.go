package abase

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/ghitflux/abasev2/internal/audit"
	"github.com/ghitflux/abasev2/internal/guard"
	"github.com/ghitflux/abasev2/internal/metrics"
	"github.com/ghitflux/abasev2/session"
	"github.com/ghitflux/abasev2/token"
)

// Builder assembles a [Manager]. Each Builder builds at most once.
type Builder struct {
	config     Config
	configSet  bool
	redis      redis.UniversalClient
	directory  UserDirectory
	auditSink  audit.Sink
	httpClient *http.Client
	built      bool
}

// New starts a builder with the default configuration.
func New() *Builder {
	return &Builder{}
}

// WithConfig overrides the configuration. Zero-valued fields keep their
// defaults; only JWT.Secret has no default and must be provided.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.configSet = true
	return b
}

// WithRedis sets the Redis client backing sessions, refresh bindings,
// revocation markers and guardrail counters.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory sets the user persistence boundary.
func (b *Builder) WithDirectory(directory UserDirectory) *Builder {
	b.directory = directory
	return b
}

// WithAuditSink sets where audit events are delivered. Ignored unless
// auditing is enabled in the configuration.
func (b *Builder) WithAuditSink(sink audit.Sink) *Builder {
	b.auditSink = sink
	return b
}

// WithHTTPClient overrides the HTTP client used for OIDC discovery and
// token exchange. Defaults to a client bounded by OIDC.HTTPTimeout.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// Build validates the wiring and constructs the manager.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, fmt.Errorf("%w: builder already used", ErrConfiguration)
	}
	b.built = true

	cfg := b.config
	if !b.configSet {
		cfg = defaultConfig()
	} else {
		cfg = withDefaults(cfg)
	}

	if len(cfg.JWT.Secret) == 0 {
		return nil, fmt.Errorf("%w: JWT secret is required", ErrConfiguration)
	}
	if b.redis == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrConfiguration)
	}
	if b.directory == nil {
		return nil, fmt.Errorf("%w: user directory is required", ErrConfiguration)
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.OIDC.HTTPTimeout}
	}

	codec := token.NewCodec(token.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Leeway:   cfg.JWT.Leeway,
	})
	store := session.NewStore(b.redis, cfg.Session.RedisPrefix)
	lockout := guard.NewLockout(b.redis, cfg.Session.RedisPrefix, guard.LockoutConfig{
		Threshold: cfg.Security.MaxLoginAttempts,
		Window:    cfg.Security.LockoutDuration,
	})
	limiter := guard.NewRateLimiter(b.redis, cfg.Session.RedisPrefix)

	tokens := &tokenStrategy{
		codec:      codec,
		store:      store,
		directory:  b.directory,
		accessTTL:  cfg.JWT.AccessTTL,
		refreshTTL: cfg.JWT.RefreshTTL,
	}

	m := &Manager{
		config:    cfg,
		codec:     codec,
		store:     store,
		directory: b.directory,
		limiter:   limiter,
		lockout:   lockout,
		tokens:    tokens,
		local: &localStrategy{
			delegate:  tokens,
			directory: b.directory,
			lockout:   lockout,
		},
		oidc: &oidcStrategy{
			config:     cfg.OIDC,
			httpClient: httpClient,
		},
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: !cfg.Audit.BlockIfFull,
		}, b.auditSink),
		metrics: metrics.New(!cfg.Metrics.Disabled),
	}

	return m, nil
}
