package abase

import "time"

// JWTConfig holds the signing parameters for first-party tokens.
type JWTConfig struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Leeway tolerated when validating token timestamps.
	Leeway time.Duration
}

// OIDCConfig holds the external identity provider settings.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// HTTPTimeout bounds discovery and token-exchange requests.
	HTTPTimeout time.Duration
}

// SessionConfig tunes the Redis-backed session store.
type SessionConfig struct {
	// RedisPrefix namespaces every key this module writes.
	RedisPrefix string
}

// SecurityConfig tunes the login guardrails.
type SecurityConfig struct {
	// MaxLoginAttempts is the failure count at which an identifier locks.
	MaxLoginAttempts int
	// LockoutDuration is both the failure-counting window and the lock
	// duration once the threshold is reached.
	LockoutDuration time.Duration
	// DisableLoginThrottle turns the per-identifier login rate limit off.
	// The throttle is on by default.
	DisableLoginThrottle bool
	LoginRateLimit       int
	LoginRateWindow      time.Duration
}

// AccountConfig controls provisioning of users created on first OIDC login.
type AccountConfig struct {
	DefaultRole string
}

// AuditConfig tunes the asynchronous audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// BlockIfFull makes Emit wait for buffer space instead of discarding
	// events under backpressure. Off by default: a congested audit pipeline
	// must not stall the authentication path.
	BlockIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	// Disabled turns the counters into no-ops. They are on by default.
	Disabled bool
}

// Config is the full configuration tree of a [Manager]. Zero-valued fields
// fall back to the defaults; only JWT.Secret is mandatory. Features that are
// on by default expose inverted toggles (DisableLoginThrottle,
// Metrics.Disabled, Audit.BlockIfFull), so the zero value of each field is
// always the default posture.
type Config struct {
	JWT      JWTConfig
	OIDC     OIDCConfig
	Session  SessionConfig
	Security SecurityConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:     "abase-manager",
			Audience:   "abase-api",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Leeway:     30 * time.Second,
		},
		OIDC: OIDCConfig{
			HTTPTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			RedisPrefix: "abase:",
		},
		Security: SecurityConfig{
			MaxLoginAttempts: 5,
			LockoutDuration:  30 * time.Minute,
			LoginRateLimit:   60,
			LoginRateWindow:  time.Minute,
		},
		Account: AccountConfig{
			DefaultRole: "AGENTE",
		},
		Audit: AuditConfig{
			BufferSize: 256,
		},
	}
}

// withDefaults fills zero-valued fields of cfg from the defaults, so a
// caller only sets what deviates.
func withDefaults(cfg Config) Config {
	def := defaultConfig()

	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = def.JWT.Issuer
	}
	if cfg.JWT.Audience == "" {
		cfg.JWT.Audience = def.JWT.Audience
	}
	if cfg.JWT.AccessTTL <= 0 {
		cfg.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if cfg.JWT.RefreshTTL <= 0 {
		cfg.JWT.RefreshTTL = def.JWT.RefreshTTL
	}
	if cfg.JWT.Leeway <= 0 {
		cfg.JWT.Leeway = def.JWT.Leeway
	}
	if cfg.OIDC.HTTPTimeout <= 0 {
		cfg.OIDC.HTTPTimeout = def.OIDC.HTTPTimeout
	}
	if cfg.Session.RedisPrefix == "" {
		cfg.Session.RedisPrefix = def.Session.RedisPrefix
	}
	if cfg.Security.MaxLoginAttempts <= 0 {
		cfg.Security.MaxLoginAttempts = def.Security.MaxLoginAttempts
	}
	if cfg.Security.LockoutDuration <= 0 {
		cfg.Security.LockoutDuration = def.Security.LockoutDuration
	}
	if cfg.Security.LoginRateLimit <= 0 {
		cfg.Security.LoginRateLimit = def.Security.LoginRateLimit
	}
	if cfg.Security.LoginRateWindow <= 0 {
		cfg.Security.LoginRateWindow = def.Security.LoginRateWindow
	}
	if cfg.Account.DefaultRole == "" {
		cfg.Account.DefaultRole = def.Account.DefaultRole
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}

	return cfg
}
