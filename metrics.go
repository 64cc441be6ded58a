package abase

import "github.com/ghitflux/abasev2/internal/metrics"

// Re-exported metric identifiers for reading [Manager.MetricsSnapshot].
type MetricID = metrics.ID

const (
	MetricLoginSuccess       MetricID = metrics.LoginSuccess
	MetricLoginFailure       MetricID = metrics.LoginFailure
	MetricLoginRateLimited   MetricID = metrics.LoginRateLimited
	MetricLoginLockedOut     MetricID = metrics.LoginLockedOut
	MetricValidateSuccess    MetricID = metrics.ValidateSuccess
	MetricValidateFailure    MetricID = metrics.ValidateFailure
	MetricRefreshSuccess     MetricID = metrics.RefreshSuccess
	MetricRefreshFailure     MetricID = metrics.RefreshFailure
	MetricTokenRevoked       MetricID = metrics.TokenRevoked
	MetricSessionCreated     MetricID = metrics.SessionCreated
	MetricSessionInvalidated MetricID = metrics.SessionInvalidated
	MetricUserProvisioned    MetricID = metrics.UserProvisioned
)
