package appconfig

import (
	"errors"
	"time"

	"exusiai.dev/gateway-admin/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address for the admin HTTP API.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9030"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// LogFile is the path of the rotating log file. Leaving this empty disables file logging.
	LogFile string `split_words:"true" default:"logs/app.log"`

	LogFileMaxSizeMB  int `split_words:"true" default:"100"`
	LogFileMaxBackups int `split_words:"true" default:"5"`
	LogFileMaxAgeDays int `split_words:"true" default:"14"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, the program spins up pprof and fgprof
	// handlers and logs at trace level.
	DevMode bool `split_words:"true"`

	// TracingEnabled to indicate whether to enable OpenTelemetry tracing.
	TracingEnabled bool `split_words:"true"`

	// TracingExporters to indicate which exporters to use for tracing.
	// Valid values are: jaeger, otlp, stdout (for debug).
	TracingExporters []string `split_words:"true" default:"otlp"`

	// TracingSampleRate to indicate the sampling rate for tracing, between 0.0 and 1.0.
	TracingSampleRate float64 `split_words:"true" default:"1.0"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"60s"`

	// RedisURL is the URL of the Redis server holding both the gateway statistics and the
	// entity registry. See https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL.
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/0"`

	// RedisConnectAttempts is how many times the initial ping is attempted before giving up.
	RedisConnectAttempts uint `split_words:"true" default:"5"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// StatsCategory is the first segment of every statistics storage key.
	StatsCategory string `required:"true" split_words:"true" default:"stats"`

	// StatsResponseClasses is the ordered list of response classes queried when the caller
	// does not name any.
	StatsResponseClasses []string `required:"true" split_words:"true" default:"uncached,cached,error"`

	// StatsDefaultRange is how far before now the `from` bound lies when a query omits it.
	StatsDefaultRange time.Duration `split_words:"true" default:"10m"`

	// StatsKeyDelimiter joins statistics storage key segments. It must match the writer side.
	StatsKeyDelimiter string `split_words:"true" default:":"`

	// StatsMaxRangeDays caps the number of calendar days a single query may span. Zero disables the cap.
	StatsMaxRangeDays int `split_words:"true" default:"366"`

	// StatsQueryTimeout bounds a single statistics query. Zero leaves the deadline to the caller.
	StatsQueryTimeout time.Duration `split_words:"true" default:"0s"`

	// StatsBreakerFailures is the number of consecutive storage failures that opens the circuit breaker.
	StatsBreakerFailures uint32 `split_words:"true" default:"5"`

	// StatsBreakerTimeout is how long the circuit breaker stays open before probing the storage again.
	StatsBreakerTimeout time.Duration `split_words:"true" default:"30s"`

	// IdempotencyLifetime is how long a stored response for an idempotency key is replayed.
	IdempotencyLifetime time.Duration `split_words:"true" default:"24h"`

	// RegistryCacheTTL is how long entity records are kept in the in-process cache.
	RegistryCacheTTL time.Duration `split_words:"true" default:"30s"`
}

func (s *ConfigSpec) validate() error {
	if len(s.StatsResponseClasses) == 0 {
		return errors.New("STATS_RESPONSE_CLASSES must name at least one response class")
	}
	if s.StatsKeyDelimiter == "" {
		return errors.New("STATS_KEY_DELIMITER must not be empty")
	}
	if s.StatsDefaultRange < 0 {
		return errors.New("STATS_DEFAULT_RANGE must not be negative")
	}
	if s.TracingSampleRate < 0 || s.TracingSampleRate > 1 {
		return errors.New("TRACING_SAMPLE_RATE must lie between 0 and 1")
	}
	return nil
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
