package session

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/reglet-dev/sensecore/domain/entities"
)

const tracerName = "github.com/reglet-dev/sensecore/session"

type serviceConfig struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	version  entities.Version
	options  uint32
	builtins bool
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		version:  entities.SDKVersion,
		builtins: true,
	}
}

// Option configures a Service.
type Option func(*serviceConfig)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *serviceConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer the trace hooks report to.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *serviceConfig) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithVersion sets the interface version the session provides.
func WithVersion(v entities.Version) Option {
	return func(c *serviceConfig) {
		c.version = v
	}
}

// WithOptions records the creation options passed by the loader.
func WithOptions(options uint32) Option {
	return func(c *serviceConfig) {
		c.options = options
	}
}

// WithoutBuiltins skips loading the core export table.
func WithoutBuiltins() Option {
	return func(c *serviceConfig) {
		c.builtins = false
	}
}
