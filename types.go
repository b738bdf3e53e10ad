package deepcopy

import (
	"reflect"

	"go.opentelemetry.io/otel/metric"
)

// Copier is a single strategy for producing an independent copy of values
// of one concrete type. Implementations receive the per-copy Context so
// they can preserve shared references and break cycles while recursing.
//
// A Copier is resolved at most once per type by the Pipeline and may be
// invoked concurrently from multiple goroutines; implementations must be
// stateless or internally synchronized.
type Copier interface {
	// Copy returns an independent copy of v, the original value unchanged
	// (identity copying), or an error if the type is not copyable.
	Copy(ctx *Context, v reflect.Value) (reflect.Value, error)
}

// CopierFactory produces a Copier for a type, or reports that it does not
// handle the type. Factories form the resolution chain of the Pipeline and
// run without any lock held, so they may be called concurrently and
// redundantly for the same uncached type.
type CopierFactory interface {
	CopierFor(t reflect.Type) (Copier, bool)
}

// CopierFactoryFunc adapts a plain function to the CopierFactory interface.
type CopierFactoryFunc func(t reflect.Type) (Copier, bool)

// CopierFor implements CopierFactory.
func (f CopierFactoryFunc) CopierFor(t reflect.Type) (Copier, bool) {
	return f(t)
}

// CopierFunc adapts a plain function to the Copier interface.
type CopierFunc func(ctx *Context, v reflect.Value) (reflect.Value, error)

// Copy implements Copier.
func (f CopierFunc) Copy(ctx *Context, v reflect.Value) (reflect.Value, error) {
	return f(ctx, v)
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used by the pipeline.
func WithLogger(logger Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSpecialFactory installs an application-specific factory as the first
// stage of the resolution chain. It is equivalent to calling
// SetSpecialFactory before the pipeline is used.
func WithSpecialFactory(f CopierFactory) Option {
	return func(p *Pipeline) {
		p.special = f
	}
}

// WithConfig applies a bootstrap configuration, extending the built-in
// exclusion, immutable, and container tables with type-name entries.
func WithConfig(cfg *Config) Option {
	return func(p *Pipeline) {
		p.cfg = cfg
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider used for the
// pipeline's cache and resolution counters. Defaults to the global
// provider, which is a no-op unless the application installs one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Pipeline) {
		p.meterProvider = mp
	}
}
