package vecdb

import (
	"log/slog"

	"github.com/hupe1980/vecdb/persistence"
)

type options struct {
	codec             persistence.Codec
	logger            *Logger
	metricsCollector  MetricsCollector
	parallelThreshold int
}

// Option configures Open behavior.
type Option func(*options)

// WithCodec configures the compression codec for snapshot files.
// The default is Zstd. Files written with any codec remain readable
// regardless of this setting; it only affects new saves.
func WithCodec(c persistence.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithParallelThreshold sets the collection size above which similarity
// scans fan out across CPU cores. Mostly useful to force serial scans in
// benchmarks; the default is tuned for typical embedding workloads.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		o.parallelThreshold = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            persistence.CodecZstd,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
