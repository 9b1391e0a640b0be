package graphwalk

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Option configures optional Bfs/Dfs behavior, mirroring the functional
// option style used for pool configuration elsewhere in this codebase's
// lineage (WithFailFast, WithBufferSize).
type Option func(*engineConfig)

type engineConfig struct {
	logger *zap.Logger
	tracer trace.Tracer
}

func newEngineConfig(opts []Option) *engineConfig {
	cfg := &engineConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger attaches a zap logger used to emit debug-level traversal
// diagnostics (depth transitions, visited-set hits, surfaced errors).
// Traversal is silent by default; pass this to observe it.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer attaches an OpenTelemetry tracer. When set, every
// expansion-future the engine schedules is wrapped in a span covering the
// time from submission to resolution. Unset by default, so the engines
// carry no tracing overhead unless a caller opts in.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *engineConfig) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}
