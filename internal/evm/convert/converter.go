// Package convert projects canonical EVM objects into JSON-RPC wire objects for a fixed variant.
//
// A Converter holds no mutable state and performs no I/O, so a single value may be shared by any
// number of goroutines.
package convert

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Converter produces wire objects for one variant.
type Converter struct {
	variant Variant
	logger  *zap.Logger
	metrics Metrics
}

// Option customizes a Converter.
type Option func(*Converter)

// WithLogger sets the logger used to report invariant violations.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the collector observing every top-level conversion.
func WithMetrics(metrics Metrics) Option {
	return func(c *Converter) {
		c.metrics = metrics
	}
}

// New constructs a Converter for variant.
func New(variant Variant, opts ...Option) (*Converter, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("unsupported variant %s", variant)
	}
	c := &Converter{
		variant: variant,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Variant returns the wire family the converter produces.
func (c *Converter) Variant() Variant {
	return c.variant
}

func (c *Converter) observe(operation string, err error, started time.Time) {
	if err != nil && IsInvariant(err) {
		c.logger.Warn("conversion invariant violated",
			zap.String("operation", operation),
			zap.Stringer("variant", c.variant),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
	}
	if c.metrics != nil {
		c.metrics.Observe(operation, err, started)
	}
}
