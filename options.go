package passcheck

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxTimeDiff is the allowed gap between the encrypted date stamp
	// and the PDF modification date.
	DefaultMaxTimeDiff = 10 * time.Second

	// DefaultTrustedProducer is the application name whose submission
	// dates are trusted.
	DefaultTrustedProducer = "pass-cli-server"
)

// checkerConfig holds configuration for the checker.
type checkerConfig struct {
	maxTimeDiff     time.Duration
	lenient         bool
	flagIdentical   bool
	trustedProducer string
	concurrency     int

	masterKey MasterKey
	events    *EventTable
	opener    Opener

	warner         Warner
	logger         *slog.Logger
	metrics        *Metrics
	tracerProvider trace.TracerProvider
}

// Option configures the checker.
type Option func(*checkerConfig)

// WithMaxTimeDiff sets the allowed gap between the encrypted date stamp
// and the PDF modification date. It is compared in whole seconds.
// Default: 10 seconds
func WithMaxTimeDiff(d time.Duration) Option {
	return func(c *checkerConfig) {
		c.maxTimeDiff = d
	}
}

// WithLenientAttachments hashes attachments whose stream length differs
// from the declared size instead of leaving the checksum empty.
func WithLenientAttachments(lenient bool) Option {
	return func(c *checkerConfig) {
		c.lenient = lenient
	}
}

// WithFlagIdenticalChecksums makes CheckAll note records that share a
// decrypted or computed checksum with another record of the batch.
func WithFlagIdenticalChecksums(flag bool) Option {
	return func(c *checkerConfig) {
		c.flagIdentical = flag
	}
}

// WithTrustedProducer sets the application name whose submission dates
// are trusted.
// Default: "pass-cli-server"
func WithTrustedProducer(name string) Option {
	return func(c *checkerConfig) {
		c.trustedProducer = name
	}
}

// WithMasterKey sets the key used to unwrap per-document session keys.
// Required.
func WithMasterKey(mk MasterKey) Option {
	return func(c *checkerConfig) {
		c.masterKey = mk
	}
}

// WithEvents enables matching against the server's submission log.
func WithEvents(table *EventTable) Option {
	return func(c *checkerConfig) {
		c.events = table
	}
}

// WithOpener sets how Check and CheckAll turn paths into documents.
func WithOpener(o Opener) Option {
	return func(c *checkerConfig) {
		c.opener = o
	}
}

// WithWarner sets the receiver of operator-visible warnings.
// Default: warnings are logged through the checker's logger.
func WithWarner(w Warner) Option {
	return func(c *checkerConfig) {
		c.warner = w
	}
}

// WithLogger sets the logger.
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *checkerConfig) {
		c.logger = l
	}
}

// WithMetrics records checker metrics. See NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(c *checkerConfig) {
		c.metrics = m
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *checkerConfig) {
		c.tracerProvider = tp
	}
}

// WithConcurrency sets how many documents CheckAll checks at once.
// Values below 1 mean 1.
// Default: 1
func WithConcurrency(n int) Option {
	return func(c *checkerConfig) {
		c.concurrency = n
	}
}
