package passcheck

import (
	"context"
	"log/slog"
	"sync"
)

// Warner receives operator-visible warnings. Implementations must be safe
// for concurrent use when the checker runs with more than one worker.
type Warner interface {
	Warn(w Warning)
}

// WarnerFunc adapts a function to the Warner interface.
type WarnerFunc func(w Warning)

// Warn implements Warner.
func (f WarnerFunc) Warn(w Warning) { f(w) }

// slogWarner logs warnings through a slog.Logger.
type slogWarner struct {
	log *slog.Logger
}

func (s slogWarner) Warn(w Warning) {
	level := slog.LevelWarn
	if w.Severity == SeverityError {
		level = slog.LevelError
	}
	s.log.Log(context.Background(), level, w.Message,
		"file", w.File,
		"code", w.Code,
		"severity", w.Severity.String(),
	)
}

// WarningCollector is a Warner that keeps every warning in memory.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
}

// Warn implements Warner.
func (c *WarningCollector) Warn(w Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, w)
}

// Warnings returns a copy of the collected warnings in arrival order.
func (c *WarningCollector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}
