package adapter

import "fmt"

// ContextMonitor tracks conversation usage against a per-model context
// window and classifies it into a safe/warning/critical zone.
type ContextMonitor struct {
	contextWindow        int
	compressionThreshold float64
	warningThreshold     float64
}

// NewContextMonitor constructs a monitor with the default thresholds
// (compressionThreshold 0.95, warningThreshold 0.80).
func NewContextMonitor(contextWindow int) *ContextMonitor {
	return &ContextMonitor{
		contextWindow:        contextWindow,
		compressionThreshold: 0.95,
		warningThreshold:     0.80,
	}
}

// SetContextWindow updates the window, e.g. on model switch.
func (c *ContextMonitor) SetContextWindow(n int) { c.contextWindow = n }

// SetCompressionThreshold validates and sets the compression threshold.
// Values outside [0.5, 0.99] are a programmer error and are rejected.
func (c *ContextMonitor) SetCompressionThreshold(v float64) error {
	if v < 0.5 || v > 0.99 {
		return fmt.Errorf("compressionThreshold must be in [0.5, 0.99], got %v", v)
	}
	c.compressionThreshold = v
	return nil
}

// CompressionThreshold returns the current compression threshold.
func (c *ContextMonitor) CompressionThreshold() float64 { return c.compressionThreshold }

// SetWarningThreshold validates and sets the warning threshold, using the
// same programmer-error contract as the compression threshold.
func (c *ContextMonitor) SetWarningThreshold(v float64) error {
	if v < 0.5 || v > 0.99 {
		return fmt.Errorf("warningThreshold must be in [0.5, 0.99], got %v", v)
	}
	c.warningThreshold = v
	return nil
}

// WarningThreshold returns the current warning threshold.
func (c *ContextMonitor) WarningThreshold() float64 { return c.warningThreshold }

// Stats computes {tokens, limit, percentage, remaining, zone, shouldCompress}
// for the given conversation.
func (c *ContextMonitor) Stats(messages []Message) ContextStats {
	tokens := CountTotalTokens(messages)
	limit := c.contextWindow
	var pct float64
	if limit > 0 {
		pct = float64(tokens) / float64(limit)
	}
	remaining := limit - tokens
	if remaining < 0 {
		remaining = 0
	}

	zone := ZoneSafe
	switch {
	case pct >= c.compressionThreshold:
		zone = ZoneCritical
	case pct >= c.warningThreshold:
		zone = ZoneWarning
	}

	return ContextStats{
		Tokens:         tokens,
		Limit:          limit,
		Percentage:     pct,
		Remaining:      remaining,
		Zone:           zone,
		ShouldCompress: zone == ZoneCritical,
	}
}
