package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	addr := strings.TrimSpace(cfg.Engine.Addr)
	if addr == "" {
		return nil, fmt.Errorf("engine.addr must not be empty")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("engine.addr must be host:port: %v", err)
	}
	if cfg.Engine.ConnectTimeoutMS <= 0 {
		return nil, fmt.Errorf("engine.connect_timeout_ms must be > 0")
	}
	if cfg.Engine.ReplyTimeoutMS <= 0 {
		return nil, fmt.Errorf("engine.reply_timeout_ms must be > 0")
	}
	if cfg.Engine.ReceiveBufferBytes <= 0 {
		return nil, fmt.Errorf("engine.receive_buffer_bytes must be > 0")
	}
	if cfg.Demo.StartupSettleMS < 0 {
		return nil, fmt.Errorf("demo.startup_settle_ms must be >= 0")
	}
	if cfg.Demo.LoadSettleMS < 0 {
		return nil, fmt.Errorf("demo.load_settle_ms must be >= 0")
	}
	if cfg.Demo.MidLoadPercent < 0 || cfg.Demo.MidLoadPercent > 100 {
		return nil, fmt.Errorf("demo.mid_load_percent must be within 0..100")
	}
	if cfg.Demo.RestrictedLoadPercent < 0 || cfg.Demo.RestrictedLoadPercent > 100 {
		return nil, fmt.Errorf("demo.restricted_load_percent must be within 0..100")
	}
	if cfg.Watch.IntervalMS <= 0 {
		return nil, fmt.Errorf("watch.interval_ms must be > 0")
	}
	if cfg.Shell.HistoryLimit <= 0 {
		return nil, fmt.Errorf("shell.history_limit must be > 0")
	}

	// Status replies carry the full data envelope; a tiny receive buffer
	// silently truncates them into unstructured text.
	if cfg.Engine.ReceiveBufferBytes < 256 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("engine.receive_buffer_bytes=%d is small; replies may arrive truncated", cfg.Engine.ReceiveBufferBytes),
		})
	}

	return warnings, nil
}
