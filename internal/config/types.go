// Package config resolves, parses, validates, and defaults genctl configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by genctl.
type Config struct {
	Engine EngineConfig
	Demo   DemoConfig
	Watch  WatchConfig
	Shell  ShellConfig
}

// EngineConfig controls the TCP session with the generator engine.
type EngineConfig struct {
	Addr               string
	ConnectTimeoutMS   int
	ReplyTimeoutMS     int
	ReceiveBufferBytes int
}

// ConnectTimeout returns the dial budget as a duration.
func (e EngineConfig) ConnectTimeout() time.Duration {
	return time.Duration(e.ConnectTimeoutMS) * time.Millisecond
}

// ReplyTimeout returns the per-command reply budget as a duration.
func (e EngineConfig) ReplyTimeout() time.Duration {
	return time.Duration(e.ReplyTimeoutMS) * time.Millisecond
}

// DemoConfig controls the demonstration sequence pacing and setpoints.
type DemoConfig struct {
	StartupSettleMS       int
	LoadSettleMS          int
	MidLoadPercent        int
	RestrictedLoadPercent int
}

// StartupSettle returns the post-start pause as a duration.
func (d DemoConfig) StartupSettle() time.Duration {
	return time.Duration(d.StartupSettleMS) * time.Millisecond
}

// LoadSettle returns the post-setpoint pause as a duration.
func (d DemoConfig) LoadSettle() time.Duration {
	return time.Duration(d.LoadSettleMS) * time.Millisecond
}

// WatchConfig controls periodic status polling.
type WatchConfig struct {
	IntervalMS int
}

// Interval returns the polling period as a duration.
func (w WatchConfig) Interval() time.Duration {
	return time.Duration(w.IntervalMS) * time.Millisecond
}

// ShellConfig controls the interactive shell.
type ShellConfig struct {
	HistoryLimit int
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
