package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsPass(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty addr", mutate: func(c *Config) { c.Engine.Addr = "" }, wantErr: "engine.addr"},
		{name: "addr without port", mutate: func(c *Config) { c.Engine.Addr = "localhost" }, wantErr: "host:port"},
		{name: "zero connect timeout", mutate: func(c *Config) { c.Engine.ConnectTimeoutMS = 0 }, wantErr: "connect_timeout_ms"},
		{name: "negative reply timeout", mutate: func(c *Config) { c.Engine.ReplyTimeoutMS = -1 }, wantErr: "reply_timeout_ms"},
		{name: "zero receive buffer", mutate: func(c *Config) { c.Engine.ReceiveBufferBytes = 0 }, wantErr: "receive_buffer_bytes"},
		{name: "negative startup settle", mutate: func(c *Config) { c.Demo.StartupSettleMS = -5 }, wantErr: "startup_settle_ms"},
		{name: "negative load settle", mutate: func(c *Config) { c.Demo.LoadSettleMS = -5 }, wantErr: "load_settle_ms"},
		{name: "mid load above range", mutate: func(c *Config) { c.Demo.MidLoadPercent = 101 }, wantErr: "mid_load_percent"},
		{name: "restricted load below range", mutate: func(c *Config) { c.Demo.RestrictedLoadPercent = -1 }, wantErr: "restricted_load_percent"},
		{name: "zero watch interval", mutate: func(c *Config) { c.Watch.IntervalMS = 0 }, wantErr: "watch.interval_ms"},
		{name: "zero history limit", mutate: func(c *Config) { c.Shell.HistoryLimit = 0 }, wantErr: "shell.history_limit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnSmallReceiveBuffer(t *testing.T) {
	cfg := Default()
	cfg.Engine.ReceiveBufferBytes = 128

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "receive_buffer_bytes=128")
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	require.Equal(t, 5*time.Second, cfg.Engine.ConnectTimeout())
	require.Equal(t, 5*time.Second, cfg.Engine.ReplyTimeout())
	require.Equal(t, 3*time.Second, cfg.Demo.StartupSettle())
	require.Equal(t, 2*time.Second, cfg.Demo.LoadSettle())
	require.Equal(t, 2*time.Second, cfg.Watch.Interval())
}
