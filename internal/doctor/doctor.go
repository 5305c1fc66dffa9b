// Package doctor runs readiness diagnostics for config and engine connectivity.
package doctor

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/msevon/genctl/internal/config"
	"github.com/msevon/genctl/internal/engine"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config and engine checks for a loaded config. Network checks
// are skipped when the address is malformed, so the report never carries a
// dial failure whose real cause is a config typo.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	addrCheck := checkAddr(cfg.Config.Engine.Addr)
	checks = append(checks, addrCheck)
	if !addrCheck.Pass {
		return Report{Checks: checks}
	}

	reachCheck := checkReachable(ctx, cfg.Config.Engine)
	checks = append(checks, reachCheck)
	if !reachCheck.Pass {
		return Report{Checks: checks}
	}

	checks = append(checks, checkStatusRoundTrip(ctx, cfg.Config.Engine))
	return Report{Checks: checks}
}

// checkAddr validates the engine address shape without touching the network.
func checkAddr(addr string) Check {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return Check{Name: "engine.addr", Pass: false, Message: "engine.addr is empty"}
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Check{Name: "engine.addr", Pass: false, Message: fmt.Sprintf("not host:port: %v", err)}
	}
	if host == "" || port == "" {
		return Check{Name: "engine.addr", Pass: false, Message: "host and port must both be set"}
	}

	return Check{Name: "engine.addr", Pass: true, Message: fmt.Sprintf("%s is well-formed", addr)}
}

// checkReachable probes the TCP listener without speaking the protocol.
func checkReachable(ctx context.Context, cfg config.EngineConfig) Check {
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout()}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return Check{Name: "engine.reachable", Pass: false, Message: fmt.Sprintf("dial failed: %v", err)}
	}
	_ = conn.Close()

	return Check{Name: "engine.reachable", Pass: true, Message: fmt.Sprintf("accepting connections at %s", cfg.Addr)}
}

// checkStatusRoundTrip runs one live status exchange end to end.
func checkStatusRoundTrip(ctx context.Context, cfg config.EngineConfig) Check {
	session := engine.New(engine.Config{
		Addr:           cfg.Addr,
		ConnectTimeout: cfg.ConnectTimeout(),
		ReplyTimeout:   cfg.ReplyTimeout(),
		ReceiveBuffer:  cfg.ReceiveBufferBytes,
	})
	if err := session.Connect(ctx); err != nil {
		return Check{Name: "engine.status", Pass: false, Message: err.Error()}
	}
	defer func() { _ = session.Close() }()

	reply, err := session.Send(ctx, engine.Status())
	if err != nil {
		return Check{Name: "engine.status", Pass: false, Message: fmt.Sprintf("status exchange failed: %v", err)}
	}
	if !reply.Structured() {
		return Check{Name: "engine.status", Pass: true, Message: fmt.Sprintf("engine answered with unstructured text %q", reply.Text())}
	}
	if reply.Rejected() {
		return Check{Name: "engine.status", Pass: false, Message: fmt.Sprintf("engine refused status: %s", reply.Message())}
	}

	return Check{Name: "engine.status", Pass: true, Message: "status round-trip decoded"}
}
