package scenario

import (
	"fmt"
	"time"

	"github.com/msevon/genctl/internal/engine"
)

// Step is one protocol exchange in a scripted sequence. Settle is the pause
// inserted after the reply, giving the engine time to work through the
// transient the command induced; no exchange happens during the wait.
type Step struct {
	Label   string
	Command engine.Command
	Settle  time.Duration
}

// DemoConfig carries the tunables of the demonstration sequence. A zero
// MidLoad or RestrictedLoad falls back to the reference setpoints 50 and
// 10. Settles are taken as given: zero means the sequence runs with no
// waits between steps, and the production defaults come from the caller's
// config.
type DemoConfig struct {
	StartupSettle  time.Duration
	LoadSettle     time.Duration
	MidLoad        int
	RestrictedLoad int
}

// DemoSteps builds the fixed demonstration workflow: baseline status, start
// with its startup settle, verification status, a mid-range setpoint with
// its settle, another verification, a setpoint the engine is expected to
// reject, stop, and the terminal status. The rejection is communicated in
// the reply payload, not as a transport failure, so the sequence continues
// through it.
func DemoSteps(cfg DemoConfig) []Step {
	if cfg.MidLoad == 0 {
		cfg.MidLoad = 50
	}
	if cfg.RestrictedLoad == 0 {
		cfg.RestrictedLoad = 10
	}

	return []Step{
		{Label: "initial status", Command: engine.Status()},
		{Label: "start generator", Command: engine.Start(), Settle: cfg.StartupSettle},
		{Label: "status after startup", Command: engine.Status()},
		{Label: fmt.Sprintf("set load to %d%%", cfg.MidLoad), Command: engine.SetLoad(cfg.MidLoad), Settle: cfg.LoadSettle},
		{Label: "status after load change", Command: engine.Status()},
		{Label: fmt.Sprintf("request restricted load of %d%%", cfg.RestrictedLoad), Command: engine.SetLoad(cfg.RestrictedLoad)},
		{Label: "stop generator", Command: engine.Stop()},
		{Label: "final status", Command: engine.Status()},
	}
}
