package scenario

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/msevon/genctl/internal/engine"
	"github.com/msevon/genctl/internal/enginetest"
	"github.com/msevon/genctl/internal/fsm"
)

type fakeSession struct {
	addr       string
	connectErr error
	sendFn     func(cmd engine.Command) (engine.Reply, error)
	sent       []engine.Command
	closeCalls int
}

func (f *fakeSession) Addr() string { return f.addr }

func (f *fakeSession) Connect(ctx context.Context) error { return f.connectErr }

func (f *fakeSession) Send(ctx context.Context, cmd engine.Command) (engine.Reply, error) {
	f.sent = append(f.sent, cmd)
	if f.sendFn != nil {
		return f.sendFn(cmd)
	}
	return engine.DecodeReply([]byte(`{"status":"success"}`)), nil
}

func (f *fakeSession) Close() error {
	f.closeCalls++
	return nil
}

type collectObserver struct {
	results []StepResult
	waits   []time.Duration
	onStep  func(res StepResult)
	onWait  func(d time.Duration)
}

func (c *collectObserver) StepDone(res StepResult) {
	c.results = append(c.results, res)
	if c.onStep != nil {
		c.onStep(res)
	}
}

func (c *collectObserver) SettleWait(d time.Duration) {
	c.waits = append(c.waits, d)
	if c.onWait != nil {
		c.onWait(d)
	}
}

func TestDemoStepsSequence(t *testing.T) {
	steps := DemoSteps(DemoConfig{
		StartupSettle: 3 * time.Second,
		LoadSettle:    2 * time.Second,
	})

	var commands []string
	for _, s := range steps {
		commands = append(commands, string(s.Command))
	}
	require.Equal(t, []string{
		"status",
		"start",
		"status",
		"set_load 50",
		"status",
		"set_load 10",
		"stop",
		"status",
	}, commands)

	require.Equal(t, 3*time.Second, steps[1].Settle)
	require.Equal(t, 2*time.Second, steps[3].Settle)
	for i, s := range steps {
		if i == 1 || i == 3 {
			continue
		}
		require.Zero(t, s.Settle, "step %d should not settle", i+1)
	}
}

func TestDemoStepsHonorsLoadOverrides(t *testing.T) {
	steps := DemoSteps(DemoConfig{MidLoad: 75, RestrictedLoad: 5})
	require.Equal(t, engine.Command("set_load 75"), steps[3].Command)
	require.Equal(t, engine.Command("set_load 5"), steps[5].Command)
}

func TestDemoStepsZeroValueConfig(t *testing.T) {
	steps := DemoSteps(DemoConfig{})

	require.Equal(t, engine.Command("set_load 50"), steps[3].Command)
	require.Equal(t, engine.Command("set_load 10"), steps[5].Command)
	for i, s := range steps {
		require.Zero(t, s.Settle, "step %d should not settle", i+1)
	}
}

func TestRunExecutesFullSequenceAgainstSimulator(t *testing.T) {
	stub, err := enginetest.Start(nil)
	require.NoError(t, err)
	defer stub.Close()

	session := engine.New(engine.Config{Addr: stub.Addr()})
	observer := &collectObserver{}
	steps := DemoSteps(DemoConfig{
		StartupSettle: time.Millisecond,
		LoadSettle:    time.Millisecond,
	})
	runner := NewRunner(session, steps, observer, nil)

	report := runner.Run(context.Background())

	require.NoError(t, report.ConnectErr)
	require.False(t, report.Interrupted)
	require.Len(t, report.Steps, 8)
	require.Zero(t, report.StepErrors())
	require.NotEmpty(t, report.RunID)
	require.Equal(t, stub.Addr(), report.Addr)
	require.False(t, report.FinishedAt.Before(report.StartedAt))

	require.Equal(t, []string{
		"status",
		"start",
		"status",
		"set_load 50",
		"status",
		"set_load 10",
		"stop",
		"status",
	}, stub.Commands())

	// The restricted setpoint is refused in-band, not as a step error.
	restricted := report.Steps[5]
	require.NoError(t, restricted.Err)
	require.True(t, restricted.Reply.Rejected())
	require.Contains(t, restricted.Reply.Message(), "at least 20%")

	verify := report.Steps[4]
	require.NoError(t, verify.Err)
	data := verify.Reply.Data()
	require.Equal(t, "running", data["state"])
	require.Equal(t, float64(50), data["load"])

	final := report.Steps[7]
	require.Equal(t, "stopped", final.Reply.Data()["state"])

	require.Len(t, observer.results, 8)
	require.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, observer.waits)
	require.Equal(t, fsm.StateClosed, session.State())
}

func TestRunConnectFailureAbortsBeforeAnyCommand(t *testing.T) {
	boom := &engine.ConnectError{Addr: "localhost:9", Err: errors.New("connection refused")}
	session := &fakeSession{addr: "localhost:9", connectErr: boom}
	observer := &collectObserver{}
	runner := NewRunner(session, DemoSteps(DemoConfig{}), observer, nil)

	report := runner.Run(context.Background())

	require.ErrorIs(t, report.ConnectErr, boom)
	require.Empty(t, report.Steps)
	require.Empty(t, observer.results)
	require.Empty(t, session.sent)
	require.Zero(t, session.closeCalls, "a session that never connected must not be closed")
}

func TestRunContinuesPastStepErrors(t *testing.T) {
	session := &fakeSession{addr: "localhost:8081"}
	session.sendFn = func(cmd engine.Command) (engine.Reply, error) {
		if cmd == engine.Start() {
			return engine.Reply{}, fmt.Errorf("send %q: %w", cmd, errors.New("broken pipe"))
		}
		return engine.DecodeReply([]byte(`{"status":"success"}`)), nil
	}
	steps := DemoSteps(DemoConfig{})
	runner := NewRunner(session, steps, nil, nil)

	report := runner.Run(context.Background())

	require.Len(t, report.Steps, len(steps), "sequence must continue past a failed step")
	require.Equal(t, 1, report.StepErrors())
	require.True(t, report.Steps[1].Failed())
	require.False(t, report.Interrupted)
	require.Equal(t, 1, session.closeCalls)
}

func TestRunInterruptedBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := &fakeSession{addr: "localhost:8081"}
	observer := &collectObserver{}
	observer.onStep = func(res StepResult) {
		if res.Seq == 4 {
			cancel()
		}
	}
	steps := DemoSteps(DemoConfig{})
	runner := NewRunner(session, steps, observer, nil)

	report := runner.Run(ctx)

	require.True(t, report.Interrupted)
	require.Len(t, report.Steps, 4, "no step after the cancellation point may run")
	require.Len(t, session.sent, 4)
	require.Equal(t, 1, session.closeCalls, "session must be closed exactly once")
}

func TestRunInterruptedDuringSettle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := &fakeSession{addr: "localhost:8081"}
	observer := &collectObserver{}
	observer.onWait = func(time.Duration) { cancel() }
	steps := []Step{
		{Label: "start generator", Command: engine.Start(), Settle: 10 * time.Second},
		{Label: "status after startup", Command: engine.Status()},
	}
	runner := NewRunner(session, steps, observer, nil)

	start := time.Now()
	report := runner.Run(ctx)

	require.True(t, report.Interrupted)
	require.Len(t, report.Steps, 1)
	require.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the settle wait short")
	require.Equal(t, 1, session.closeCalls)
}

func TestRunReportsEachStepBeforeTheNextBegins(t *testing.T) {
	var trace []string
	session := &fakeSession{addr: "localhost:8081"}
	session.sendFn = func(cmd engine.Command) (engine.Reply, error) {
		trace = append(trace, "send "+string(cmd))
		return engine.DecodeReply([]byte(`{"status":"success"}`)), nil
	}
	observer := &collectObserver{}
	observer.onStep = func(res StepResult) {
		trace = append(trace, fmt.Sprintf("done %d", res.Seq))
	}
	steps := []Step{
		{Label: "first", Command: engine.Status()},
		{Label: "second", Command: engine.Start()},
		{Label: "third", Command: engine.Stop()},
	}
	runner := NewRunner(session, steps, observer, nil)

	report := runner.Run(context.Background())

	require.Zero(t, report.StepErrors())
	require.Equal(t, []string{
		"send status", "done 1",
		"send start", "done 2",
		"send stop", "done 3",
	}, trace)
}

func TestRunSkipsSettleAfterFinalStep(t *testing.T) {
	session := &fakeSession{addr: "localhost:8081"}
	observer := &collectObserver{}
	steps := []Step{
		{Label: "only", Command: engine.Status(), Settle: 10 * time.Second},
	}
	runner := NewRunner(session, steps, observer, nil)

	start := time.Now()
	report := runner.Run(context.Background())

	require.Len(t, report.Steps, 1)
	require.Empty(t, observer.waits)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestRunWithCanceledContextAttemptsNoSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := &fakeSession{addr: "localhost:8081"}
	runner := NewRunner(session, DemoSteps(DemoConfig{}), nil, nil)

	report := runner.Run(ctx)

	require.True(t, report.Interrupted)
	require.Empty(t, report.Steps)
	require.Equal(t, 1, session.closeCalls)
}
