// Package scenario drives scripted command sequences against a generator
// engine session and collects the outcome of every exchange. The runner
// owns the session lifecycle for the duration of a run: it connects,
// walks the steps, and closes the session exactly once on every exit
// path. Individual step failures are recorded and the sequence moves on;
// only a failed connect aborts the run before the first command.
package scenario

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/msevon/genctl/internal/engine"
)

// Session is the runner-facing subset of an engine session.
type Session interface {
	Addr() string
	Connect(ctx context.Context) error
	Send(ctx context.Context, cmd engine.Command) (engine.Reply, error)
	Close() error
}

// StepResult records one completed exchange. Reply is meaningful only when
// Err is nil; a rejection reported inside the reply payload is not an Err.
type StepResult struct {
	Seq     int
	Label   string
	Command engine.Command
	Reply   engine.Reply
	Err     error
	Elapsed time.Duration
	At      time.Time
}

// Failed reports whether the exchange itself broke down. Engine-side
// rejections land in Reply and leave Failed false.
func (r StepResult) Failed() bool {
	return r.Err != nil
}

// Report is the full outcome of one run.
type Report struct {
	RunID       string
	Addr        string
	StartedAt   time.Time
	FinishedAt  time.Time
	Steps       []StepResult
	Interrupted bool
	ConnectErr  error
}

// StepErrors counts the steps whose exchange failed.
func (r Report) StepErrors() int {
	n := 0
	for _, s := range r.Steps {
		if s.Failed() {
			n++
		}
	}
	return n
}

// Observer receives progress events as a run advances. StepDone fires
// after every exchange, before the next one begins.
type Observer interface {
	StepDone(res StepResult)
	SettleWait(d time.Duration)
}

type noopObserver struct{}

func (noopObserver) StepDone(StepResult)      {}
func (noopObserver) SettleWait(time.Duration) {}

// Runner executes one scripted sequence against one session.
type Runner struct {
	session  Session
	steps    []Step
	observer Observer
	logger   *slog.Logger
}

// NewRunner wires a runner. A nil observer disables progress events and a
// nil logger discards log output.
func NewRunner(session Session, steps []Step, observer Observer, logger *slog.Logger) *Runner {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		session:  session,
		steps:    steps,
		observer: observer,
		logger:   logger,
	}
}

// Run connects the session and walks the sequence. A connect failure
// returns a report carrying ConnectErr with no steps attempted. After a
// successful connect every step is attempted in order regardless of
// earlier step errors; cancellation is honored between steps and during
// settle waits and marks the report Interrupted. The session is closed
// before Run returns, on every path that reached a connect.
func (r *Runner) Run(ctx context.Context) Report {
	report := Report{
		RunID:     uuid.NewString(),
		Addr:      r.session.Addr(),
		StartedAt: time.Now(),
	}

	log := r.logger.With("run_id", report.RunID, "addr", report.Addr)
	log.Info("run starting", "steps", len(r.steps))

	if err := r.session.Connect(ctx); err != nil {
		report.ConnectErr = err
		report.FinishedAt = time.Now()
		log.Error("connect failed", "error", err)
		return report
	}
	defer func() {
		if err := r.session.Close(); err != nil {
			log.Warn("session close failed", "error", err)
		}
	}()

	for i, step := range r.steps {
		if ctx.Err() != nil {
			report.Interrupted = true
			log.Warn("run interrupted", "completed_steps", len(report.Steps))
			break
		}

		res := r.exchange(ctx, log, i+1, step)
		report.Steps = append(report.Steps, res)
		r.observer.StepDone(res)

		if step.Settle > 0 && i < len(r.steps)-1 {
			r.observer.SettleWait(step.Settle)
			if !sleepCtx(ctx, step.Settle) {
				report.Interrupted = true
				log.Warn("run interrupted during settle", "completed_steps", len(report.Steps))
				break
			}
		}
	}

	report.FinishedAt = time.Now()
	log.Info("run finished",
		"steps", len(report.Steps),
		"step_errors", report.StepErrors(),
		"interrupted", report.Interrupted)
	return report
}

func (r *Runner) exchange(ctx context.Context, log *slog.Logger, seq int, step Step) StepResult {
	start := time.Now()
	reply, err := r.session.Send(ctx, step.Command)
	res := StepResult{
		Seq:     seq,
		Label:   step.Label,
		Command: step.Command,
		Reply:   reply,
		Err:     err,
		Elapsed: time.Since(start),
		At:      start,
	}
	if err != nil {
		log.Error("step failed", "seq", seq, "label", step.Label, "error", err)
	} else {
		log.Debug("step done", "seq", seq, "label", step.Label, "elapsed", res.Elapsed)
	}
	return res
}

// sleepCtx waits for d and reports false if ctx was canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
