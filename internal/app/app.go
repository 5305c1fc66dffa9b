package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/msevon/genctl/internal/cli"
	"github.com/msevon/genctl/internal/config"
	"github.com/msevon/genctl/internal/console"
	"github.com/msevon/genctl/internal/doctor"
	"github.com/msevon/genctl/internal/engine"
	"github.com/msevon/genctl/internal/logging"
	"github.com/msevon/genctl/internal/scenario"
	"github.com/msevon/genctl/internal/shell"
	"github.com/msevon/genctl/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	// Stdin overrides the shell's input source. Leaving it nil keeps the
	// shell's own terminal detection in charge.
	Stdin  io.Reader
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("genctl"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("genctl"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	if parsed.Addr != "" {
		cfgLoaded.Config.Engine.Addr = parsed.Addr
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"addr", cfgLoaded.Config.Engine.Addr,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDemo:
		return r.commandDemo(ctx, cfgLoaded.Config, logger)
	case cli.CommandStatus:
		return r.commandOneShot(ctx, cfgLoaded.Config, logger, engine.Status())
	case cli.CommandStart:
		return r.commandOneShot(ctx, cfgLoaded.Config, logger, engine.Start())
	case cli.CommandStop:
		return r.commandOneShot(ctx, cfgLoaded.Config, logger, engine.Stop())
	case cli.CommandSetLoad:
		return r.commandOneShot(ctx, cfgLoaded.Config, logger, engine.SetLoad(parsed.LoadPercent))
	case cli.CommandWatch:
		return r.commandWatch(ctx, cfgLoaded.Config, logger, parsed.Interval)
	case cli.CommandShell:
		return r.commandShell(ctx, cfgLoaded.Config, logger)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandDemo runs the scripted demonstration sequence. Step failures are
// part of the printed report; only a failed connection or a failed step
// makes the run nonzero.
func (r Runner) commandDemo(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	session := newSession(cfg, logger)
	printer := console.NewPrinter(r.Stdout)
	steps := scenario.DemoSteps(scenario.DemoConfig{
		StartupSettle:  cfg.Demo.StartupSettle(),
		LoadSettle:     cfg.Demo.LoadSettle(),
		MidLoad:        cfg.Demo.MidLoadPercent,
		RestrictedLoad: cfg.Demo.RestrictedLoadPercent,
	})
	runner := scenario.NewRunner(session, steps, printer, logger)

	printer.Banner(session.Addr())
	report := runner.Run(ctx)
	printer.Summary(report)

	if report.ConnectErr != nil || report.StepErrors() > 0 {
		return 1
	}
	return 0
}

// commandOneShot runs a single connect/exchange/close round. A refused
// command prints the engine's reason and exits nonzero so scripts can
// branch on it.
func (r Runner) commandOneShot(ctx context.Context, cfg config.Config, logger *slog.Logger, cmd engine.Command) int {
	session := newSession(cfg, logger)
	if err := session.Connect(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = session.Close() }()

	reply, err := session.Send(ctx, cmd)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	console.NewPrinter(r.Stdout).Reply(reply)
	if reply.Rejected() {
		return 1
	}
	return 0
}

// commandWatch polls status over one connection until the context ends.
// A reply timeout is reported and polling continues; a dead connection
// ends the watch.
func (r Runner) commandWatch(ctx context.Context, cfg config.Config, logger *slog.Logger, interval time.Duration) int {
	if interval <= 0 {
		interval = cfg.Watch.Interval()
	}

	session := newSession(cfg, logger)
	if err := session.Connect(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = session.Close() }()

	printer := console.NewPrinter(r.Stdout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		reply, err := session.Send(ctx, engine.Status())
		switch {
		case err == nil:
			printer.Reply(reply)
		case errors.Is(err, engine.ErrReplyTimeout):
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
		default:
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}

		select {
		case <-ctx.Done():
			return 0
		case <-ticker.C:
		}
	}
}

func (r Runner) commandShell(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	historyFile, err := shell.HistoryPath()
	if err != nil {
		logger.Warn("shell history disabled", "error", err.Error())
		historyFile = ""
	}

	sh := shell.New(shell.Config{
		Session:      newSession(cfg, logger),
		Input:        r.Stdin,
		Output:       r.Stdout,
		HistoryFile:  historyFile,
		HistoryLimit: cfg.Shell.HistoryLimit,
		Logger:       logger,
	})
	if err := sh.Run(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newSession(cfg config.Config, logger *slog.Logger) *engine.Session {
	return engine.New(engine.Config{
		Addr:           cfg.Engine.Addr,
		ConnectTimeout: cfg.Engine.ConnectTimeout(),
		ReplyTimeout:   cfg.Engine.ReplyTimeout(),
		ReceiveBuffer:  cfg.Engine.ReceiveBufferBytes,
		Logger:         logger,
	})
}
