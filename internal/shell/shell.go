// Package shell provides the interactive prompt bound to one engine session.
// Lines are forwarded to the engine verbatim, so the prompt accepts exactly
// what the wire protocol accepts; only help/quit/exit are handled locally.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/msevon/genctl/internal/console"
	"github.com/msevon/genctl/internal/engine"
)

const prompt = "genctl> "

// Config carries the shell's collaborators. Input defaults to os.Stdin and
// Output to os.Stdout; a non-nil Input forces the plain line-reading path.
type Config struct {
	Session      *engine.Session
	Input        io.Reader
	Output       io.Writer
	HistoryFile  string
	HistoryLimit int
	Logger       *slog.Logger
}

// Shell reads command lines and exchanges them with the engine one at a time.
type Shell struct {
	session *engine.Session
	reader  lineReader
	out     io.Writer
	printer *console.Printer
	log     *slog.Logger
}

// New builds a shell, picking the interactive editor when stdin is a
// terminal and falling back to plain line reading otherwise.
func New(cfg Config) *Shell {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Shell{
		session: cfg.Session,
		reader:  newLineReader(cfg, out, log),
		out:     out,
		printer: console.NewPrinter(out),
		log:     log,
	}
}

// Run connects the session and serves the prompt until quit, EOF, or a lost
// connection. A reply timeout is reported and the prompt continues; any
// other exchange failure ends the shell because the session is closed.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.session.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.session.Close(); err != nil {
			s.log.Warn("session close failed", "error", err)
		}
	}()
	defer func() { _ = s.reader.Close() }()

	fmt.Fprintf(s.out, "connected to generator engine at %s\n", s.session.Addr())
	fmt.Fprintf(s.out, "type %q for commands, %q to leave\n", "help", "quit")

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.reader.ReadLine(prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			return nil
		case "help":
			s.printHelp()
			continue
		}

		s.log.Debug("shell command", "command", line)
		reply, err := s.session.Send(ctx, engine.Command(line))
		if err != nil {
			if errors.Is(err, engine.ErrReplyTimeout) {
				fmt.Fprintf(s.out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(s.out, "connection lost: %v\n", err)
			return err
		}
		s.printer.Reply(reply)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `commands are sent to the engine as typed:
  status           report generator state, load, and alarms
  start            start the generator
  stop             stop the generator
  set_load <pct>   request a load setpoint

local commands:
  help             show this help
  quit, exit       leave the shell
`)
}

// HistoryPath resolves the default readline history location, preferring
// XDG_STATE_HOME and falling back to ~/.local/state.
func HistoryPath() (string, error) {
	if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, "genctl", "shell_history"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve user home for shell history: %w", err)
	}
	return filepath.Join(home, ".local", "state", "genctl", "shell_history"), nil
}
