package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

// lineReader abstracts the interactive editor and the plain scanner path.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// newLineReader picks the readline editor when stdin is a terminal. Scripted
// input (cfg.Input set) and piped stdin both get the plain scanner, which
// prints prompts itself.
func newLineReader(cfg Config, out io.Writer, log *slog.Logger) lineReader {
	if cfg.Input != nil {
		return &scannerReader{scanner: bufio.NewScanner(cfg.Input), out: out}
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return &scannerReader{scanner: bufio.NewScanner(os.Stdin), out: out}
	}

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		if path, err := HistoryPath(); err == nil {
			historyFile = path
		}
	}
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o700); err != nil {
			log.Warn("create history directory failed", "path", historyFile, "error", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyFile,
		HistoryLimit:           cfg.HistoryLimit,
		DisableAutoSaveHistory: true,
		Prompt:                 prompt,
	})
	if err != nil {
		log.Warn("readline init failed; using plain input", "error", err)
		return &scannerReader{scanner: bufio.NewScanner(os.Stdin), out: out}
	}
	return &readlineReader{rl: rl}
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) ReadLine(p string) (string, error) {
	r.rl.SetPrompt(p)
	line, err := r.rl.Readline()
	if err != nil {
		// Ctrl-C leaves the shell the same way Ctrl-D does.
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}

	// Only non-empty lines are worth recalling.
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		r.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (r *readlineReader) Close() error {
	r.rl.Close()
	return nil
}

type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scannerReader) ReadLine(p string) (string, error) {
	fmt.Fprint(r.out, p)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scannerReader) Close() error { return nil }
