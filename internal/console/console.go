// Package console renders run progress and engine replies as plain text.
package console

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/msevon/genctl/internal/engine"
	"github.com/msevon/genctl/internal/scenario"
)

// Printer writes human-readable progress for scenario runs and one-shot
// commands. It implements scenario.Observer.
type Printer struct {
	w io.Writer
}

// NewPrinter wires a printer to an output stream.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Banner announces the target engine before a run connects.
func (p *Printer) Banner(addr string) {
	fmt.Fprintf(p.w, "connecting to generator engine at %s\n", addr)
}

// StepDone renders one completed exchange.
func (p *Printer) StepDone(res scenario.StepResult) {
	fmt.Fprintf(p.w, "[%d] %s\n", res.Seq, res.Label)
	switch {
	case res.Err != nil:
		fmt.Fprintf(p.w, "    error: %v\n", res.Err)
	case res.Reply.Rejected():
		fmt.Fprintf(p.w, "    refused: %s\n", replyDetail(res.Reply))
	default:
		fmt.Fprintf(p.w, "    %s\n", replyDetail(res.Reply))
	}
}

// SettleWait reports the pause between exchanges.
func (p *Printer) SettleWait(d time.Duration) {
	fmt.Fprintf(p.w, "    waiting %s for the engine to settle\n", d)
}

// Summary closes out a run with a one-line outcome.
func (p *Printer) Summary(report scenario.Report) {
	if report.ConnectErr != nil {
		fmt.Fprintf(p.w, "connect failed: %v\n", report.ConnectErr)
		return
	}

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	line := fmt.Sprintf("%s, %s in %s", plural(len(report.Steps), "step"), plural(report.StepErrors(), "error"), elapsed)
	if report.Interrupted {
		line += " (interrupted)"
	}
	fmt.Fprintln(p.w, line)
}

// Reply renders a single reply for one-shot commands.
func (p *Printer) Reply(reply engine.Reply) {
	if reply.Rejected() {
		fmt.Fprintf(p.w, "refused: %s\n", replyDetail(reply))
		return
	}
	fmt.Fprintln(p.w, replyDetail(reply))
}

// replyDetail flattens a reply into one line. Status payloads render their
// data fields, other structured replies render their message, and anything
// the engine sent outside the JSON protocol passes through as raw text.
func replyDetail(reply engine.Reply) string {
	if !reply.Structured() {
		return reply.Text()
	}
	if data := reply.Data(); len(data) > 0 {
		return formatData(data)
	}
	if msg := reply.Message(); msg != "" {
		return msg
	}
	return reply.Text()
}

// formatData renders state and load first so status lines read the same
// across runs, then the remaining keys sorted.
func formatData(data map[string]any) string {
	parts := make([]string, 0, len(data))
	used := make(map[string]bool, 2)

	for _, key := range []string{"state", "load"} {
		if v, ok := data[key]; ok {
			parts = append(parts, key+"="+formatValue(key, v))
			used[key] = true
		}
	}

	rest := make([]string, 0, len(data))
	for key := range data {
		if !used[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		parts = append(parts, key+"="+formatValue(key, data[key]))
	}

	return strings.Join(parts, " ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func formatValue(key string, v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		if key == "load" {
			s += "%"
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	case []any:
		if len(val) == 0 {
			return "none"
		}
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return strings.Join(items, ",")
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}
