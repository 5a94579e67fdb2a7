// Package notify delivers transient user notifications (the toasts of the
// interactive shell, coloured lines in plain subcommands).
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/yildizm/domainslab/internal/emoji"
)

// Notifier receives user-facing outcomes of a flow
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Nop discards notifications
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// Terminal prints notifications as coloured lines
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	success *color.Color
	failure *color.Color
}

// NewTerminalWriter creates a terminal notifier writing to out. Colour is
// dropped when noColor is set.
func NewTerminalWriter(out io.Writer, noColor bool) *Terminal {
	success := color.New(color.FgGreen, color.Bold)
	failure := color.New(color.FgRed, color.Bold)
	if noColor {
		success.DisableColor()
		failure.DisableColor()
	}
	return &Terminal{out: out, success: success, failure: failure}
}

func (t *Terminal) Success(message string) {
	t.write(t.success, emoji.GetEmoji("success"), message)
}

func (t *Terminal) Error(message string) {
	t.write(t.failure, emoji.GetEmoji("error"), message)
}

func (t *Terminal) write(c *color.Color, symbol, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = c.Fprintf(t.out, "%s %s", symbol, message)
	_, _ = fmt.Fprintln(t.out)
}

// Recorder keeps notifications in memory for later inspection
type Recorder struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (r *Recorder) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, message)
}

func (r *Recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, message)
}

// Snapshot returns copies of the recorded notifications
func (r *Recorder) Snapshot() (successes, errors []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Successes...), append([]string(nil), r.Errors...)
}
