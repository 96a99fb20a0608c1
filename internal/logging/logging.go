// Package logging carries the human-readable progress stream of a run.
package logging

import (
	"io"
	"sync"

	"github.com/fatih/color"
)

// Logger receives progress messages. Messages are advisory and carry no
// stable format.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Console prints info lines to Out and warnings and errors to Err.
type Console struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool

	mu sync.Mutex
}

var (
	infoColor  = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

func NewConsole(out io.Writer, errOut io.Writer, quiet bool) *Console {
	return &Console{Out: out, Err: errOut, Quiet: quiet}
}

func (c *Console) Infof(format string, args ...any) {
	if c.Quiet || c.Out == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	infoColor.Fprintf(c.Out, format+"\n", args...)
}

func (c *Console) Warnf(format string, args ...any) {
	if c.Err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	warnColor.Fprintf(c.Err, "warning: "+format+"\n", args...)
}

func (c *Console) Errorf(format string, args ...any) {
	if c.Err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	errorColor.Fprintf(c.Err, "error: "+format+"\n", args...)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
