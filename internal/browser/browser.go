package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Viewport struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

type LaunchOptions struct {
	Headless  bool
	SlowMo    time.Duration
	Args      []string
	UserAgent string
	Viewport  *Viewport
	// Stealth injects evasion scripts into new pages. Only the rod engine honours it.
	Stealth bool
}

// WaitUntil is the load-completion condition that ends a navigation.
type WaitUntil string

const (
	WaitCommit           WaitUntil = "commit"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitLoad             WaitUntil = "load"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

var ErrUnknownWaitUntil = errors.New("unknown wait condition")

func ParseWaitUntil(s string) (WaitUntil, error) {
	switch w := WaitUntil(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WaitLoad, nil
	case WaitCommit, WaitDOMContentLoaded, WaitLoad, WaitNetworkIdle:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWaitUntil, s)
	}
}

type GotoOptions struct {
	WaitUntil WaitUntil
	// Timeout of zero waits forever.
	Timeout time.Duration
}

type Engine interface {
	Start(opts LaunchOptions) (Session, error)
}

type Session interface {
	NewPage() (Page, error)
	Close() error
}

type Page interface {
	Goto(url string, opts GotoOptions) error
	// WaitFor pauses for d. It returns early with ctx.Err() once ctx is done.
	WaitFor(ctx context.Context, d time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) error
	// Evaluate runs fn in the page with arg as its single argument and
	// returns the result encoded as JSON.
	Evaluate(fn string, arg any) (json.RawMessage, error)
	Screenshot(path string, fullPage bool) error
	URL() (string, error)
	Title() (string, error)
	Close() error
}

func EngineByName(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "playwright", "":
		return PlaywrightEngine{}, nil
	case "rod":
		return RodEngine{}, nil
	default:
		return nil, errors.New("unknown engine: " + name)
	}
}
