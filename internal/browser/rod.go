package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodEngine drives Chromium over CDP with go-rod instead of the Playwright driver.
type RodEngine struct{}

func (r RodEngine) Start(opts LaunchOptions) (Session, error) {
	l := launcher.New().Headless(opts.Headless)
	// Prefer an installed browser over rod's download.
	if bin, ok := launcher.LookPath(); ok {
		l = l.Bin(bin)
	}
	for _, arg := range opts.Args {
		name, value := splitFlag(arg)
		if name == "" {
			continue
		}
		if value == "" {
			l.Set(flags.Flag(name))
		} else {
			l.Set(flags.Flag(name), value)
		}
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	b := rod.New().ControlURL(controlURL)
	if opts.SlowMo > 0 {
		b = b.SlowMotion(opts.SlowMo)
	}
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}
	return &rodSession{launcher: l, browser: b, opts: opts}, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	opts     LaunchOptions
}

func (s *rodSession) NewPage() (Page, error) {
	var page *rod.Page
	var err error
	if s.opts.Stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, err
	}
	if s.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.opts.UserAgent}); err != nil {
			_ = page.Close()
			return nil, err
		}
	}
	if vp := s.opts.Viewport; vp != nil {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             vp.Width,
			Height:            vp.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			_ = page.Close()
			return nil, err
		}
	}
	return &rodPage{page: page}, nil
}

func (s *rodSession) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Goto(url string, opts GotoOptions) error {
	ctx, cancel := withTimeout(context.Background(), opts.Timeout)
	defer cancel()
	page := p.page.Context(ctx)
	event, ok := rodLifecycleEvent(opts.WaitUntil)
	if !ok {
		return page.Navigate(url)
	}
	wait := page.WaitNavigation(event)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) WaitFor(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

func (p *rodPage) WaitForSelector(selector string, timeout time.Duration) error {
	ctx, cancel := withTimeout(context.Background(), timeout)
	defer cancel()
	_, err := p.page.Context(ctx).Element(selector)
	return err
}

// withTimeout bounds ctx by d; a non-positive d leaves it unbounded. The
// returned cancel must always be called so rod's timers are released.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (p *rodPage) Evaluate(fn string, arg any) (json.RawMessage, error) {
	res, err := p.page.Eval(fn, arg)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(res.Value)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (p *rodPage) Screenshot(path string, fullPage bool) error {
	data, err := p.page.Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *rodPage) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *rodPage) Title() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

func rodLifecycleEvent(w WaitUntil) (proto.PageLifecycleEventName, bool) {
	switch w {
	case WaitDOMContentLoaded:
		return proto.PageLifecycleEventNameDOMContentLoaded, true
	case WaitLoad, "":
		return proto.PageLifecycleEventNameLoad, true
	case WaitNetworkIdle:
		return proto.PageLifecycleEventNameNetworkIdle, true
	default:
		return "", false
	}
}

// splitFlag turns "--name=value" into its launcher parts.
func splitFlag(arg string) (string, string) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	name, value, _ := strings.Cut(arg, "=")
	return name, value
}
