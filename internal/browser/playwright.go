package browser

import (
	"context"
	"encoding/json"
	"time"

	"github.com/playwright-community/playwright-go"
)

type PlaywrightEngine struct{}

func (p PlaywrightEngine) Start(opts LaunchOptions) (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	if len(opts.Args) > 0 {
		launchOpts.Args = opts.Args
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, err
	}
	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.Viewport != nil {
		ctxOpts.Viewport = &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height}
	}
	ctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, err
	}
	return &playwrightSession{pw: pw, browser: browser, ctx: ctx}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
}

func (s *playwrightSession) NewPage() (Page, error) {
	page, err := s.ctx.NewPage()
	if err != nil {
		return nil, err
	}
	return &playwrightPage{page: page}, nil
}

func (s *playwrightSession) Close() error {
	if s.ctx != nil {
		_ = s.ctx.Close()
	}
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.pw != nil {
		if stopErr := s.pw.Stop(); err == nil {
			err = stopErr
		}
	}
	return err
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string, opts GotoOptions) error {
	gotoOpts := playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(opts.Timeout.Milliseconds())),
	}
	if w := playwrightWaitUntil(opts.WaitUntil); w != nil {
		gotoOpts.WaitUntil = w
	}
	_, err := p.page.Goto(url, gotoOpts)
	return err
}

// WaitFor sleeps on the Go side; page.WaitForTimeout cannot be interrupted.
func (p *playwrightPage) WaitFor(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Evaluate(fn string, arg any) (json.RawMessage, error) {
	v, err := p.page.Evaluate(fn, arg)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (p *playwrightPage) Screenshot(path string, fullPage bool) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path), FullPage: playwright.Bool(fullPage)})
	return err
}

func (p *playwrightPage) URL() (string, error) {
	return p.page.URL(), nil
}

func (p *playwrightPage) Title() (string, error) {
	return p.page.Title()
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

func playwrightWaitUntil(w WaitUntil) *playwright.WaitUntilState {
	switch w {
	case WaitCommit:
		return playwright.WaitUntilStateCommit
	case WaitDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	case WaitLoad:
		return playwright.WaitUntilStateLoad
	case WaitNetworkIdle:
		return playwright.WaitUntilStateNetworkidle
	default:
		return nil
	}
}
