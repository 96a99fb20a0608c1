package browser

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"
)

type FakeEngine struct {
	Session  *FakeSession
	StartErr error
	Launches []LaunchOptions
}

func (f *FakeEngine) Start(opts LaunchOptions) (Session, error) {
	f.Launches = append(f.Launches, opts)
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	if f.Session == nil {
		f.Session = &FakeSession{}
	}
	return f.Session, nil
}

type FakeSession struct {
	Pages      []*FakePage
	CloseCalls int
	NewPageErr error
	// Page is handed out by NewPage when set.
	Page *FakePage
}

func (s *FakeSession) NewPage() (Page, error) {
	if s.NewPageErr != nil {
		return nil, s.NewPageErr
	}
	page := s.Page
	if page == nil {
		page = &FakePage{}
	}
	s.Pages = append(s.Pages, page)
	return page, nil
}

func (s *FakeSession) Close() error {
	s.CloseCalls++
	return nil
}

type FakePage struct {
	URLValue    string
	TitleValue  string
	GotoErr     error
	SelectorErr error
	EvalErr     error
	ShotErr     error
	// EvalResult is returned for every Evaluate call.
	EvalResult json.RawMessage
	// OnWait runs inside each WaitFor before ctx is checked.
	OnWait func()

	Gotos     []GotoOptions
	Waits     []time.Duration
	Selectors []string
	EvalArgs  []any
	Shots     []string
	Closed    bool
}

func (p *FakePage) Goto(url string, opts GotoOptions) error {
	p.Gotos = append(p.Gotos, opts)
	if p.GotoErr != nil {
		return p.GotoErr
	}
	p.URLValue = url
	return nil
}

// WaitFor records d without sleeping.
func (p *FakePage) WaitFor(ctx context.Context, d time.Duration) error {
	p.Waits = append(p.Waits, d)
	if p.OnWait != nil {
		p.OnWait()
	}
	return ctx.Err()
}

func (p *FakePage) WaitForSelector(selector string, _ time.Duration) error {
	p.Selectors = append(p.Selectors, selector)
	return p.SelectorErr
}

func (p *FakePage) Evaluate(_ string, arg any) (json.RawMessage, error) {
	p.EvalArgs = append(p.EvalArgs, arg)
	if p.EvalErr != nil {
		return nil, p.EvalErr
	}
	if p.EvalResult == nil {
		return nil, errors.New("no eval result")
	}
	return p.EvalResult, nil
}

// Screenshot writes a placeholder file so callers can check the path.
func (p *FakePage) Screenshot(path string, _ bool) error {
	if p.ShotErr != nil {
		return p.ShotErr
	}
	p.Shots = append(p.Shots, path)
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (p *FakePage) URL() (string, error) {
	return p.URLValue, nil
}

func (p *FakePage) Title() (string, error) {
	return p.TitleValue, nil
}

func (p *FakePage) Close() error {
	p.Closed = true
	return nil
}
