package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseWaitUntil(t *testing.T) {
	cases := map[string]WaitUntil{
		"":                 WaitLoad,
		"load":             WaitLoad,
		"DOMContentLoaded": WaitDOMContentLoaded,
		" networkidle ":    WaitNetworkIdle,
		"commit":           WaitCommit,
	}
	for in, want := range cases {
		got, err := ParseWaitUntil(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseWaitUntil("idle"); !errors.Is(err, ErrUnknownWaitUntil) {
		t.Fatalf("expected ErrUnknownWaitUntil, got %v", err)
	}
}

func TestEngineByName(t *testing.T) {
	if e, err := EngineByName(""); err != nil {
		t.Fatalf("default engine: %v", err)
	} else if _, ok := e.(PlaywrightEngine); !ok {
		t.Fatalf("expected playwright engine by default, got %T", e)
	}
	if e, err := EngineByName("rod"); err != nil {
		t.Fatalf("rod engine: %v", err)
	} else if _, ok := e.(RodEngine); !ok {
		t.Fatalf("expected rod engine, got %T", e)
	}
	if _, err := EngineByName("firefox"); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestSettleSwallowsSelectorTimeout(t *testing.T) {
	page := &FakePage{SelectorErr: errors.New("timeout 10000ms exceeded")}
	opts := SettleOptions{
		FixedWait:       8 * time.Second,
		Selector:        "body",
		SelectorTimeout: 10 * time.Second,
		AfterWait:       3 * time.Second,
	}
	if err := Settle(context.Background(), page, opts, nil); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(page.Waits) != 2 || page.Waits[0] != 8*time.Second || page.Waits[1] != 3*time.Second {
		t.Fatalf("unexpected waits: %v", page.Waits)
	}
	if len(page.Selectors) != 1 || page.Selectors[0] != "body" {
		t.Fatalf("unexpected selector waits: %v", page.Selectors)
	}
}

func TestSettleSkipsEmptySteps(t *testing.T) {
	page := &FakePage{}
	if err := Settle(context.Background(), page, SettleOptions{FixedWait: 3 * time.Second}, nil); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(page.Waits) != 1 {
		t.Fatalf("expected one wait, got %v", page.Waits)
	}
	if len(page.Selectors) != 0 {
		t.Fatalf("expected no selector wait, got %v", page.Selectors)
	}
}

func TestSettleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page := &FakePage{}
	err := Settle(ctx, page, SettleOptions{Selector: "body"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(page.Selectors) != 0 {
		t.Fatalf("expected no selector wait after cancel")
	}
}

func TestSettleStopsDuringFixedWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	page := &FakePage{OnWait: cancel}
	opts := SettleOptions{FixedWait: 8 * time.Second, Selector: "main", AfterWait: 3 * time.Second}
	err := Settle(ctx, page, opts, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(page.Waits) != 1 || len(page.Selectors) != 0 {
		t.Fatalf("settle should stop at the first wait, got waits %v selectors %v", page.Waits, page.Selectors)
	}
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(10*time.Millisecond, cancel)
	defer timer.Stop()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("sleep ignored cancellation for %s", elapsed)
	}
}

func TestSleepElapses(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 15*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Fatalf("sleep returned early")
	}
	if err := Sleep(context.Background(), 0); err != nil {
		t.Fatalf("zero sleep: %v", err)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), time.Minute)
	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("expected a deadline")
	}
	cancel()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatalf("cancel should release the timeout, got %v", ctx.Err())
	}

	ctx, cancel = withTimeout(context.Background(), 0)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("zero timeout should not set a deadline")
	}
	if ctx.Err() != nil {
		t.Fatalf("unexpected error: %v", ctx.Err())
	}
}

func TestSplitFlag(t *testing.T) {
	name, value := splitFlag("--disable-blink-features=AutomationControlled")
	if name != "disable-blink-features" || value != "AutomationControlled" {
		t.Fatalf("unexpected split: %q %q", name, value)
	}
	name, value = splitFlag("--disable-web-security")
	if name != "disable-web-security" || value != "" {
		t.Fatalf("unexpected split: %q %q", name, value)
	}
}
