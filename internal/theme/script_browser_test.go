package theme

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/playwright-community/playwright-go"

	"github.com/patrickjm/stylesnap/internal/browser"
)

// fixturePage has two h2s in different colors, 12 buttons (the first
// without a class), 7 cards, padded custom properties and no navigation.
func fixturePage() string {
	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><title>fixture</title>`)
	b.WriteString(`<style>:root{--a:1px; --b: 2px }</style></head><body>`)
	b.WriteString(`<h2 style="color: rgb(255, 0, 0)">first</h2>`)
	b.WriteString(`<h2 style="color: rgb(0, 0, 255)">second</h2>`)
	b.WriteString(`<button>b0</button>`)
	for i := 1; i < 12; i++ {
		fmt.Fprintf(&b, `<button class="b%d">b%d</button>`, i, i)
	}
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&b, `<div class="card">card %d</div>`, i)
	}
	b.WriteString(`</body></html>`)
	return "data:text/html;charset=utf-8," + url.PathEscape(b.String())
}

func TestSnapshotScriptInChromium(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a browser")
	}
	t.Run("playwright", func(t *testing.T) {
		pw, err := playwright.Run()
		if err != nil {
			t.Skipf("playwright driver unavailable: %v", err)
		}
		_ = pw.Stop()
		extractFixture(t, browser.PlaywrightEngine{})
	})
	t.Run("rod", func(t *testing.T) {
		if _, ok := launcher.LookPath(); !ok {
			t.Skip("no local chromium")
		}
		extractFixture(t, browser.RodEngine{})
	})
}

func extractFixture(t *testing.T, engine browser.Engine) {
	t.Helper()
	session, err := engine.Start(browser.LaunchOptions{Headless: true})
	if err != nil {
		t.Skipf("browser unavailable: %v", err)
	}
	defer session.Close()
	page, err := session.NewPage()
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	if err := page.Goto(fixturePage(), browser.GotoOptions{WaitUntil: browser.WaitLoad, Timeout: 30 * time.Second}); err != nil {
		t.Fatalf("goto: %v", err)
	}

	if err := page.WaitForSelector("#absent", 300*time.Millisecond); err == nil {
		t.Fatalf("expected a timeout for a missing selector")
	}
	if err := page.WaitForSelector("h2", 5*time.Second); err != nil {
		t.Fatalf("selector after a timed out wait: %v", err)
	}
	if err := page.WaitFor(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("wait: %v", err)
	}

	snap, err := Extract(page, FullConfig())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if len(snap.Headings) != 1 {
		t.Fatalf("expected only h2, got %v", snap.Headings)
	}
	h2, ok := snap.Headings["h2"]
	if !ok || h2.Colors == nil || Value(h2.Colors.Color) != "rgb(255, 0, 0)" {
		t.Fatalf("first h2 should win, got %+v", h2.Colors)
	}

	if len(snap.Buttons) != DefaultButtonCap {
		t.Fatalf("expected %d buttons, got %d", DefaultButtonCap, len(snap.Buttons))
	}
	if cls := snap.Buttons[0].ClassName; cls == nil || *cls != "" {
		t.Fatalf("class-less button should carry an empty className, got %v", cls)
	}
	if got := Value(snap.Buttons[1].ClassName); got != "b1" {
		t.Fatalf("expected document order, got %q second", got)
	}
	if snap.Buttons[0].BorderRadius == nil {
		t.Fatalf("button decorations should be read")
	}
	if len(snap.Cards) != DefaultCardCap {
		t.Fatalf("expected %d cards, got %d", DefaultCardCap, len(snap.Cards))
	}

	for name, want := range map[string]string{"--a": "1px", "--b": "2px"} {
		if got, ok := snap.CSSVariables.Get(name); !ok || got != want {
			t.Fatalf("%s: expected %q, got %q (present %t)", name, want, got, ok)
		}
	}

	if snap.Navigation != nil {
		t.Fatalf("page has no navigation, got %+v", snap.Navigation)
	}
	if snap.Body == nil || snap.Viewport == nil || snap.Meta == nil || snap.Meta.Title != "fixture" {
		t.Fatalf("expected body and page info, got body=%v viewport=%v meta=%v", snap.Body, snap.Viewport, snap.Meta)
	}
	if !strings.HasPrefix(snap.URL, "data:text/html") || snap.Timestamp == "" {
		t.Fatalf("unexpected url or timestamp: %q %q", snap.URL, snap.Timestamp)
	}
}
