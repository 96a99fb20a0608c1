// Package pipeline runs one snapshot end to end: launch, navigate, settle,
// extract, write, close.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickjm/stylesnap/internal/browser"
	"github.com/patrickjm/stylesnap/internal/config"
	"github.com/patrickjm/stylesnap/internal/logging"
	"github.com/patrickjm/stylesnap/internal/snapshot"
	"github.com/patrickjm/stylesnap/internal/theme"
)

var (
	ErrLaunch     = errors.New("browser launch failed")
	ErrNavigate   = errors.New("navigation failed")
	ErrExtract    = errors.New("extraction failed")
	ErrWrite      = errors.New("write failed")
	ErrScreenshot = errors.New("screenshot failed")
	// ErrInterrupted marks a run stopped by its context while the page settled.
	ErrInterrupted = errors.New("run interrupted")
)

// StageError tags an error with the stage that produced it.
type StageError struct {
	Stage error
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Stage, e.Err}
}

func stageErr(stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

type Result struct {
	Target         string        `json:"target"`
	URL            string        `json:"url"`
	SnapshotPath   string        `json:"snapshotPath"`
	ScreenshotPath string        `json:"screenshotPath,omitempty"`
	Summary        theme.Summary `json:"summary"`
}

// Run snapshots target into store. Once the browser is up it is closed
// exactly once on every path. No file is written unless extraction
// succeeds; a failed screenshot leaves the JSON in place.
func Run(ctx context.Context, engine browser.Engine, target config.Target, store snapshot.Store, log logging.Logger, now func() time.Time) (Result, error) {
	log = logging.OrNop(log)
	if now == nil {
		now = time.Now
	}
	res := Result{Target: target.Name}

	session, err := engine.Start(target.LaunchOptions())
	if err != nil {
		return res, stageErr(ErrLaunch, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warnf("closing browser: %v", cerr)
		}
	}()

	page, err := session.NewPage()
	if err != nil {
		return res, stageErr(ErrLaunch, err)
	}

	log.Infof("loading %s", target.URL)
	if err := page.Goto(target.URL, target.GotoOptions()); err != nil {
		return res, stageErr(ErrNavigate, err)
	}
	log.Infof("page loaded")

	if err := browser.Settle(ctx, page, target.SettleOptions(), log); err != nil {
		return res, stageErr(ErrInterrupted, err)
	}

	log.Infof("extracting theme (%s)", target.Variant)
	snap, err := theme.Extract(page, target.ExtractConfig())
	if err != nil {
		return res, stageErr(ErrExtract, err)
	}
	res.URL = snap.URL
	res.Summary = snap.Summary()
	log.Infof("found %d variables, %d buttons, %d cards, %d headings",
		res.Summary.Variables, res.Summary.Buttons, res.Summary.Cards, res.Summary.Headings)

	at := now()
	path, err := store.Save(target.OutputName, at, snap)
	if err != nil {
		return res, stageErr(ErrWrite, err)
	}
	res.SnapshotPath = path
	log.Infof("saved %s", path)

	if target.Screenshot {
		shot := store.ScreenshotPath(target.OutputName, at)
		if err := snapshot.CaptureScreenshot(page, shot, true); err != nil {
			return res, stageErr(ErrScreenshot, err)
		}
		res.ScreenshotPath = shot
		log.Infof("saved %s", shot)
	}

	if target.Linger > 0 {
		log.Infof("keeping the browser open for %s", target.Linger)
		// An interrupt only shortens the linger; the snapshot is already saved.
		_ = browser.Sleep(ctx, target.Linger)
	}
	return res, nil
}

type ProbeOptions struct {
	Launch    browser.LaunchOptions
	Goto      browser.GotoOptions
	Settle    browser.SettleOptions
	Selectors []string
}

// RunProbe loads url and reads the probe styles for each selector.
func RunProbe(ctx context.Context, engine browser.Engine, url string, opts ProbeOptions, log logging.Logger) (map[string][]theme.ElementSample, error) {
	log = logging.OrNop(log)
	session, err := engine.Start(opts.Launch)
	if err != nil {
		return nil, stageErr(ErrLaunch, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warnf("closing browser: %v", cerr)
		}
	}()

	page, err := session.NewPage()
	if err != nil {
		return nil, stageErr(ErrLaunch, err)
	}
	log.Infof("loading %s", url)
	if err := page.Goto(url, opts.Goto); err != nil {
		return nil, stageErr(ErrNavigate, err)
	}
	if err := browser.Settle(ctx, page, opts.Settle, log); err != nil {
		return nil, stageErr(ErrInterrupted, err)
	}
	samples, err := theme.Probe(page, opts.Selectors)
	if err != nil {
		return nil, stageErr(ErrExtract, err)
	}
	return samples, nil
}
