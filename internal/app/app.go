package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/playwright-community/playwright-go"

	"github.com/patrickjm/stylesnap/internal/browser"
	"github.com/patrickjm/stylesnap/internal/config"
	"github.com/patrickjm/stylesnap/internal/logging"
	"github.com/patrickjm/stylesnap/internal/pipeline"
	"github.com/patrickjm/stylesnap/internal/report"
	"github.com/patrickjm/stylesnap/internal/snapshot"
	"github.com/patrickjm/stylesnap/internal/theme"
)

type GlobalFlags struct {
	Config    string
	OutputDir string
	Engine    string
	Retention string
	JSON      bool
	Quiet     bool
	Headless  bool
	Headed    bool
}

// RunFlags adjust a target for a single run.
type RunFlags struct {
	URL        string
	Variant    string
	Name       string
	Timeout    string
	Wait       string
	Screenshot bool
	NoLinger   bool
}

type App struct {
	Out io.Writer
	Err io.Writer
	// NewEngine resolves an engine name. Nil uses browser.EngineByName.
	NewEngine func(name string) (browser.Engine, error)
	Now       func() time.Time
}

const (
	exitSuccess  = 0
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
)

func (a App) prepare(flags GlobalFlags) (config.Config, snapshot.Store, error) {
	cfg, err := config.Load(config.Overrides{
		ConfigPath: flags.Config,
		OutputDir:  flags.OutputDir,
		Engine:     flags.Engine,
		Retention:  flags.Retention,
	})
	if err != nil {
		return config.Config{}, snapshot.Store{}, err
	}
	return cfg, snapshot.Store{Root: cfg.OutputDir, Retention: cfg.Retention}, nil
}

func (a App) logger(flags GlobalFlags) logging.Logger {
	out := a.Out
	if flags.JSON {
		out = a.Err
	}
	return logging.NewConsole(out, a.Err, flags.Quiet)
}

func (a App) engine(name string) (browser.Engine, error) {
	if a.NewEngine != nil {
		return a.NewEngine(name)
	}
	return browser.EngineByName(name)
}

func (a App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a App) runSnapshot(cfg config.Config, store snapshot.Store, flags GlobalFlags, rf RunFlags, name string) int {
	log := a.logger(flags)
	target, err := cfg.Target(name)
	if err != nil {
		log.Errorf("%v", err)
		return exitNotFound
	}
	target, err = applyRunFlags(target, flags, rf)
	if err != nil {
		log.Errorf("%v", err)
		return exitUsage
	}
	engine, err := a.engine(cfg.Engine)
	if err != nil {
		log.Errorf("%v", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, engine, target, store, log, a.now)
	if err != nil {
		log.Errorf("%v", err)
		if errors.Is(err, pipeline.ErrScreenshot) && flags.JSON {
			writeJSON(a.Out, res)
		}
		return exitFailure
	}
	if flags.JSON {
		writeJSON(a.Out, res)
	} else if flags.Quiet {
		fmt.Fprintln(a.Out, res.SnapshotPath)
	}
	return exitSuccess
}

// applyRunFlags layers per-run flags over a configured target.
func applyRunFlags(t config.Target, flags GlobalFlags, rf RunFlags) (config.Target, error) {
	if flags.Headless && flags.Headed {
		return t, errors.New("--headless and --headed are mutually exclusive")
	}
	if flags.Headless {
		t.Headless = true
	}
	if flags.Headed {
		t.Headless = false
	}
	if rf.URL != "" {
		t.URL = rf.URL
	}
	if rf.Variant != "" {
		v, err := theme.ParseVariant(rf.Variant)
		if err != nil {
			return t, err
		}
		t.Variant = v
	}
	if rf.Name != "" {
		t.OutputName = rf.Name
	}
	if rf.Timeout != "" {
		d, err := time.ParseDuration(rf.Timeout)
		if err != nil || d < 0 {
			return t, fmt.Errorf("invalid timeout: %s", rf.Timeout)
		}
		t.NavTimeout = d
	}
	if rf.Wait != "" {
		d, err := time.ParseDuration(rf.Wait)
		if err != nil || d < 0 {
			return t, fmt.Errorf("invalid wait: %s", rf.Wait)
		}
		t.FixedWait = d
	}
	if rf.Screenshot {
		t.Screenshot = true
	}
	if rf.NoLinger || t.Headless {
		t.Linger = 0
	}
	if strings.TrimSpace(t.URL) == "" {
		return t, errors.New("target has no url")
	}
	return t, nil
}

func (a App) runProbe(cfg config.Config, flags GlobalFlags, url string, selectors []string, wait string) int {
	log := a.logger(flags)
	opts := pipeline.ProbeOptions{
		Launch:    browser.LaunchOptions{Headless: !flags.Headed},
		Goto:      browser.GotoOptions{WaitUntil: browser.WaitLoad, Timeout: 30 * time.Second},
		Selectors: selectors,
	}
	if wait != "" {
		d, err := time.ParseDuration(wait)
		if err != nil || d < 0 {
			log.Errorf("invalid wait: %s", wait)
			return exitUsage
		}
		opts.Settle.FixedWait = d
	}
	engine, err := a.engine(cfg.Engine)
	if err != nil {
		log.Errorf("%v", err)
		return exitUsage
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	samples, err := pipeline.RunProbe(ctx, engine, url, opts, log)
	if err != nil {
		log.Errorf("%v", err)
		return exitFailure
	}
	writeJSON(a.Out, samples)
	return exitSuccess
}

func (a App) runTargets(cfg config.Config, flags GlobalFlags) int {
	if flags.JSON {
		type row struct {
			Name    string        `json:"name"`
			URL     string        `json:"url"`
			Variant theme.Variant `json:"variant"`
			Output  string        `json:"output"`
			Default bool          `json:"default"`
		}
		rows := []row{}
		for _, name := range cfg.TargetNames() {
			t := cfg.Targets[name]
			rows = append(rows, row{Name: name, URL: t.URL, Variant: t.Variant, Output: t.OutputName, Default: name == cfg.DefaultTarget})
		}
		writeJSON(a.Out, rows)
		return exitSuccess
	}
	for _, name := range cfg.TargetNames() {
		t := cfg.Targets[name]
		marker := ""
		if name == cfg.DefaultTarget {
			marker = "*"
		}
		fmt.Fprintf(a.Out, "%s%s %s variant=%s output=%s\n", name, marker, t.URL, t.Variant, t.OutputName)
	}
	return exitSuccess
}

func (a App) runList(store snapshot.Store, flags GlobalFlags) int {
	entries, err := store.List()
	if err != nil {
		fmt.Fprintln(a.Err, err)
		return exitFailure
	}
	if flags.JSON {
		if entries == nil {
			entries = []snapshot.Entry{}
		}
		writeJSON(a.Out, entries)
		return exitSuccess
	}
	for _, e := range entries {
		fmt.Fprintf(a.Out, "%s date=%s size=%d path=%s\n", e.Name, e.Date.Format("2006-01-02"), e.Size, e.Path)
	}
	return exitSuccess
}

func (a App) runPrune(store snapshot.Store, flags GlobalFlags, dryRun bool) int {
	removed, err := store.Prune(dryRun)
	if err != nil {
		fmt.Fprintln(a.Err, err)
		return exitFailure
	}
	if flags.JSON {
		writeJSON(a.Out, removed)
		return exitSuccess
	}
	verb := "pruned"
	if dryRun {
		verb = "would prune"
	}
	for _, e := range removed {
		fmt.Fprintf(a.Out, "%s %s\n", verb, filepath.Base(e.Path))
	}
	return exitSuccess
}

func (a App) runReport(path, outPath, title string) int {
	snap, err := snapshot.Load(path)
	if err != nil {
		fmt.Fprintln(a.Err, err)
		if os.IsNotExist(err) {
			return exitNotFound
		}
		return exitFailure
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	doc := report.ToMarkdown(snap, title)
	if outPath == "" || outPath == "-" {
		fmt.Fprint(a.Out, doc)
		return exitSuccess
	}
	if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil {
		fmt.Fprintln(a.Err, err)
		return exitFailure
	}
	return exitSuccess
}

func (a App) runInstall(cfg config.Config, flags GlobalFlags) int {
	switch strings.ToLower(cfg.Engine) {
	case "rod":
		bin, err := launcher.NewBrowser().Get()
		if err != nil {
			fmt.Fprintln(a.Err, err)
			return exitFailure
		}
		if !flags.Quiet {
			fmt.Fprintf(a.Out, "Chromium installed: %s\n", bin)
		}
	default:
		opts := &playwright.RunOptions{Browsers: []string{"chromium"}}
		if err := playwright.Install(opts); err != nil {
			fmt.Fprintln(a.Err, err)
			return exitFailure
		}
		if !flags.Quiet {
			fmt.Fprintln(a.Out, "Playwright installed: chromium")
		}
	}
	return exitSuccess
}

func (a App) runDoctor(cfg config.Config, flags GlobalFlags) int {
	type result struct {
		OutputDir         string `json:"output_dir"`
		OutputDirWritable bool   `json:"output_dir_writable"`
		Engine            string `json:"engine"`
		ConfigFile        string `json:"config_file,omitempty"`
		PlaywrightOK      bool   `json:"playwright_ok"`
		BrowsersPath      string `json:"browsers_path,omitempty"`
		SystemBrowser     string `json:"system_browser,omitempty"`
	}
	res := result{OutputDir: cfg.OutputDir, Engine: cfg.Engine, BrowsersPath: os.Getenv("PLAYWRIGHT_BROWSERS_PATH")}
	if flags.Config != "" {
		res.ConfigFile = flags.Config
	} else {
		for _, p := range config.SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				res.ConfigFile = p
				break
			}
		}
	}
	if err := snapshot.CheckWritable(cfg.OutputDir); err == nil {
		res.OutputDirWritable = true
	}
	if pw, err := playwright.Run(); err == nil {
		res.PlaywrightOK = true
		pw.Stop()
	}
	if bin, ok := launcher.LookPath(); ok {
		res.SystemBrowser = bin
	}
	if flags.JSON {
		writeJSON(a.Out, res)
		return exitSuccess
	}
	fmt.Fprintf(a.Out, "output_dir=%s\n", res.OutputDir)
	fmt.Fprintf(a.Out, "output_dir_writable=%t\n", res.OutputDirWritable)
	fmt.Fprintf(a.Out, "engine=%s\n", res.Engine)
	if res.ConfigFile != "" {
		fmt.Fprintf(a.Out, "config_file=%s\n", res.ConfigFile)
	}
	fmt.Fprintf(a.Out, "playwright_ok=%t\n", res.PlaywrightOK)
	if res.BrowsersPath != "" {
		fmt.Fprintf(a.Out, "browsers_path=%s\n", res.BrowsersPath)
	}
	if res.SystemBrowser != "" {
		fmt.Fprintf(a.Out, "system_browser=%s\n", res.SystemBrowser)
	}
	return exitSuccess
}

func writeJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}
