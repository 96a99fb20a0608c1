package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/patrickjm/stylesnap/internal/browser"
	"github.com/patrickjm/stylesnap/internal/theme"
)

var ErrUnknownTarget = errors.New("unknown target")

type Config struct {
	OutputDir     string
	Retention     time.Duration
	Engine        string
	DefaultTarget string
	Targets       map[string]Target
}

// Target is one page to snapshot and the timing used to get it rendered.
type Target struct {
	Name            string
	URL             string
	Variant         theme.Variant
	Headless        bool
	SlowMo          time.Duration
	Args            []string
	UserAgent       string
	Viewport        *browser.Viewport
	WaitUntil       browser.WaitUntil
	NavTimeout      time.Duration
	FixedWait       time.Duration
	Selector        string
	SelectorTimeout time.Duration
	AfterWait       time.Duration
	Linger          time.Duration
	Screenshot      bool
	Stealth         bool
	OutputName      string
}

// Overrides come from flags and win over everything else.
type Overrides struct {
	ConfigPath string
	OutputDir  string
	Engine     string
	Retention  string
}

type rawConfig struct {
	OutputDir     string               `toml:"output_dir"`
	Retention     string               `toml:"retention"`
	Engine        string               `toml:"engine"`
	DefaultTarget string               `toml:"default_target"`
	Targets       map[string]rawTarget `toml:"targets"`
}

type rawTarget struct {
	URL             *string           `toml:"url"`
	Variant         *string           `toml:"variant"`
	Headless        *bool             `toml:"headless"`
	SlowMo          *string           `toml:"slow_mo"`
	Args            []string          `toml:"args"`
	UserAgent       *string           `toml:"user_agent"`
	Viewport        *browser.Viewport `toml:"viewport"`
	WaitUntil       *string           `toml:"wait_until"`
	NavTimeout      *string           `toml:"nav_timeout"`
	FixedWait       *string           `toml:"fixed_wait"`
	Selector        *string           `toml:"selector"`
	SelectorTimeout *string           `toml:"selector_timeout"`
	AfterWait       *string           `toml:"after_wait"`
	Linger          *string           `toml:"linger"`
	Screenshot      *bool             `toml:"screenshot"`
	Stealth         *bool             `toml:"stealth"`
	OutputName      *string           `toml:"output_name"`
}

const (
	LinearTarget  = "linear"
	ZighangTarget = "zighang"
)

func Default() Config {
	return Config{
		OutputDir:     ".",
		Retention:     30 * 24 * time.Hour,
		Engine:        "playwright",
		DefaultTarget: ZighangTarget,
		Targets:       BuiltinTargets(),
	}
}

// BuiltinTargets returns the two shipped targets: a quick simple pass over
// linear.app and a full pass over a client-rendered job board.
func BuiltinTargets() map[string]Target {
	return map[string]Target{
		LinearTarget: {
			Name:       LinearTarget,
			URL:        "https://linear.app/",
			Variant:    theme.VariantSimple,
			SlowMo:     200 * time.Millisecond,
			WaitUntil:  browser.WaitLoad,
			FixedWait:  3 * time.Second,
			Linger:     5 * time.Second,
			OutputName: "linear-theme-simple",
		},
		ZighangTarget: {
			Name:    ZighangTarget,
			URL:     "https://zighang.com/it/",
			Variant: theme.VariantFull,
			SlowMo:  500 * time.Millisecond,
			Args: []string{
				"--disable-blink-features=AutomationControlled",
				"--disable-web-security",
				"--disable-features=VizDisplayCompositor",
			},
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Viewport:        &browser.Viewport{Width: 1920, Height: 1080},
			WaitUntil:       browser.WaitDOMContentLoaded,
			NavTimeout:      60 * time.Second,
			FixedWait:       8 * time.Second,
			Selector:        "body",
			SelectorTimeout: 10 * time.Second,
			AfterWait:       3 * time.Second,
			Screenshot:      true,
			OutputName:      "linear-theme",
		},
	}
}

func newTarget(name string) Target {
	return Target{
		Name:       name,
		Variant:    theme.VariantFull,
		Headless:   true,
		WaitUntil:  browser.WaitLoad,
		NavTimeout: 30 * time.Second,
		OutputName: name,
	}
}

func Load(o Overrides) (Config, error) {
	cfg := Default()

	if err := loadFile(&cfg, o.ConfigPath); err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(os.Getenv("STYLESNAP_OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("STYLESNAP_ENGINE")); v != "" {
		cfg.Engine = v
	}
	if v := strings.TrimSpace(os.Getenv("STYLESNAP_RETENTION")); v != "" {
		d, err := parseDuration("STYLESNAP_RETENTION", v)
		if err != nil {
			return Config{}, err
		}
		cfg.Retention = d
	}

	if strings.TrimSpace(o.OutputDir) != "" {
		cfg.OutputDir = o.OutputDir
	}
	if strings.TrimSpace(o.Engine) != "" {
		cfg.Engine = o.Engine
	}
	if strings.TrimSpace(o.Retention) != "" {
		d, err := parseDuration("retention", o.Retention)
		if err != nil {
			return Config{}, err
		}
		cfg.Retention = d
	}

	if _, err := browser.EngineByName(cfg.Engine); err != nil {
		return Config{}, err
	}
	if _, ok := cfg.Targets[cfg.DefaultTarget]; !ok {
		return Config{}, fmt.Errorf("default_target: %w: %s", ErrUnknownTarget, cfg.DefaultTarget)
	}
	return cfg, nil
}

// Target looks up a target by name. An empty name selects the default.
func (c Config) Target(name string) (Target, error) {
	if strings.TrimSpace(name) == "" {
		name = c.DefaultTarget
	}
	t, ok := c.Targets[name]
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	return t, nil
}

func (c Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchPaths lists the config files checked in order; the first one that
// exists is used.
func SearchPaths() []string {
	paths := []string{
		"/opt/homebrew/etc/stylesnap/config.toml",
		"/usr/local/etc/stylesnap/config.toml",
	}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "stylesnap", "config.toml"))
	}
	return paths
}

func userConfigDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func loadFile(cfg *Config, explicit string) error {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return err
		}
		return decodeFile(cfg, explicit)
	}
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return decodeFile(cfg, path)
	}
	return nil
}

func decodeFile(cfg *Config, path string) error {
	var raw rawConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := raw.apply(cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (raw rawConfig) apply(cfg *Config) error {
	if raw.OutputDir != "" {
		cfg.OutputDir = raw.OutputDir
	}
	if raw.Engine != "" {
		cfg.Engine = raw.Engine
	}
	if raw.DefaultTarget != "" {
		cfg.DefaultTarget = raw.DefaultTarget
	}
	if raw.Retention != "" {
		d, err := parseDuration("retention", raw.Retention)
		if err != nil {
			return err
		}
		cfg.Retention = d
	}
	for name, rt := range raw.Targets {
		t, ok := cfg.Targets[name]
		if !ok {
			t = newTarget(name)
		}
		if err := rt.apply(&t); err != nil {
			return fmt.Errorf("targets.%s: %w", name, err)
		}
		if t.URL == "" {
			return fmt.Errorf("targets.%s: url required", name)
		}
		cfg.Targets[name] = t
	}
	return nil
}

func (rt rawTarget) apply(t *Target) error {
	if rt.URL != nil {
		t.URL = *rt.URL
	}
	if rt.Variant != nil {
		v, err := theme.ParseVariant(*rt.Variant)
		if err != nil {
			return fmt.Errorf("variant: %w", err)
		}
		t.Variant = v
	}
	if rt.Headless != nil {
		t.Headless = *rt.Headless
	}
	if rt.Args != nil {
		t.Args = rt.Args
	}
	if rt.UserAgent != nil {
		t.UserAgent = *rt.UserAgent
	}
	if rt.Viewport != nil {
		vp := *rt.Viewport
		t.Viewport = &vp
	}
	if rt.WaitUntil != nil {
		w, err := browser.ParseWaitUntil(*rt.WaitUntil)
		if err != nil {
			return fmt.Errorf("wait_until: %w", err)
		}
		t.WaitUntil = w
	}
	if rt.Selector != nil {
		t.Selector = *rt.Selector
	}
	if rt.Screenshot != nil {
		t.Screenshot = *rt.Screenshot
	}
	if rt.Stealth != nil {
		t.Stealth = *rt.Stealth
	}
	if rt.OutputName != nil {
		t.OutputName = *rt.OutputName
	}
	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"slow_mo", rt.SlowMo, &t.SlowMo},
		{"nav_timeout", rt.NavTimeout, &t.NavTimeout},
		{"fixed_wait", rt.FixedWait, &t.FixedWait},
		{"selector_timeout", rt.SelectorTimeout, &t.SelectorTimeout},
		{"after_wait", rt.AfterWait, &t.AfterWait},
		{"linger", rt.Linger, &t.Linger},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := parseDuration(d.key, *d.src)
		if err != nil {
			return err
		}
		*d.dst = v
	}
	return nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", key, value)
	}
	return d, nil
}

func (t Target) LaunchOptions() browser.LaunchOptions {
	return browser.LaunchOptions{
		Headless:  t.Headless,
		SlowMo:    t.SlowMo,
		Args:      t.Args,
		UserAgent: t.UserAgent,
		Viewport:  t.Viewport,
		Stealth:   t.Stealth,
	}
}

func (t Target) GotoOptions() browser.GotoOptions {
	return browser.GotoOptions{WaitUntil: t.WaitUntil, Timeout: t.NavTimeout}
}

func (t Target) SettleOptions() browser.SettleOptions {
	return browser.SettleOptions{
		FixedWait:       t.FixedWait,
		Selector:        t.Selector,
		SelectorTimeout: t.SelectorTimeout,
		AfterWait:       t.AfterWait,
	}
}

func (t Target) ExtractConfig() theme.Config {
	return theme.ConfigFor(t.Variant)
}
