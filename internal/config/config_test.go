package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickjm/stylesnap/internal/browser"
	"github.com/patrickjm/stylesnap/internal/theme"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STYLESNAP_OUTPUT_DIR", "")
	t.Setenv("STYLESNAP_ENGINE", "")
	t.Setenv("STYLESNAP_RETENTION", "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestBuiltinTargets(t *testing.T) {
	targets := BuiltinTargets()

	linear := targets[LinearTarget]
	if linear.Variant != theme.VariantSimple || linear.Headless || linear.NavTimeout != 0 {
		t.Fatalf("unexpected linear target: %+v", linear)
	}
	if linear.FixedWait != 3*time.Second || linear.Linger != 5*time.Second || linear.Screenshot {
		t.Fatalf("unexpected linear timing: %+v", linear)
	}

	z := targets[ZighangTarget]
	if z.WaitUntil != browser.WaitDOMContentLoaded || z.NavTimeout != 60*time.Second {
		t.Fatalf("unexpected zighang navigation: %+v", z)
	}
	if z.FixedWait != 8*time.Second || z.Selector != "body" || z.SelectorTimeout != 10*time.Second || z.AfterWait != 3*time.Second {
		t.Fatalf("unexpected zighang settle: %+v", z)
	}
	if z.Viewport == nil || z.Viewport.Width != 1920 || z.Viewport.Height != 1080 {
		t.Fatalf("unexpected viewport: %+v", z.Viewport)
	}
	if z.OutputName != "linear-theme" || !z.Screenshot || len(z.Args) != 3 {
		t.Fatalf("unexpected zighang output: %+v", z)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != "." || cfg.Engine != "playwright" || cfg.DefaultTarget != ZighangTarget {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	target, err := cfg.Target("")
	if err != nil || target.Name != ZighangTarget {
		t.Fatalf("expected default target, got %v %v", target.Name, err)
	}
}

func TestLoadFileMergesTargets(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
output_dir = "/tmp/themes"
retention = "48h"
engine = "rod"
default_target = "docs"

[targets.docs]
url = "https://example.com/docs"
variant = "simple"
wait_until = "networkidle"
fixed_wait = "1500ms"
viewport = { width = 1280, height = 720 }

[targets.linear]
headless = true
linger = "0s"
`)
	cfg, err := Load(Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != "/tmp/themes" || cfg.Retention != 48*time.Hour || cfg.Engine != "rod" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	docs, err := cfg.Target("")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if docs.URL != "https://example.com/docs" || docs.Variant != theme.VariantSimple || docs.WaitUntil != browser.WaitNetworkIdle {
		t.Fatalf("unexpected docs target: %+v", docs)
	}
	if docs.FixedWait != 1500*time.Millisecond || docs.Viewport == nil || docs.Viewport.Width != 1280 {
		t.Fatalf("unexpected docs timing: %+v", docs)
	}
	if !docs.Headless || docs.OutputName != "docs" || docs.NavTimeout != 30*time.Second {
		t.Fatalf("new targets should start from defaults: %+v", docs)
	}
	linear, _ := cfg.Target(LinearTarget)
	if !linear.Headless || linear.Linger != 0 || linear.URL != "https://linear.app/" {
		t.Fatalf("built-in should be patched, not replaced: %+v", linear)
	}
	names := strings.Join(cfg.TargetNames(), ",")
	if names != "docs,linear,zighang" {
		t.Fatalf("unexpected target names: %s", names)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"duration":   "[targets.linear]\nfixed_wait = \"soon\"\n",
		"wait":       "[targets.linear]\nwait_until = \"idle\"\n",
		"variant":    "[targets.linear]\nvariant = \"deep\"\n",
		"engine":     "engine = \"firefox\"\n",
		"missingURL": "[targets.new]\nvariant = \"full\"\n",
		"default":    "default_target = \"nope\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			if _, err := Load(Overrides{ConfigPath: writeConfig(t, body)}); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoadDurationErrorNamesKey(t *testing.T) {
	isolate(t)
	_, err := Load(Overrides{ConfigPath: writeConfig(t, "[targets.linear]\nafter_wait = \"x\"\n")})
	if err == nil || !strings.Contains(err.Error(), "targets.linear: after_wait") {
		t.Fatalf("expected key in error, got %v", err)
	}
}

func TestEnvAndOverridePrecedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "output_dir = \"/from/file\"\n")
	t.Setenv("STYLESNAP_OUTPUT_DIR", "/from/env")
	t.Setenv("STYLESNAP_RETENTION", "72h")

	cfg, err := Load(Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != "/from/env" || cfg.Retention != 72*time.Hour {
		t.Fatalf("env should beat file: %+v", cfg)
	}

	cfg, err = Load(Overrides{ConfigPath: path, OutputDir: "/from/flag", Retention: "1h", Engine: "rod"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != "/from/flag" || cfg.Retention != time.Hour || cfg.Engine != "rod" {
		t.Fatalf("overrides should win: %+v", cfg)
	}
}

func TestXDGConfigFileIsFound(t *testing.T) {
	isolate(t)
	dir := os.Getenv("XDG_CONFIG_HOME")
	if err := os.MkdirAll(filepath.Join(dir, "stylesnap"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stylesnap", "config.toml"), []byte("engine = \"rod\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range SearchPaths()[:2] {
		if _, err := os.Stat(p); err == nil {
			t.Skipf("system config present at %s", p)
		}
	}
	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine != "rod" {
		t.Fatalf("expected XDG config to apply, got %s", cfg.Engine)
	}
}

func TestUnknownTarget(t *testing.T) {
	_, err := Default().Target("missing")
	if !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestTargetOptions(t *testing.T) {
	z := BuiltinTargets()[ZighangTarget]
	launch := z.LaunchOptions()
	if launch.Headless || launch.SlowMo != 500*time.Millisecond || launch.UserAgent == "" {
		t.Fatalf("unexpected launch options: %+v", launch)
	}
	if g := z.GotoOptions(); g.WaitUntil != browser.WaitDOMContentLoaded || g.Timeout != time.Minute {
		t.Fatalf("unexpected goto options: %+v", g)
	}
	if s := z.SettleOptions(); s.Selector != "body" || s.FixedWait != 8*time.Second {
		t.Fatalf("unexpected settle options: %+v", s)
	}
	if c := z.ExtractConfig(); c.Variant != theme.VariantFull {
		t.Fatalf("unexpected extract config: %+v", c)
	}
}
