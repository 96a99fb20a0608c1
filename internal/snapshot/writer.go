package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const dateLayout = "2006-01-02"

// FileName is the snapshot file name for a run on t's UTC calendar day.
func FileName(name string, t time.Time) string {
	return name + "-" + t.UTC().Format(dateLayout) + ".json"
}

func ScreenshotName(name string, t time.Time) string {
	return name + "-screenshot-" + t.UTC().Format(dateLayout) + ".png"
}

// Write stores v as indented JSON at path, replacing any existing file.
func Write(v any, path string) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

type Screenshotter interface {
	Screenshot(path string, fullPage bool) error
}

func CaptureScreenshot(page Screenshotter, path string, fullPage bool) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return page.Screenshot(path, fullPage)
}
