package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/patrickjm/stylesnap/internal/theme"
)

// Entry is one snapshot file found in a store.
type Entry struct {
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Path       string    `json:"path"`
	Screenshot string    `json:"screenshot,omitempty"`
	Size       int64     `json:"size"`
}

// Store keeps snapshot files in one directory, one file per name and day.
type Store struct {
	Root      string
	Retention time.Duration
}

func (s Store) EnsureDir() error {
	if s.Root == "" {
		return errors.New("output dir required")
	}
	return os.MkdirAll(s.Root, 0o755)
}

func (s Store) Path(name string, t time.Time) string {
	return filepath.Join(s.Root, FileName(sanitizeName(name), t))
}

func (s Store) ScreenshotPath(name string, t time.Time) string {
	return filepath.Join(s.Root, ScreenshotName(sanitizeName(name), t))
}

// Save writes snap under name for t's day and returns the path. A second
// save on the same day replaces the first.
func (s Store) Save(name string, t time.Time, snap *theme.Snapshot) (string, error) {
	if sanitizeName(name) == "" {
		return "", errors.New("snapshot name required")
	}
	if err := s.EnsureDir(); err != nil {
		return "", err
	}
	path := s.Path(name, t)
	return path, Write(snap, path)
}

func Load(path string) (*theme.Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap theme.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// List returns the snapshots in the store, sorted by name then date. Files
// that only share the naming scheme are skipped, so an output dir shared
// with other tools never lists or prunes their JSON.
func (s Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name, date, ok := parseFileName(de.Name())
		if !ok {
			continue
		}
		path := filepath.Join(s.Root, de.Name())
		if !isSnapshotFile(path) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		e := Entry{Name: name, Date: date, Path: path, Size: info.Size()}
		shot := s.ScreenshotPath(name, date)
		if _, err := os.Stat(shot); err == nil {
			e.Screenshot = shot
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

func (s Store) IsExpired(e Entry) bool {
	if s.Retention <= 0 {
		return false
	}
	// A snapshot covers its whole day.
	deadline := e.Date.Add(24 * time.Hour).Add(s.Retention)
	return time.Now().UTC().After(deadline)
}

// Prune removes expired snapshots and their screenshots. With dryRun set
// it only reports what would go.
func (s Store) Prune(dryRun bool) ([]Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	removed := make([]Entry, 0)
	for _, e := range entries {
		if !s.IsExpired(e) {
			continue
		}
		if !dryRun {
			if err := os.Remove(e.Path); err != nil {
				return removed, err
			}
			if e.Screenshot != "" {
				_ = os.Remove(e.Screenshot)
			}
		}
		removed = append(removed, e)
	}
	return removed, nil
}

// isSnapshotFile reports whether path decodes as a snapshot written by
// this tool: an object carrying a timestamp, a url and the custom
// property map.
func isSnapshotFile(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var head struct {
		Timestamp    string          `json:"timestamp"`
		URL          string          `json:"url"`
		CSSVariables json.RawMessage `json:"cssVariables"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return false
	}
	if head.Timestamp == "" || head.URL == "" {
		return false
	}
	return len(head.CSSVariables) > 0 && head.CSSVariables[0] == '{'
}

// parseFileName splits "<name>-YYYY-MM-DD.json".
func parseFileName(file string) (string, time.Time, bool) {
	base, ok := strings.CutSuffix(file, ".json")
	if !ok || len(base) < len(dateLayout)+2 {
		return "", time.Time{}, false
	}
	sep := len(base) - len(dateLayout) - 1
	if base[sep] != '-' {
		return "", time.Time{}, false
	}
	date, err := time.Parse(dateLayout, base[sep+1:])
	if err != nil {
		return "", time.Time{}, false
	}
	return base[:sep], date, true
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, string(filepath.Separator), "-")
	return name
}

// CheckWritable creates dir if needed and confirms files can be written there.
func CheckWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".stylesnap-writetest")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
