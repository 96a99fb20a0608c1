package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CustomPropertyPrefix marks a CSS custom property.
const CustomPropertyPrefix = "--"

var headingTags = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

// Evaluator runs a function inside a rendered page.
type Evaluator interface {
	Evaluate(fn string, arg any) (json.RawMessage, error)
}

// Extract reads a snapshot from the live page in a single evaluation pass.
func Extract(page Evaluator, cfg Config) (*Snapshot, error) {
	arg, err := toArg(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode extract config: %w", err)
	}
	raw, err := page.Evaluate(snapshotScript, arg)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := decodeResult(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.Normalize(cfg)
	return &snap, nil
}

// Normalize trims a decoded snapshot to what cfg asked for. Lists are
// capped; only h1-h6 and custom properties survive.
func (s *Snapshot) Normalize(cfg Config) {
	vars := orderedmap.New[string, string]()
	if s.CSSVariables != nil {
		for pair := s.CSSVariables.Oldest(); pair != nil; pair = pair.Next() {
			if strings.HasPrefix(pair.Key, CustomPropertyPrefix) {
				vars.Set(pair.Key, strings.TrimSpace(pair.Value))
			}
		}
	}
	s.CSSVariables = vars

	r := cfg.Regions
	if r.Body == nil {
		s.Body = nil
	}
	if r.Navigation == nil {
		s.Navigation = nil
	}
	s.Buttons = capList(s.Buttons, r.Buttons, true)
	s.Cards = capList(s.Cards, r.Cards, true)
	s.Links = capList(s.Links, r.Links, false)
	s.Inputs = capList(s.Inputs, r.Inputs, false)

	headings := make(map[string]StyleBundle, len(s.Headings))
	if r.Headings != nil {
		for tag, bundle := range s.Headings {
			if headingTags[tag] {
				headings[tag] = bundle
			}
		}
	}
	s.Headings = headings

	if !cfg.PageInfo {
		s.Viewport = nil
		s.Meta = nil
	}
}

// capList trims items to the region limit. A disabled region yields an
// empty list when keep is set and nil otherwise.
func capList(items []StyleBundle, region *Region, keep bool) []StyleBundle {
	if region == nil {
		if keep {
			return []StyleBundle{}
		}
		return nil
	}
	if items == nil {
		return []StyleBundle{}
	}
	if region.Limit > 0 && len(items) > region.Limit {
		return items[:region.Limit]
	}
	return items
}

// Probe reads a fixed set of styles for every element matching each of the
// caller's selectors. Selectors go to the page as-is.
func Probe(page Evaluator, selectors []string) (map[string][]ElementSample, error) {
	if selectors == nil {
		selectors = []string{}
	}
	arg, err := toArg(selectors)
	if err != nil {
		return nil, err
	}
	raw, err := page.Evaluate(probeScript, arg)
	if err != nil {
		return nil, err
	}
	results := map[string][]ElementSample{}
	if err := decodeResult(raw, &results); err != nil {
		return nil, fmt.Errorf("decode probe: %w", err)
	}
	return results, nil
}

// toArg converts v into plain JSON values so any driver can serialize it
// into the page.
func toArg(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeResult accepts either a JSON document or a JSON string holding one.
func decodeResult(raw json.RawMessage, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		raw = json.RawMessage(text)
	}
	return json.Unmarshal(raw, out)
}
