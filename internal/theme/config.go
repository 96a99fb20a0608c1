package theme

import (
	"fmt"
	"strings"
)

// Variant selects how deep an extraction goes.
type Variant string

const (
	VariantFull   Variant = "full"
	VariantSimple Variant = "simple"
)

func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VariantFull, nil
	case VariantFull, VariantSimple:
		return v, nil
	default:
		return "", fmt.Errorf("unknown variant %q", s)
	}
}

// Region names the elements to read and which computed properties to keep.
// Single-element regions use the first match; list regions keep at most
// Limit matches in document order (0 keeps all).
type Region struct {
	Selector  string              `json:"selector"`
	Groups    map[string][]string `json:"groups"`
	Extras    []string            `json:"extras,omitempty"`
	ClassName bool                `json:"className,omitempty"`
	Limit     int                 `json:"limit,omitempty"`
}

// Regions left nil are not extracted.
type Regions struct {
	Body       *Region `json:"body,omitempty"`
	Navigation *Region `json:"navigation,omitempty"`
	Buttons    *Region `json:"buttons,omitempty"`
	Headings   *Region `json:"headings,omitempty"`
	Cards      *Region `json:"cards,omitempty"`
	Links      *Region `json:"links,omitempty"`
	Inputs     *Region `json:"inputs,omitempty"`
}

type Config struct {
	Variant Variant `json:"variant"`
	Regions Regions `json:"regions"`
	// PageInfo adds viewport and meta sections.
	PageInfo bool `json:"pageInfo"`
}

var (
	colorFields      = []string{"backgroundColor", "color", "borderColor", "outlineColor"}
	typographyFields = []string{"fontFamily", "fontSize", "fontWeight", "lineHeight", "letterSpacing"}
	spacingFields    = []string{"margin", "padding", "gap"}
	layoutFields     = []string{"display", "flexDirection", "justifyContent", "alignItems", "gridTemplateColumns", "width", "maxWidth"}
)

func allGroups() map[string][]string {
	return map[string][]string{
		"colors":     colorFields,
		"typography": typographyFields,
		"spacing":    spacingFields,
		"layout":     layoutFields,
	}
}

const (
	DefaultButtonCap = 10
	DefaultCardCap   = 5
	DefaultLinkCap   = 10
	DefaultInputCap  = 10
	SimpleButtonCap  = 5
)

func FullConfig() Config {
	return Config{
		Variant:  VariantFull,
		PageInfo: true,
		Regions: Regions{
			Body: &Region{Selector: "body", Groups: allGroups()},
			Navigation: &Region{
				Selector: `nav, header, [class*="nav"], [class*="header"]`,
				Groups:   allGroups(),
			},
			Buttons: &Region{
				Selector:  `button, [role="button"], .button`,
				Groups:    allGroups(),
				Extras:    []string{"borderRadius", "boxShadow", "transform", "transition"},
				ClassName: true,
				Limit:     DefaultButtonCap,
			},
			Headings: &Region{
				Selector: "h1, h2, h3, h4, h5, h6",
				Groups: map[string][]string{
					"colors":     colorFields,
					"typography": typographyFields,
					"spacing":    spacingFields,
				},
			},
			Cards: &Region{
				Selector: `[class*="card"], [class*="panel"], [class*="container"]`,
				Groups: map[string][]string{
					"colors":  colorFields,
					"spacing": spacingFields,
					"layout":  layoutFields,
				},
				Extras:    []string{"borderRadius", "boxShadow", "border", "backdropFilter"},
				ClassName: true,
				Limit:     DefaultCardCap,
			},
			Links: &Region{
				Selector: "a",
				Groups: map[string][]string{
					"colors":     colorFields,
					"typography": typographyFields,
				},
				Limit: DefaultLinkCap,
			},
			Inputs: &Region{
				Selector: "input, textarea, select",
				Groups: map[string][]string{
					"colors":     colorFields,
					"typography": typographyFields,
					"spacing":    spacingFields,
				},
				Extras: []string{"border", "borderRadius"},
				Limit:  DefaultInputCap,
			},
		},
	}
}

func SimpleConfig() Config {
	return Config{
		Variant: VariantSimple,
		Regions: Regions{
			Body: &Region{
				Selector: "body",
				Groups: map[string][]string{
					"colors":     {"backgroundColor", "color"},
					"typography": {"fontFamily", "fontSize"},
				},
			},
			Buttons: &Region{
				Selector: "button",
				Groups: map[string][]string{
					"colors":     {"backgroundColor", "color"},
					"typography": {"fontSize"},
					"spacing":    {"padding"},
				},
				Extras: []string{"borderRadius"},
				Limit:  SimpleButtonCap,
			},
		},
	}
}

func ConfigFor(v Variant) Config {
	if v == VariantSimple {
		return SimpleConfig()
	}
	return FullConfig()
}
