package theme

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Snapshot is the serialized result of one extraction pass.
type Snapshot struct {
	Timestamp    string                                 `json:"timestamp"`
	URL          string                                 `json:"url"`
	CSSVariables *orderedmap.OrderedMap[string, string] `json:"cssVariables"`
	Body         *StyleBundle                           `json:"body,omitempty"`
	Navigation   *StyleBundle                           `json:"navigation,omitempty"`
	Buttons      []StyleBundle                          `json:"buttons"`
	Headings     map[string]StyleBundle                 `json:"headings"`
	Cards        []StyleBundle                          `json:"cards"`
	Links        []StyleBundle                          `json:"links,omitempty"`
	Inputs       []StyleBundle                          `json:"inputs,omitempty"`
	Viewport     *Viewport                              `json:"viewport,omitempty"`
	Meta         *Meta                                  `json:"meta,omitempty"`
}

// StyleBundle holds the computed styles of one element. Groups and
// properties that were not read for the element's region stay nil; a
// property that was read keeps its value even when the page reported "".
type StyleBundle struct {
	ClassName  *string     `json:"className,omitempty"`
	Colors     *Colors     `json:"colors,omitempty"`
	Typography *Typography `json:"typography,omitempty"`
	Spacing    *Spacing    `json:"spacing,omitempty"`
	Layout     *Layout     `json:"layout,omitempty"`

	BorderRadius   *string `json:"borderRadius,omitempty"`
	BoxShadow      *string `json:"boxShadow,omitempty"`
	Transform      *string `json:"transform,omitempty"`
	Transition     *string `json:"transition,omitempty"`
	Border         *string `json:"border,omitempty"`
	BackdropFilter *string `json:"backdropFilter,omitempty"`
}

type Colors struct {
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	Color           *string `json:"color,omitempty"`
	BorderColor     *string `json:"borderColor,omitempty"`
	OutlineColor    *string `json:"outlineColor,omitempty"`
}

type Typography struct {
	FontFamily    *string `json:"fontFamily,omitempty"`
	FontSize      *string `json:"fontSize,omitempty"`
	FontWeight    *string `json:"fontWeight,omitempty"`
	LineHeight    *string `json:"lineHeight,omitempty"`
	LetterSpacing *string `json:"letterSpacing,omitempty"`
}

type Spacing struct {
	Margin  *string `json:"margin,omitempty"`
	Padding *string `json:"padding,omitempty"`
	Gap     *string `json:"gap,omitempty"`
}

type Layout struct {
	Display             *string `json:"display,omitempty"`
	FlexDirection       *string `json:"flexDirection,omitempty"`
	JustifyContent      *string `json:"justifyContent,omitempty"`
	AlignItems          *string `json:"alignItems,omitempty"`
	GridTemplateColumns *string `json:"gridTemplateColumns,omitempty"`
	Width               *string `json:"width,omitempty"`
	MaxWidth            *string `json:"maxWidth,omitempty"`
}

// Value returns the property behind p, or "" when it was not read.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Text wraps s for use as a read property.
func Text(s string) *string {
	return &s
}

type Viewport struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
}

type Meta struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	UserAgent string `json:"userAgent"`
}

// ElementSample is one match of a caller-supplied selector.
type ElementSample struct {
	InnerHTML string       `json:"innerHTML"`
	Styles    SampleStyles `json:"styles"`
}

type SampleStyles struct {
	BackgroundColor string `json:"backgroundColor"`
	Color           string `json:"color"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	Padding         string `json:"padding"`
	Margin          string `json:"margin"`
	BorderRadius    string `json:"borderRadius"`
	BoxShadow       string `json:"boxShadow"`
}

// Summary counts what a snapshot captured.
type Summary struct {
	Variables int `json:"variables"`
	Buttons   int `json:"buttons"`
	Cards     int `json:"cards"`
	Headings  int `json:"headings"`
	Links     int `json:"links"`
	Inputs    int `json:"inputs"`
}

func (s *Snapshot) Summary() Summary {
	sum := Summary{
		Buttons:  len(s.Buttons),
		Cards:    len(s.Cards),
		Headings: len(s.Headings),
		Links:    len(s.Links),
		Inputs:   len(s.Inputs),
	}
	if s.CSSVariables != nil {
		sum.Variables = s.CSSVariables.Len()
	}
	return sum
}
