package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/patrickjm/stylesnap/internal/theme"
)

// ToMarkdown renders a snapshot as a design-token document. Custom
// properties keep the order they had on the page.
func ToMarkdown(s *theme.Snapshot, title string) string {
	var sb strings.Builder

	if title == "" {
		title = s.URL
	}
	sb.WriteString(fmt.Sprintf("# Theme Snapshot - %s\n\n", title))
	if s.URL != "" {
		sb.WriteString(fmt.Sprintf("- URL: %s\n", s.URL))
	}
	if s.Timestamp != "" {
		sb.WriteString(fmt.Sprintf("- Captured: %s\n", s.Timestamp))
	}
	sum := s.Summary()
	sb.WriteString(fmt.Sprintf("- Variables: %d, buttons: %d, cards: %d, headings: %d\n\n",
		sum.Variables, sum.Buttons, sum.Cards, sum.Headings))

	sb.WriteString("## CSS Variables\n\n")
	if sum.Variables == 0 {
		sb.WriteString("_No custom properties found._\n\n")
	} else {
		sb.WriteString("```css\n:root {\n")
		for pair := s.CSSVariables.Oldest(); pair != nil; pair = pair.Next() {
			sb.WriteString(fmt.Sprintf("  %s: %s;\n", pair.Key, pair.Value))
		}
		sb.WriteString("}\n```\n\n")
	}

	if s.Body != nil {
		writeBundle(&sb, "## Body", *s.Body)
	}
	if s.Navigation != nil {
		writeBundle(&sb, "## Navigation", *s.Navigation)
	}

	if len(s.Headings) > 0 {
		sb.WriteString("## Headings\n\n")
		tags := make([]string, 0, len(s.Headings))
		for tag := range s.Headings {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			writeBundle(&sb, "### "+strings.ToUpper(tag), s.Headings[tag])
		}
	}

	writeList(&sb, "Buttons", "Button", s.Buttons)
	writeList(&sb, "Cards", "Card", s.Cards)
	writeList(&sb, "Links", "Link", s.Links)
	writeList(&sb, "Inputs", "Input", s.Inputs)

	if s.Viewport != nil || s.Meta != nil {
		sb.WriteString("## Page\n\n")
		sb.WriteString("| Property | Value |\n|---|---|\n")
		if s.Viewport != nil {
			sb.WriteString(fmt.Sprintf("| Viewport | %dx%d @%gx |\n", s.Viewport.Width, s.Viewport.Height, s.Viewport.DevicePixelRatio))
		}
		if s.Meta != nil {
			writeRow(&sb, "Title", s.Meta.Title)
			writeRow(&sb, "User agent", s.Meta.UserAgent)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeList(sb *strings.Builder, heading, label string, items []theme.StyleBundle) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", heading))
	for i, b := range items {
		name := fmt.Sprintf("### %s %d", label, i+1)
		if cls := theme.Value(b.ClassName); cls != "" {
			name += fmt.Sprintf(" (`%s`)", cls)
		}
		writeBundle(sb, name, b)
	}
}

func writeBundle(sb *strings.Builder, heading string, b theme.StyleBundle) {
	rows := bundleRows(b)
	sb.WriteString(heading + "\n\n")
	if len(rows) == 0 {
		sb.WriteString("_No styles captured._\n\n")
		return
	}
	sb.WriteString("| Property | Value |\n|---|---|\n")
	for _, r := range rows {
		writeRow(sb, r[0], r[1])
	}
	sb.WriteString("\n")
}

func writeRow(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("| %s | `%s` |\n", name, strings.ReplaceAll(value, "|", "\\|")))
}

// bundleRows flattens a bundle into property/value pairs in a fixed order.
func bundleRows(b theme.StyleBundle) [][2]string {
	var rows [][2]string
	add := func(name string, value *string) {
		if v := theme.Value(value); v != "" {
			rows = append(rows, [2]string{name, v})
		}
	}
	if c := b.Colors; c != nil {
		add("background-color", c.BackgroundColor)
		add("color", c.Color)
		add("border-color", c.BorderColor)
		add("outline-color", c.OutlineColor)
	}
	if t := b.Typography; t != nil {
		add("font-family", t.FontFamily)
		add("font-size", t.FontSize)
		add("font-weight", t.FontWeight)
		add("line-height", t.LineHeight)
		add("letter-spacing", t.LetterSpacing)
	}
	if s := b.Spacing; s != nil {
		add("margin", s.Margin)
		add("padding", s.Padding)
		add("gap", s.Gap)
	}
	if l := b.Layout; l != nil {
		add("display", l.Display)
		add("flex-direction", l.FlexDirection)
		add("justify-content", l.JustifyContent)
		add("align-items", l.AlignItems)
		add("grid-template-columns", l.GridTemplateColumns)
		add("width", l.Width)
		add("max-width", l.MaxWidth)
	}
	add("border-radius", b.BorderRadius)
	add("box-shadow", b.BoxShadow)
	add("border", b.Border)
	add("transform", b.Transform)
	add("transition", b.Transition)
	add("backdrop-filter", b.BackdropFilter)
	return rows
}
