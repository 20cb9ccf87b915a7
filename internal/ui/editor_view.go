package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/mentionly/internal/mention"
	"github.com/gravitrone/mentionly/internal/ui/components"
)

const (
	caretGlyph    = "█"
	popupMaxWidth = 42
)

// View renders the document with the caret.
func (e *Editor) View() string {
	if e.doc == nil {
		return MutedStyle.Render("(detached)")
	}
	segs, at := e.doc.Segments()
	caret := ""
	if e.focused && at >= 0 {
		caret = CaretStyle.Render(caretGlyph)
	}
	if len(segs) == 0 && e.opts.Placeholder != "" {
		return caret + PlaceholderStyle.Render(e.opts.Placeholder)
	}

	var b strings.Builder
	for i, s := range segs {
		if i == at {
			b.WriteString(caret)
		}
		b.WriteString(e.renderSegment(s))
	}
	if at == len(segs) {
		b.WriteString(caret)
	}
	return b.String()
}

func (e *Editor) renderSegment(s mention.Segment) string {
	switch s.Kind {
	case mention.SegmentBreak:
		return "\n"
	case mention.SegmentToken:
		return MentionStyle.Render(components.SanitizeOneLine(s.Visual()))
	}
	lines := strings.Split(components.SanitizeText(s.Text), "\n")
	for i, line := range lines {
		lines[i] = NormalStyle.Render(line)
	}
	return strings.Join(lines, "\n")
}

// PopupView renders the candidate popup, or "" when it is closed.
func (e *Editor) PopupView() string {
	if !e.open {
		return ""
	}
	width := popupMaxWidth
	if e.width > 0 && e.width < width {
		width = e.width
	}
	inner := width - 4

	trig, _ := mention.FindTrigger(e.triggers, e.active)
	titleStyle := PopupTitleStyle
	if trig != nil && trig.IsCommand() {
		titleStyle = CommandStyle
	}
	title := titleStyle.Render(components.ClampTextWidth(e.active+e.query, inner-2))
	if e.resolver.Loading() {
		title += " " + e.spinner.View()
	}

	rows := []string{title}
	items := e.resolver.Items()
	switch {
	case len(items) == 0 && e.resolver.Loading():
		rows = append(rows, MutedStyle.Render("searching…"))
	case len(items) == 0:
		rows = append(rows, MutedStyle.Render("no matches"))
	}
	for rel, label := range e.list.Visible() {
		abs := e.list.RelToAbs(rel)
		if abs < len(items) {
			if desc, ok := items[abs].Extra["description"].(string); ok && desc != "" {
				label += "  " + desc
			}
		}
		label = components.ClampTextWidth(components.SanitizeOneLine(label), inner-2)
		var row string
		if e.list.IsSelected(abs) {
			row = SelectedStyle.Render("› " + label)
		} else {
			row = NormalStyle.Render("  " + label)
		}
		if e.opts.Zones != nil {
			row = e.opts.Zones.Mark(e.itemZone(abs), row)
		}
		rows = append(rows, row)
	}
	if n := e.list.Len(); n > e.list.PageSize {
		rows = append(rows, MutedStyle.Render(fmt.Sprintf("%d/%d", e.list.Selected()+1, n)))
	}

	box := PopupStyle.Width(inner + 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if e.opts.PopupMode != mention.PopupCursor {
		return box
	}
	left := e.position.Left
	if e.width > 0 {
		left = min(left, max(0, e.width-lipgloss.Width(box)))
	}
	return components.Indent(box, left)
}
