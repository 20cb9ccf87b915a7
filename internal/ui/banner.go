package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
               _   _          _
 _ __  ___ _ _| |_(_)___ _ _ | |_  _
| '  \/ -_) ' \  _| / _ \ ' \| | || |
|_|_|_\___|_||_\__|_\___/_||_|_|\_, |
                                |__/`

const bannerSubtitle = "mention-aware drafting • type @, # or / to look things up"

// RenderBanner returns the styled banner. Narrow terminals get a one-line wordmark.
func RenderBanner(width int) string {
	lines := splitLines(bannerArt)

	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	if width > 0 && width < maxWidth {
		return BannerStyle.Render("mentionly")
	}

	baseStyle := lipgloss.NewStyle().Foreground(ColorPrimary)
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(baseStyle.Render(line))
		b.WriteString("\n")
	}

	blockWidth := max(maxWidth, lipgloss.Width(bannerSubtitle))
	if width > 0 && blockWidth > width {
		return "\n" + b.String()
	}
	subtitle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(bannerSubtitle)

	return "\n" + b.String() + "\n" + subtitle + "\n"
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
