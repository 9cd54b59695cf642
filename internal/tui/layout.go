package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	maxModalW = 72
	minModalW = 36
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		lines[i] = fitLine(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

// fitLine pads or truncates ln to exactly width columns.
func fitLine(ln string, width int) string {
	// Bound StringWidth on extremely long lines.
	if width > 0 && len(ln) > 8192 {
		ln = xansi.Cut(ln, 0, width)
	}
	w := xansi.StringWidth(ln)
	if w > width {
		switch {
		case width <= 0:
			ln = ""
		case width == 1:
			ln = xansi.Cut(ln, 0, 1)
		default:
			ln = xansi.Cut(ln, 0, width-1) + "…"
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

func modalWidth(termW int) int {
	w := termW - 4
	if w > maxModalW {
		w = maxModalW
	}
	if w < minModalW {
		w = minModalW
	}
	return w
}

// modalBodyWidth is the usable content width inside a modal box of width w.
func modalBodyWidth(termW int) int {
	// border (2) + horizontal padding (4)
	return modalWidth(termW) - 6
}

func renderModalBox(termW int, title string, content string) string {
	w := modalWidth(termW)
	bodyW := modalBodyWidth(termW)

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Width(bodyW).
		Render(title)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSelectedBorder).
		Padding(1, 2).
		Width(w - 2)
	return box.Render(header + "\n\n" + content)
}

// placeCenter centers s in a width x height area.
func placeCenter(width, height int, s string) string {
	if width <= 0 || height <= 0 {
		return s
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}
