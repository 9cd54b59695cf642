package tui

import (
	"fmt"
	"io"
	"strings"

	"partners-cli/internal/console"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// userItem is one table row in the users list.
type userItem struct {
	row console.Row
}

func (i userItem) FilterValue() string { return i.row.UserName }

// Column widths for the users table; countries take the rest of the row.
const (
	colNameW = 24
	colCodeW = 12
	colGapW  = 2
)

func renderTableHeader(width int) string {
	st := lipgloss.NewStyle().Bold(true).Foreground(colorChromeMutedFg)
	cells := fitLine("User Name", colNameW) + strings.Repeat(" ", colGapW) +
		fitLine("User Code", colCodeW) + strings.Repeat(" ", colGapW) +
		"Countries"
	return st.Render(fitLine(cells, width))
}

type userRowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newUserRowDelegate() userRowDelegate {
	return userRowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d userRowDelegate) Height() int  { return 1 }
func (d userRowDelegate) Spacing() int { return 0 }
func (d userRowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d userRowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	it, ok := item.(userItem)
	if contentW < 4 || !ok {
		fmt.Fprint(w, "")
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	gap := strings.Repeat(" ", colGapW)
	left := style.Render(fitLine(it.row.UserName, colNameW) + gap + fitLine(dashIfEmpty(it.row.UserCode), colCodeW) + gap)

	tagsW := contentW - colNameW - colCodeW - 2*colGapW
	line := left + renderTags(it.row.Tags, it.row.Hidden, tagsW)

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += style.Render(strings.Repeat(" ", contentW-lineW))
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}
	fmt.Fprint(w, line)
}

// renderTags draws country chips followed by the "+N More" indicator, dropping
// chips that do not fit in width into the indicator.
func renderTags(tags []string, hidden int, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	used := 0
	for i, t := range tags {
		chip := styleTag().Render(t)
		chipW := xansi.StringWidth(chip) + 1
		reserve := 0
		if i < len(tags)-1 || hidden > 0 {
			reserve = len(console.MoreLabel(hidden+len(tags)-i)) + 1
		}
		if used+chipW+reserve > width {
			hidden += len(tags) - i
			break
		}
		b.WriteString(chip + " ")
		used += chipW
	}
	if hidden > 0 {
		b.WriteString(styleMuted().Render(console.MoreLabel(hidden)))
	}
	return b.String()
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
