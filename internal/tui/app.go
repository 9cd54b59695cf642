package tui

import (
	"fmt"
	"strings"

	"partners-cli/internal/console"
	"partners-cli/internal/model"
	"partners-cli/internal/notify"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const breadcrumb = "Users & Partners › Users"

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	header := m.viewHeader(width)
	footer := m.viewFooter(width)

	var body string
	switch m.modal {
	case modalRecord:
		body = m.viewRecordModal()
	case modalRowMenu:
		body = m.viewRowMenu()
	case modalConfirmDelete:
		body = m.viewConfirmDelete()
	default:
		body = m.viewUsers(width)
	}

	if m.modal != modalNone && m.height > 0 {
		bodyH := m.height - headerLines - footerLines
		body = placeCenter(width, bodyH, body)
	}
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m appModel) viewHeader(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render(breadcrumb)
	var meta []string
	if m.console.Loading() {
		meta = append(meta, "loading…")
	}
	if m.console.Stale() {
		meta = append(meta, "stale: last refresh failed (r to retry)")
	}
	if m.endpoint != "" {
		meta = append(meta, m.endpoint)
	}
	line := title
	if len(meta) > 0 {
		line += "  " + styleMuted().Render(strings.Join(meta, "  "))
	}
	return fitLine(line, width) + "\n"
}

func (m appModel) viewUsers(width int) string {
	if !m.console.Loaded() {
		if m.console.Stale() {
			return styleMuted().Render("Could not load users. Press r to retry.")
		}
		return styleMuted().Render("Loading users…")
	}
	if len(m.usersList.Items()) == 0 {
		return m.viewEmptyState(width)
	}
	return renderTableHeader(width) + "\n" + m.usersList.View()
}

func (m appModel) viewEmptyState(width int) string {
	w := width - 4
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	title := lipgloss.NewStyle().Bold(true).Render(console.EmptyTitle)
	body := lipgloss.NewStyle().Width(w).Render(console.EmptyBody)
	action := renderButtons([]string{"n: " + console.EmptyAction}, 0)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(1, 2).
		Render(strings.Join([]string{title, "", body, "", action}, "\n"))
	if m.height > 0 {
		return placeCenter(width, m.height-headerLines-footerLines, box)
	}
	return box
}

func (m appModel) viewFooter(width int) string {
	toast := ""
	if m.toast != nil {
		toast = renderToast(*m.toast)
	}

	var help string
	switch m.modal {
	case modalRecord:
		if m.form.ReadOnly() {
			help = helpLine(m.modalKeys.AddNew, m.modalKeys.EditView, m.modalKeys.Cancel)
		} else {
			help = helpLine(m.modalKeys.Save, m.modalKeys.Cancel, m.modalKeys.Next, m.modalKeys.Toggle)
		}
	case modalRowMenu:
		help = "enter: select  esc: close"
	case modalConfirmDelete:
		help = "y: delete  esc: cancel"
	default:
		help = helpLine(m.keys.New, m.keys.View, m.keys.Edit, m.keys.Delete, m.keys.Menu, m.keys.Refresh, m.keys.Quit)
	}
	return fitLine(toast, width) + "\n\n" + styleMuted().Render(fitLine(help, width))
}

func renderToast(n notify.Notification) string {
	st := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	icon := "✓"
	switch n.Severity {
	case notify.SeverityError:
		st = st.Foreground(colorError)
		icon = "✗"
	default:
		st = st.Foreground(colorSuccess)
	}
	return st.Render(icon + " " + n.Message)
}

func (m appModel) viewRecordModal() string {
	title := m.form.Mode().Title()
	if m.form.ReadOnly() {
		return renderModalBox(m.width, title, m.viewRecordDetails())
	}

	bodyW := modalBodyWidth(m.width)
	errs := m.form.Errors()
	label := lipgloss.NewStyle().Bold(true)

	lines := []string{
		label.Render("User Name *"),
		renderInputLine(bodyW, m.nameInput.View(), m.focus == focusName),
	}
	if msg := errs[model.FieldUserName]; msg != "" {
		lines = append(lines, styleError().Render(msg))
	}
	lines = append(lines,
		"",
		label.Render("User Code"),
		renderInputLine(bodyW, m.codeInput.View(), m.focus == focusCode),
		"",
		label.Render("Countries *"),
		m.viewCountryPicker(bodyW),
	)
	if msg := errs[model.FieldCountries]; msg != "" {
		lines = append(lines, styleError().Render(msg))
	}
	lines = append(lines, "", renderSelectedTags(m.form.Countries(), bodyW), "")

	active := -1
	switch m.focus {
	case focusSave:
		active = 0
	case focusCancel:
		active = 1
	}
	saveLabel := "Save"
	if m.saving {
		saveLabel = "Saving…"
	}
	lines = append(lines, renderButtons([]string{saveLabel, "Cancel"}, active))
	return renderModalBox(m.width, title, strings.Join(lines, "\n"))
}

func pickerColumns(bodyW int) int {
	cols := bodyW / pickerCellW
	if cols < 1 {
		cols = 1
	}
	return cols
}

const pickerCellW = 16

func (m appModel) viewCountryPicker(bodyW int) string {
	selected := m.form.Countries()
	opts := model.PickerOptions(selected)
	cols := pickerColumns(bodyW)

	var rows []string
	var row strings.Builder
	for i, c := range opts {
		box := "[ ]"
		if model.HasCountry(selected, c) {
			box = "[x]"
		}
		cell := fitLine(box+" "+c, pickerCellW-1) + " "
		if m.focus == focusCountries && i == m.countryCursor {
			cell = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true).Render(cell)
		}
		row.WriteString(cell)
		if (i+1)%cols == 0 {
			rows = append(rows, row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

// renderSelectedTags shows the selection in toggle order.
func renderSelectedTags(countries []string, width int) string {
	if len(countries) == 0 {
		return styleMuted().Render("No countries selected")
	}
	var lines []string
	line := ""
	for _, c := range countries {
		chip := styleTag().Render(c)
		if line != "" && xansi.StringWidth(line)+1+xansi.StringWidth(chip) > width {
			lines = append(lines, line)
			line = ""
		}
		if line != "" {
			line += " "
		}
		line += chip
	}
	return strings.Join(append(lines, line), "\n")
}

func (m appModel) viewRecordDetails() string {
	rec, ok := m.form.Record()
	if !ok {
		return ""
	}
	bodyW := modalBodyWidth(m.width)
	details := renderMarkdown(model.DetailsMarkdown(rec), bodyW, m.theme)
	actions := renderButtons([]string{"a: Add New User", "e: Edit"}, -1)
	return details + "\n\n" + actions
}

func (m appModel) viewRowMenu() string {
	name := m.targetID
	if rec, ok := m.console.Lookup(m.targetID); ok {
		name = rec.UserName
	}
	var lines []string
	for i, l := range rowMenuLabels {
		prefix := "  "
		st := lipgloss.NewStyle()
		if i == m.menuIndex {
			prefix = "› "
			st = st.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
		}
		lines = append(lines, st.Render(prefix+l))
	}
	return renderModalBox(m.width, name, strings.Join(lines, "\n"))
}

func (m appModel) viewConfirmDelete() string {
	name := m.targetID
	if rec, ok := m.console.Lookup(m.targetID); ok {
		name = rec.UserName
	}
	body := fmt.Sprintf("Delete %q? This cannot be undone.", name)
	return renderConfirmModal(m.width, "Delete User", body, "Delete", "Cancel", m.confirmFocus)
}
