package tui

import (
	"errors"

	"partners-cli/internal/console"
	"partners-cli/internal/form"
	"partners-cli/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m, nil

	case refreshDoneMsg:
		m.syncRows()
		return m, nil

	case saveDoneMsg:
		m.saving = false
		if msg.err == nil && msg.record.ID != "" {
			m.pendingSelectID = msg.record.ID
		}
		m.syncRows()
		return m, nil

	case deleteDoneMsg:
		m.deleting = false
		m.syncRows()
		return m, nil

	case toastMsg:
		if !msg.ok {
			return m, nil
		}
		n := msg.n
		m.toast = &n
		m.toastSeq = n.Seq
		return m, tea.Batch(m.waitToastCmd(), m.toastExpiryCmd(n.Seq))

	case toastExpiredMsg:
		if m.toast != nil && msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case tea.KeyMsg:
		switch m.modal {
		case modalRecord:
			return m.updateRecordModal(msg)
		case modalRowMenu:
			return m.updateRowMenu(msg)
		case modalConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.modal == modalRecord {
		return m.updateFocusedInput(msg)
	}
	var cmd tea.Cmd
	m.usersList, cmd = m.usersList.Update(msg)
	return m, cmd
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.New):
		return m.openAdd()
	}

	id, hasRow := m.selectedID()
	switch {
	case key.Matches(msg, m.keys.View):
		if hasRow {
			return m.openFor(form.ModeView, id)
		}
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if hasRow {
			return m.openFor(form.ModeEdit, id)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if hasRow {
			m.openConfirmDelete(id)
		}
		return m, nil
	case key.Matches(msg, m.keys.Menu):
		if hasRow {
			m.modal = modalRowMenu
			m.menuIndex = 0
			m.targetID = id
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.usersList, cmd = m.usersList.Update(msg)
	return m, cmd
}

func (m appModel) openAdd() (tea.Model, tea.Cmd) {
	if err := m.console.RequestAdd(&m.form); err != nil {
		m.log.Error(m.ctx, "open add form", "err", err)
		return m, nil
	}
	return m.showRecordModal()
}

func (m appModel) openFor(mode form.Mode, id string) (tea.Model, tea.Cmd) {
	var err error
	switch mode {
	case form.ModeView:
		err = m.console.RequestView(&m.form, id)
	case form.ModeEdit:
		err = m.console.RequestEdit(&m.form, id)
	}
	if err != nil {
		m.log.Warn(m.ctx, "open form", "mode", mode.String(), "id", id, "err", err)
		if errors.Is(err, console.ErrRecordNotFound) {
			m.notifyError("User not found, it may have been deleted.")
		}
		m.modal = modalNone
		return m, nil
	}
	return m.showRecordModal()
}

func (m appModel) follow(in form.Intent) (tea.Model, tea.Cmd) {
	if err := m.console.Follow(&m.form, in); err != nil {
		if errors.Is(err, console.ErrRecordNotFound) {
			m.notifyError("User not found, it may have been deleted.")
		}
		m.modal = modalNone
		return m, nil
	}
	return m.showRecordModal()
}

// showRecordModal loads the form state into the inputs and focuses the first field.
func (m appModel) showRecordModal() (tea.Model, tea.Cmd) {
	m.modal = modalRecord
	m.nameInput.SetValue(m.form.Name())
	m.codeInput.SetValue(m.form.Code())
	m.countryCursor = 0
	if m.form.ReadOnly() {
		m.focus = focusCancel
		m.nameInput.Blur()
		m.codeInput.Blur()
		return m, nil
	}
	return m, m.setFocus(focusName)
}

func (m *appModel) setFocus(f recordFocus) tea.Cmd {
	m.focus = f
	m.nameInput.Blur()
	m.codeInput.Blur()
	switch f {
	case focusName:
		return m.nameInput.Focus()
	case focusCode:
		return m.codeInput.Focus()
	}
	return nil
}

func (m appModel) closeModal() appModel {
	m.modal = modalNone
	m.nameInput.Blur()
	m.codeInput.Blur()
	return m
}

func (m appModel) updateRecordModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.ReadOnly() {
		return m.updateViewModal(msg)
	}

	switch {
	case key.Matches(msg, m.modalKeys.Cancel):
		m.form.Cancel()
		return m.closeModal(), nil
	case key.Matches(msg, m.modalKeys.Save):
		return m.submit()
	case key.Matches(msg, m.modalKeys.Next):
		return m, m.setFocus(recordFocus((int(m.focus) + 1) % recordFocusCount))
	case key.Matches(msg, m.modalKeys.Prev):
		return m, m.setFocus(recordFocus((int(m.focus) + recordFocusCount - 1) % recordFocusCount))
	}

	switch m.focus {
	case focusCountries:
		return m.updateCountryPicker(msg)
	case focusSave:
		if msg.String() == "enter" {
			return m.submit()
		}
		return m, nil
	case focusCancel:
		if msg.String() == "enter" {
			m.form.Cancel()
			return m.closeModal(), nil
		}
		return m, nil
	}

	if msg.String() == "enter" {
		return m, m.setFocus(m.focus + 1)
	}
	return m.updateFocusedInput(msg)
}

func (m appModel) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.nameInput, cmd = m.nameInput.Update(msg)
		_ = m.form.SetName(m.nameInput.Value())
	case focusCode:
		m.codeInput, cmd = m.codeInput.Update(msg)
		_ = m.form.SetCode(m.codeInput.Value())
	}
	return m, cmd
}

func (m appModel) updateCountryPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := model.PickerOptions(m.form.Countries())
	cols := pickerColumns(modalBodyWidth(m.width))
	switch msg.String() {
	case "left", "h":
		if m.countryCursor > 0 {
			m.countryCursor--
		}
	case "right", "l":
		if m.countryCursor < len(opts)-1 {
			m.countryCursor++
		}
	case "up", "k", "ctrl+p":
		if m.countryCursor-cols >= 0 {
			m.countryCursor -= cols
		}
	case "down", "j", "ctrl+n":
		if m.countryCursor+cols < len(opts) {
			m.countryCursor += cols
		}
	case "enter":
		return m, m.setFocus(focusSave)
	default:
		if key.Matches(msg, m.modalKeys.Toggle) && m.countryCursor < len(opts) {
			_ = m.form.ToggleCountry(opts[m.countryCursor])
			// Errors reflect the current selection once the user has tried to save.
			if len(m.form.Errors()) > 0 {
				m.form.Validate()
			}
		}
	}
	return m, nil
}

func (m appModel) submit() (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	_ = m.form.SetName(m.nameInput.Value())
	_ = m.form.SetCode(m.codeInput.Value())
	sub, ok := m.form.Submit()
	if !ok {
		errs := m.form.Errors()
		switch {
		case errs[model.FieldUserName] != "":
			return m, m.setFocus(focusName)
		case errs[model.FieldCountries] != "":
			return m, m.setFocus(focusCountries)
		}
		return m, nil
	}
	m.saving = true
	m = m.closeModal()
	return m, m.saveCmd(sub)
}

func (m appModel) updateViewModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.modalKeys.Cancel), msg.String() == "enter", msg.String() == "q":
		m.form.Cancel()
		return m.closeModal(), nil
	case key.Matches(msg, m.modalKeys.AddNew):
		in, err := m.form.PivotToAdd()
		if err != nil {
			return m, nil
		}
		return m.follow(in)
	case key.Matches(msg, m.modalKeys.EditView):
		in, err := m.form.PivotToEdit()
		if err != nil {
			return m, nil
		}
		return m.follow(in)
	}
	return m, nil
}

func (m appModel) updateRowMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "q":
		m.modal = modalNone
		return m, nil
	case "up", "k", "ctrl+p":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
		return m, nil
	case "down", "j", "ctrl+n":
		if m.menuIndex < len(rowMenuLabels)-1 {
			m.menuIndex++
		}
		return m, nil
	case "v":
		m.menuIndex = int(rowMenuView)
	case "e":
		m.menuIndex = int(rowMenuEdit)
	case "d":
		m.menuIndex = int(rowMenuDelete)
	case "enter":
	default:
		return m, nil
	}

	m.modal = modalNone
	switch rowMenuAction(m.menuIndex) {
	case rowMenuView:
		return m.openFor(form.ModeView, m.targetID)
	case rowMenuEdit:
		return m.openFor(form.ModeEdit, m.targetID)
	case rowMenuDelete:
		m.openConfirmDelete(m.targetID)
	}
	return m, nil
}

func (m *appModel) openConfirmDelete(id string) {
	m.modal = modalConfirmDelete
	m.targetID = id
	m.confirmFocus = confirmFocusCancel
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.modal = modalNone
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		return m.confirmDelete()
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return m.confirmDelete()
		}
		m.modal = modalNone
		return m, nil
	}
	return m, nil
}

func (m appModel) confirmDelete() (tea.Model, tea.Cmd) {
	m.modal = modalNone
	if m.deleting || m.targetID == "" {
		return m, nil
	}
	m.deleting = true
	return m, m.deleteCmd(m.targetID)
}
