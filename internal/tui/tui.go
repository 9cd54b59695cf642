package tui

import (
	"context"

	"partners-cli/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the full-screen console and blocks until the user quits. The last
// selected record is saved best effort so the next launch restores it.
func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	if opts.SelectID == "" {
		if st, err := config.LoadTUIState(); err == nil && st.Endpoint == opts.Endpoint {
			opts.SelectID = st.SelectedRecordID
		}
	}

	m := newAppModel(ctx, opts)
	defer m.close()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if am, ok := final.(appModel); ok {
		am.saveState()
	}
	return err
}

func (m appModel) close() {
	if m.sub != nil {
		m.sub.Close()
	}
}

func (m appModel) saveState() {
	id, _ := m.selectedID()
	st := &config.TUIState{Endpoint: m.endpoint, SelectedRecordID: id}
	if err := config.SaveTUIState(st); err != nil {
		m.log.Warn(m.ctx, "save tui state", "err", err)
	}
}
