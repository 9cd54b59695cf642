package tui

import (
	"context"
	"strings"
	"time"

	"partners-cli/internal/console"
	"partners-cli/internal/form"
	"partners-cli/internal/logging"
	"partners-cli/internal/notify"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultToastTTL = 4 * time.Second
	headerLines     = 3
	footerLines     = 3
)

// Options configures the terminal console.
type Options struct {
	Console *console.Console
	Hub     *notify.Hub
	Log     logging.Logger

	// Endpoint is shown in the header and scopes the saved UI state.
	Endpoint string
	// Theme is light|dark|auto.
	Theme string
	// ToastTTL is how long a notification stays on screen.
	ToastTTL time.Duration
	// SelectID is the record to highlight after the first load.
	SelectID string
}

type appModel struct {
	ctx     context.Context
	console *console.Console
	hub     *notify.Hub
	sub     *notify.Subscription
	log     logging.Logger

	endpoint string
	theme    string
	toastTTL time.Duration

	width  int
	height int

	keys      listKeyMap
	modalKeys modalKeyMap

	usersList list.Model
	// pendingSelectID is applied once the record shows up in the list.
	pendingSelectID string

	modal modalKind

	form          form.Form
	nameInput     textinput.Model
	codeInput     textinput.Model
	focus         recordFocus
	countryCursor int

	menuIndex    int
	targetID     string
	confirmFocus confirmModalFocus

	saving   bool
	deleting bool

	toast    *notify.Notification
	toastSeq uint64
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	ttl := opts.ToastTTL
	if ttl <= 0 {
		ttl = defaultToastTTL
	}

	m := appModel{
		ctx:             ctx,
		console:         opts.Console,
		hub:             opts.Hub,
		log:             log.With("component", "tui"),
		endpoint:        strings.TrimSpace(opts.Endpoint),
		theme:           opts.Theme,
		toastTTL:        ttl,
		keys:            newListKeyMap(),
		modalKeys:       newModalKeyMap(),
		pendingSelectID: strings.TrimSpace(opts.SelectID),
	}
	if m.hub != nil {
		m.sub = m.hub.Subscribe(notify.DefaultBuffer)
	}

	m.usersList = newList("Users", []list.Item{})

	m.nameInput = newInput("Enter user name", 80)
	m.codeInput = newInput("Enter user code", 32)
	return m
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, newUserRowDelegate(), 0, 0)
	l.Title = title
	// Header, empty state and footer are rendered by the console itself.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("user", "users")
	// Quitting is handled by the console so UI state can be saved.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitToastCmd())
}

func (m appModel) refreshCmd() tea.Cmd {
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{err: c.Refresh(ctx)}
	}
}

func (m appModel) saveCmd(sub form.Submission) tea.Cmd {
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		rec, err := c.CommitSave(ctx, sub)
		return saveDoneMsg{record: rec, err: err}
	}
}

func (m appModel) deleteCmd(id string) tea.Cmd {
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		return deleteDoneMsg{id: id, err: c.CommitDelete(ctx, id)}
	}
}

func (m appModel) waitToastCmd() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	ch := m.sub.C()
	return func() tea.Msg {
		n, ok := <-ch
		return toastMsg{n: n, ok: ok}
	}
}

func (m appModel) toastExpiryCmd(seq uint64) tea.Cmd {
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

// selectedID returns the id of the highlighted row.
func (m appModel) selectedID() (string, bool) {
	it, ok := m.usersList.SelectedItem().(userItem)
	if !ok {
		return "", false
	}
	return it.row.ID, true
}

// syncRows rebuilds the list from the console snapshot, keeping the selection.
func (m *appModel) syncRows() {
	curID, _ := m.selectedID()
	if m.pendingSelectID != "" {
		curID = m.pendingSelectID
	}

	rows := m.console.Rows()
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, userItem{row: r})
	}
	_ = m.usersList.SetItems(items)

	if curID != "" && selectListItemByID(&m.usersList, curID) {
		m.pendingSelectID = ""
	}
}

func selectListItemByID(l *list.Model, id string) bool {
	for i, it := range l.Items() {
		if u, ok := it.(userItem); ok && u.row.ID == id {
			l.Select(i)
			return true
		}
	}
	return false
}

func (m *appModel) resizeList() {
	h := m.height - headerLines - footerLines - 1
	if h < 3 {
		h = 3
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.usersList.SetSize(w, h)
}

// notifyError shows a local error through the same channel as store results.
func (m appModel) notifyError(msg string) {
	if m.hub != nil {
		m.hub.Error(msg)
	}
}
