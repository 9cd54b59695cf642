package tui

import (
	"partners-cli/internal/model"
	"partners-cli/internal/notify"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalRecord
	modalRowMenu
	modalConfirmDelete
)

// recordFocus is the focused control inside the record modal.
type recordFocus int

const (
	focusName recordFocus = iota
	focusCode
	focusCountries
	focusSave
	focusCancel
)

const recordFocusCount = int(focusCancel) + 1

type rowMenuAction int

const (
	rowMenuView rowMenuAction = iota
	rowMenuEdit
	rowMenuDelete
)

var rowMenuLabels = []string{"View", "Edit", "Delete"}

type refreshDoneMsg struct {
	err error
}

type saveDoneMsg struct {
	record model.Record
	err    error
}

type deleteDoneMsg struct {
	id  string
	err error
}

// toastMsg carries one notification from the hub subscription. ok is false
// once the subscription is closed.
type toastMsg struct {
	n  notify.Notification
	ok bool
}

type toastExpiredMsg struct {
	seq uint64
}
