// Package form holds the add/edit/view workflow for a single record: field state,
// validation and the submit/cancel/pivot transitions. It has no I/O; callers
// persist the Submission it produces.
package form

import (
	"errors"
	"strings"

	"partners-cli/internal/model"
)

type Mode int

const (
	ModeAdd Mode = iota
	ModeEdit
	ModeView
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	case ModeView:
		return "view"
	default:
		return "unknown"
	}
}

// ParseMode accepts add|edit|view.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add":
		return ModeAdd, true
	case "edit":
		return ModeEdit, true
	case "view":
		return ModeView, true
	}
	return ModeAdd, false
}

// Title is the heading shown above the form.
func (m Mode) Title() string {
	switch m {
	case ModeEdit:
		return "Edit User"
	case ModeView:
		return "View Details"
	default:
		return "New User"
	}
}

var (
	// ErrNoRecord is returned when edit or view is opened without a record.
	ErrNoRecord = errors.New("form: edit and view require a record")
	// ErrReadOnly is returned for field edits in view mode.
	ErrReadOnly = errors.New("form: record is read-only in view mode")
	// ErrClosed is returned for operations on a closed form.
	ErrClosed = errors.New("form: not open")
	// ErrNotViewMode is returned for pivots outside view mode.
	ErrNotViewMode = errors.New("form: pivot is only available in view mode")
)

// Submission is a validated save request. It is either a Create or an Update.
type Submission interface {
	Draft() model.Draft
	isSubmission()
}

// Create adds a new record; the store assigns its id.
type Create struct {
	Fields model.Draft
}

// Update replaces the editable fields of the record with ID.
type Update struct {
	ID     string
	Fields model.Draft
}

func (c Create) Draft() model.Draft { return c.Fields }
func (u Update) Draft() model.Draft { return u.Fields }
func (Create) isSubmission()        {}
func (Update) isSubmission()        {}

// Intent is a request from the form to its owner after a pivot.
type Intent struct {
	Kind IntentKind
	// RecordID is set for IntentOpenEdit.
	RecordID string
}

type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentOpenAdd
	IntentOpenEdit
)

// Form is the state of the record modal. The zero value is a closed form.
type Form struct {
	open   bool
	mode   Mode
	record *model.Record

	name      string
	code      string
	countries []string
	errors    model.FieldErrors
}

// Open resets the form for mode. Edit and view pre-fill from record; add ignores
// any record and starts empty. Errors are always cleared.
func (f *Form) Open(mode Mode, record *model.Record) error {
	switch mode {
	case ModeAdd:
		record = nil
	case ModeEdit, ModeView:
		if record == nil {
			return ErrNoRecord
		}
	default:
		return errors.New("form: unknown mode")
	}

	f.open = true
	f.mode = mode
	f.errors = model.FieldErrors{}
	if record == nil {
		f.record = nil
		f.name = ""
		f.code = ""
		f.countries = []string{}
		return nil
	}
	r := *record
	r.Countries = model.CloneCountries(record.Countries)
	f.record = &r
	f.name = r.UserName
	f.code = r.UserCode
	f.countries = model.CloneCountries(r.Countries)
	return nil
}

func (f *Form) IsOpen() bool { return f.open }
func (f *Form) Mode() Mode   { return f.mode }
func (f *Form) ReadOnly() bool {
	return f.mode == ModeView
}

// Record returns the record the form was opened with (edit/view).
func (f *Form) Record() (model.Record, bool) {
	if f.record == nil {
		return model.Record{}, false
	}
	return *f.record, true
}

func (f *Form) Name() string { return f.name }
func (f *Form) Code() string { return f.code }

func (f *Form) Countries() []string {
	return model.CloneCountries(f.countries)
}

// Errors returns the errors from the last Validate or Submit.
func (f *Form) Errors() model.FieldErrors {
	out := make(model.FieldErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *Form) editable() error {
	if !f.open {
		return ErrClosed
	}
	if f.mode == ModeView {
		return ErrReadOnly
	}
	return nil
}

func (f *Form) SetName(s string) error {
	if err := f.editable(); err != nil {
		return err
	}
	f.name = s
	return nil
}

func (f *Form) SetCode(s string) error {
	if err := f.editable(); err != nil {
		return err
	}
	f.code = s
	return nil
}

// ToggleCountry adds country, or removes it when already selected.
func (f *Form) ToggleCountry(country string) error {
	if err := f.editable(); err != nil {
		return err
	}
	f.countries = model.ToggleCountry(f.countries, country)
	return nil
}

func (f *Form) draft() model.Draft {
	return model.Draft{
		UserName:  f.name,
		UserCode:  f.code,
		Countries: model.CloneCountries(f.countries),
	}
}

// Validate checks the current fields and stores the result for display.
func (f *Form) Validate() (model.FieldErrors, bool) {
	errs := f.draft().Validate()
	f.errors = errs
	return f.Errors(), len(errs) == 0
}

// Submit validates and, when valid, closes the form and returns the save request.
// Invalid input keeps the form open with its errors set. View mode never submits.
func (f *Form) Submit() (Submission, bool) {
	if f.editable() != nil {
		return nil, false
	}
	if _, ok := f.Validate(); !ok {
		return nil, false
	}
	d := f.draft().Normalized()

	var sub Submission
	if f.mode == ModeEdit {
		sub = Update{ID: f.record.ID, Fields: d}
	} else {
		sub = Create{Fields: d}
	}
	f.close()
	return sub, true
}

// Cancel discards edits and closes the form.
func (f *Form) Cancel() {
	f.close()
}

// PivotToAdd closes a view form and asks the owner to open a fresh add form.
func (f *Form) PivotToAdd() (Intent, error) {
	if !f.open {
		return Intent{}, ErrClosed
	}
	if f.mode != ModeView {
		return Intent{}, ErrNotViewMode
	}
	f.close()
	return Intent{Kind: IntentOpenAdd}, nil
}

// PivotToEdit asks the owner to re-open the viewed record in edit mode.
func (f *Form) PivotToEdit() (Intent, error) {
	if !f.open {
		return Intent{}, ErrClosed
	}
	if f.mode != ModeView {
		return Intent{}, ErrNotViewMode
	}
	if f.record == nil || f.record.ID == "" {
		return Intent{}, ErrNoRecord
	}
	return Intent{Kind: IntentOpenEdit, RecordID: f.record.ID}, nil
}

func (f *Form) close() {
	f.open = false
}
