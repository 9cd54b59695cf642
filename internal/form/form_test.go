package form

import (
	"errors"
	"testing"

	"partners-cli/internal/model"

	"github.com/google/go-cmp/cmp"
)

func ana() *model.Record {
	return &model.Record{ID: "1", UserName: "Ana", UserCode: "NA", Countries: []string{"Spain"}}
}

func TestOpen_EditPrefillsThenAddClears(t *testing.T) {
	var f Form
	if err := f.Open(ModeEdit, ana()); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	if f.Name() != "Ana" || f.Code() != "NA" {
		t.Fatalf("expected prefilled name/code, got %q/%q", f.Name(), f.Code())
	}
	if diff := cmp.Diff([]string{"Spain"}, f.Countries()); diff != "" {
		t.Fatalf("countries (-want +got):\n%s", diff)
	}
	if len(f.Errors()) != 0 {
		t.Fatalf("expected no errors, got %v", f.Errors())
	}

	// Leave an error behind, then reopen in add mode.
	_ = f.SetName("")
	if _, ok := f.Validate(); ok {
		t.Fatalf("expected validation to fail with empty name")
	}

	if err := f.Open(ModeAdd, nil); err != nil {
		t.Fatalf("open add: %v", err)
	}
	if f.Name() != "" || f.Code() != "" || len(f.Countries()) != 0 {
		t.Fatalf("expected empty fields in add mode, got %q/%q/%v", f.Name(), f.Code(), f.Countries())
	}
	if len(f.Errors()) != 0 {
		t.Fatalf("expected errors cleared on reopen, got %v", f.Errors())
	}
}

func TestOpen_AddIgnoresRecord(t *testing.T) {
	var f Form
	if err := f.Open(ModeAdd, ana()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if f.Name() != "" {
		t.Fatalf("add mode must start empty, got %q", f.Name())
	}
	if _, ok := f.Record(); ok {
		t.Fatalf("add mode must not bind a record")
	}
}

func TestOpen_EditOrViewWithoutRecord(t *testing.T) {
	for _, mode := range []Mode{ModeEdit, ModeView} {
		var f Form
		if err := f.Open(mode, nil); !errors.Is(err, ErrNoRecord) {
			t.Fatalf("%s: expected ErrNoRecord, got %v", mode, err)
		}
		if f.IsOpen() {
			t.Fatalf("%s: form must stay closed", mode)
		}
	}
}

func TestSubmit_Gating(t *testing.T) {
	tests := []struct {
		name      string
		userName  string
		countries []string
		wantErrs  []string
	}{
		{name: "empty name one country", userName: "", countries: []string{"Spain"}, wantErrs: []string{model.FieldUserName}},
		{name: "empty name no countries", userName: "", countries: nil, wantErrs: []string{model.FieldUserName, model.FieldCountries}},
		{name: "blank name", userName: "  ", countries: []string{"Spain"}, wantErrs: []string{model.FieldUserName}},
		{name: "name no countries", userName: "Bo", countries: nil, wantErrs: []string{model.FieldCountries}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f Form
			_ = f.Open(ModeAdd, nil)
			_ = f.SetName(tc.userName)
			for _, c := range tc.countries {
				_ = f.ToggleCountry(c)
			}
			sub, ok := f.Submit()
			if ok || sub != nil {
				t.Fatalf("expected submit to be rejected, got %#v", sub)
			}
			if !f.IsOpen() {
				t.Fatalf("form must stay open after invalid submit")
			}
			errs := f.Errors()
			if len(errs) != len(tc.wantErrs) {
				t.Fatalf("expected %d errors, got %v", len(tc.wantErrs), errs)
			}
			for _, k := range tc.wantErrs {
				if _, ok := errs[k]; !ok {
					t.Fatalf("expected error for %s, got %v", k, errs)
				}
			}
		})
	}
}

func TestSubmit_AddProducesCreate(t *testing.T) {
	var f Form
	_ = f.Open(ModeAdd, nil)
	_ = f.SetName("  Bo ")
	_ = f.SetCode(" ")
	_ = f.ToggleCountry("Japan")
	_ = f.ToggleCountry("India")

	sub, ok := f.Submit()
	if !ok {
		t.Fatalf("expected valid submit, errors: %v", f.Errors())
	}
	c, isCreate := sub.(Create)
	if !isCreate {
		t.Fatalf("expected Create, got %T", sub)
	}
	want := model.Draft{UserName: "Bo", UserCode: "", Countries: []string{"Japan", "India"}}
	if diff := cmp.Diff(want, c.Fields); diff != "" {
		t.Fatalf("draft (-want +got):\n%s", diff)
	}
	if f.IsOpen() {
		t.Fatalf("form must close after a valid submit")
	}
}

func TestSubmit_EditKeepsID(t *testing.T) {
	var f Form
	_ = f.Open(ModeEdit, ana())
	_ = f.SetName("Ana Maria")
	_ = f.ToggleCountry("Spain")
	_ = f.ToggleCountry("Italy")

	sub, ok := f.Submit()
	if !ok {
		t.Fatalf("expected valid submit, errors: %v", f.Errors())
	}
	u, isUpdate := sub.(Update)
	if !isUpdate {
		t.Fatalf("expected Update, got %T", sub)
	}
	if u.ID != "1" {
		t.Fatalf("expected id 1, got %q", u.ID)
	}
	if diff := cmp.Diff([]string{"Italy"}, u.Fields.Countries); diff != "" {
		t.Fatalf("countries (-want +got):\n%s", diff)
	}
}

func TestEditDoesNotMutateSourceRecord(t *testing.T) {
	rec := ana()
	var f Form
	_ = f.Open(ModeEdit, rec)
	_ = f.ToggleCountry("Italy")
	if diff := cmp.Diff([]string{"Spain"}, rec.Countries); diff != "" {
		t.Fatalf("source record changed (-want +got):\n%s", diff)
	}
}

func TestCancel_NeverSubmits(t *testing.T) {
	var f Form
	_ = f.Open(ModeEdit, ana())
	_ = f.SetName("changed")
	f.Cancel()
	if f.IsOpen() {
		t.Fatalf("expected closed form after cancel")
	}
	if sub, ok := f.Submit(); ok || sub != nil {
		t.Fatalf("closed form must not submit")
	}
}

func TestViewMode_ReadOnlyAndPivots(t *testing.T) {
	var f Form
	_ = f.Open(ModeView, ana())

	if err := f.SetName("x"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := f.ToggleCountry("Italy"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if _, ok := f.Submit(); ok {
		t.Fatalf("view mode must not submit")
	}

	in, err := f.PivotToEdit()
	if err != nil {
		t.Fatalf("pivot to edit: %v", err)
	}
	if in.Kind != IntentOpenEdit || in.RecordID != "1" {
		t.Fatalf("unexpected intent %#v", in)
	}

	in, err = f.PivotToAdd()
	if err != nil {
		t.Fatalf("pivot to add: %v", err)
	}
	if in.Kind != IntentOpenAdd {
		t.Fatalf("unexpected intent %#v", in)
	}
	if f.IsOpen() {
		t.Fatalf("pivot to add must close the view form")
	}
}

func TestPivotOutsideViewMode(t *testing.T) {
	var f Form
	_ = f.Open(ModeEdit, ana())
	if _, err := f.PivotToAdd(); !errors.Is(err, ErrNotViewMode) {
		t.Fatalf("expected ErrNotViewMode, got %v", err)
	}
	if _, err := f.PivotToEdit(); !errors.Is(err, ErrNotViewMode) {
		t.Fatalf("expected ErrNotViewMode, got %v", err)
	}
}

func TestValidate_IndependentOfCode(t *testing.T) {
	for _, code := range []string{"", " ", "EU", "a very long code"} {
		var f Form
		_ = f.Open(ModeAdd, nil)
		_ = f.SetName("Bo")
		_ = f.ToggleCountry("Japan")
		_ = f.SetCode(code)
		if errs, ok := f.Validate(); !ok {
			t.Fatalf("code %q: expected valid, got %v", code, errs)
		}
	}
}

func TestModeTitles(t *testing.T) {
	if ModeAdd.Title() != "New User" || ModeEdit.Title() != "Edit User" || ModeView.Title() != "View Details" {
		t.Fatalf("unexpected titles")
	}
	if m, ok := ParseMode(" View "); !ok || m != ModeView {
		t.Fatalf("expected ParseMode to accept view")
	}
}
