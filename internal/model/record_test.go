package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDraftValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft Draft
		want  FieldErrors
	}{
		{
			name:  "valid",
			draft: Draft{UserName: "Ana", Countries: []string{"Spain"}},
			want:  FieldErrors{},
		},
		{
			name:  "blank name",
			draft: Draft{UserName: "   ", Countries: []string{"Spain"}},
			want:  FieldErrors{FieldUserName: MsgUserNameRequired},
		},
		{
			name:  "no countries",
			draft: Draft{UserName: "Ana"},
			want:  FieldErrors{FieldCountries: MsgCountriesRequired},
		},
		{
			name:  "both missing, code ignored",
			draft: Draft{UserCode: "NA"},
			want: FieldErrors{
				FieldUserName:  MsgUserNameRequired,
				FieldCountries: MsgCountriesRequired,
			},
		},
		{
			name:  "code never matters",
			draft: Draft{UserName: "Bo", UserCode: "", Countries: []string{"Japan"}},
			want:  FieldErrors{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.draft.Validate()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Validate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToggleCountry(t *testing.T) {
	t.Parallel()

	var sel []string
	sel = ToggleCountry(sel, "Japan")
	if diff := cmp.Diff([]string{"Japan"}, sel); diff != "" {
		t.Fatalf("toggle once (-want +got):\n%s", diff)
	}
	sel = ToggleCountry(sel, "Japan")
	if len(sel) != 0 {
		t.Fatalf("expected toggling twice to return to empty, got %v", sel)
	}

	sel = ToggleCountry(sel, "Japan")
	sel = ToggleCountry(sel, "India")
	sel = ToggleCountry(sel, "Spain")
	if diff := cmp.Diff([]string{"Japan", "India", "Spain"}, sel); diff != "" {
		t.Fatalf("insertion order (-want +got):\n%s", diff)
	}

	orig := []string{"Japan", "India"}
	_ = ToggleCountry(orig, "Japan")
	if diff := cmp.Diff([]string{"Japan", "India"}, orig); diff != "" {
		t.Fatalf("input slice must not change (-want +got):\n%s", diff)
	}
}

func TestDraftNormalizedTrims(t *testing.T) {
	t.Parallel()

	d := Draft{UserName: "  Bo ", UserCode: " EU ", Countries: []string{"Japan", "India"}}.Normalized()
	want := Draft{UserName: "Bo", UserCode: "EU", Countries: []string{"Japan", "India"}}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Fatalf("Normalized() mismatch (-want +got):\n%s", diff)
	}
}

func TestDraftJSONHasNoID(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Draft{UserName: "Bo", Countries: []string{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), `"id"`) {
		t.Fatalf("draft must not carry an id: %s", b)
	}
	if !strings.Contains(string(b), `"countries":[]`) {
		t.Fatalf("expected empty countries array, got %s", b)
	}
}

func TestPickerOptionsKeepsUnknownSelections(t *testing.T) {
	t.Parallel()

	opts := PickerOptions([]string{"Spain", "Atlantis"})
	if len(opts) != len(CountryOptions)+1 {
		t.Fatalf("expected %d options, got %d", len(CountryOptions)+1, len(opts))
	}
	if opts[len(opts)-1] != "Atlantis" {
		t.Fatalf("expected unknown selection appended, got %q", opts[len(opts)-1])
	}
}

func TestDetailsMarkdown(t *testing.T) {
	t.Parallel()

	md := DetailsMarkdown(Record{ID: "1", UserName: "Ana", Countries: []string{"Spain", "Italy"}})
	for _, want := range []string{"| Ana | - |", "- Spain", "- Italy"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
}
