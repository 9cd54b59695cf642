package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	ID        string   `json:"id"`
	UserName  string   `json:"userName"`
	Countries []string `json:"countries"`
}

func TestWriteJSON_Envelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	env := Envelope{Data: sample{ID: "1", UserName: "Ana & Bo", Countries: []string{}}}
	if err := Write(&buf, env, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{"data":{"id":"1","userName":"Ana & Bo","countries":[]}}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteEDN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		v      any
		pretty bool
		want   string
	}{
		{
			name: "envelope",
			v: Envelope{
				Data:  sample{ID: "1", UserName: "Ana", Countries: []string{"Spain", "Italy"}},
				Meta:  map[string]any{"count": 1},
				Hints: []string{"partners users show 1"},
			},
			want: `{:-hints ["partners users show 1"] :data {:countries ["Spain" "Italy"] :id "1" :user-name "Ana"} :meta {:count 1}}` + "\n",
		},
		{
			name: "scalars",
			v:    []any{nil, true, 2.5, 10},
			want: "[nil true 2.5 10]\n",
		},
		{
			name:   "pretty nested",
			v:      map[string]any{"data": []string{"a"}, "empty": map[string]any{}},
			pretty: true,
			want:   "{\n  :data [\n    \"a\"\n  ]\n  :empty {}\n}\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Write(&buf, tc.v, EDN, tc.pretty); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("got:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestKeyword(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"id":           ":id",
		"userName":     ":user-name",
		"configPath":   ":config-path",
		"_hints":       ":-hints",
		"toastSeconds": ":toast-seconds",
		"user code":    ":user-code",
	} {
		if got := Keyword(in); got != want {
			t.Fatalf("Keyword(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write(&bytes.Buffer{}, 1, "xml", false)
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
	if Valid("xml") || !Valid("EDN") || !Valid("") {
		t.Fatalf("Valid mismatch")
	}
}
