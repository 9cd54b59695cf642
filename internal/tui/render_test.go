package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestRenderTags_FoldsOverflowIntoMore(t *testing.T) {
	tags := []string{"Argentina", "Belgium", "Denmark", "Egypt", "Finland"}

	tests := []struct {
		name     string
		hidden   int
		width    int
		want     []string
		wantMore string
	}{
		{name: "all fit", width: 80, want: tags},
		{name: "existing hidden", hidden: 2, width: 80, want: tags, wantMore: "+2 More"},
		{name: "narrow", width: 30, want: []string{"Argentina"}, wantMore: "More"},
		{name: "zero width", width: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := xansi.Strip(renderTags(tags, tc.hidden, tc.width))
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Fatalf("expected %q in %q", w, got)
				}
			}
			if tc.wantMore != "" && !strings.Contains(got, tc.wantMore) {
				t.Fatalf("expected %q in %q", tc.wantMore, got)
			}
			if tc.wantMore == "" && strings.Contains(got, "More") {
				t.Fatalf("unexpected overflow indicator in %q", got)
			}
			if tc.width > 0 && xansi.StringWidth(got) > tc.width {
				t.Fatalf("rendered width %d exceeds %d: %q", xansi.StringWidth(got), tc.width, got)
			}
		})
	}
}

func TestNormalizePane(t *testing.T) {
	out := normalizePane("abcdef\nxy", 4, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for _, ln := range lines {
		if xansi.StringWidth(ln) != 4 {
			t.Fatalf("expected width 4, got %d for %q", xansi.StringWidth(ln), ln)
		}
	}
	if lines[0] != "abc…" {
		t.Fatalf("expected truncation with ellipsis, got %q", lines[0])
	}
}

func TestColorFGBGIsDark(t *testing.T) {
	tests := []struct {
		in       string
		wantDark bool
		wantOK   bool
	}{
		{"15;0", true, true},
		{"0;15", false, true},
		{"15;default;0", true, true},
		{"", false, false},
		{"x;y", false, false},
	}
	for _, tc := range tests {
		dark, ok := colorFGBGIsDark(tc.in)
		if dark != tc.wantDark || ok != tc.wantOK {
			t.Fatalf("colorFGBGIsDark(%q) = %v,%v; want %v,%v", tc.in, dark, ok, tc.wantDark, tc.wantOK)
		}
	}
}

func TestResolveTheme_EnvWins(t *testing.T) {
	t.Setenv("PARTNERS_TUI_THEME", "")
	if got := resolveTheme("dark"); got != "dark" {
		t.Fatalf("expected configured dark, got %q", got)
	}
	t.Setenv("PARTNERS_TUI_THEME", "light")
	if got := resolveTheme("dark"); got != "light" {
		t.Fatalf("expected env light, got %q", got)
	}
	t.Setenv("PARTNERS_TUI_THEME", "bogus")
	if got := resolveTheme(""); got != "auto" {
		t.Fatalf("expected auto, got %q", got)
	}
}
