package model

import (
	"strings"
)

// DetailsMarkdown renders the read-only details of r. Both the terminal view mode
// (glamour) and the browser view page (goldmark) render from this source.
func DetailsMarkdown(r Record) string {
	var b strings.Builder
	b.WriteString("## User Details\n\n")
	b.WriteString("| User Name | User Code |\n")
	b.WriteString("|---|---|\n")
	b.WriteString("| " + escapeMarkdownCell(r.UserName) + " | " + escapeMarkdownCell(DashIfEmpty(r.UserCode)) + " |\n\n")
	b.WriteString("**Countries**\n\n")
	if len(r.Countries) == 0 {
		b.WriteString("-\n")
		return b.String()
	}
	for _, c := range r.Countries {
		b.WriteString("- " + escapeMarkdownInline(c) + "\n")
	}
	return b.String()
}

// DashIfEmpty returns "-" for blank strings.
func DashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

var markdownInlineReplacer = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

func escapeMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return markdownInlineReplacer.Replace(s)
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(escapeMarkdownInline(s), "|", `\|`)
}
